package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidChoice),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidWalletAddress):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFunded),
		errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionNotEnded),
		errors.Is(err, domain.ErrVoteRejected):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDeckUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		http.Error(w, domain.ErrInternal.Error(), status)
		return
	}
	http.Error(w, err.Error(), status)
}
