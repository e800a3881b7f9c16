package http

import (
	"encoding/json"
	"net/http"

	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type BalanceHandler struct {
	service ports.BalanceService
}

func NewBalanceHandler(service ports.BalanceService) *BalanceHandler {
	return &BalanceHandler{
		service: service,
	}
}

type creditsRequest struct {
	Credits int64 `json:"credits"`
}

func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	playerID, ok := PlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing player context", http.StatusUnauthorized)
		return
	}

	balance, err := h.service.Balance(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *BalanceHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	playerID, ok := PlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing player context", http.StatusUnauthorized)
		return
	}

	var req creditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	balance, err := h.service.Deposit(r.Context(), playerID, req.Credits)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *BalanceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	playerID, ok := PlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing player context", http.StatusUnauthorized)
		return
	}

	var req creditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	balance, err := h.service.Withdraw(r.Context(), playerID, req.Credits)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}
