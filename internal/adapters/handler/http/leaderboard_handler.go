package http

import (
	"net/http"

	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type LeaderboardHandler struct {
	service ports.LeaderboardService
}

func NewLeaderboardHandler(service ports.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
	}
}

func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
