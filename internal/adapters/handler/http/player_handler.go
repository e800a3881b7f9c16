package http

import (
	"net/http"

	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type PlayerHandler struct {
	stats ports.PlayerStatsService
}

func NewPlayerHandler(stats ports.PlayerStatsService) *PlayerHandler {
	return &PlayerHandler{
		stats: stats,
	}
}

// GetStats godoc
// @Summary      Lifetime stats of the connected player
// @Tags         players
// @Produce      json
// @Success      200  {object}  domain.PlayerStats
// @Failure      401  {string}  string  "Unauthorized"
// @Router       /api/players/me/stats [get]
func (h *PlayerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	playerID, ok := PlayerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing player context", http.StatusUnauthorized)
		return
	}

	stats, err := h.stats.Stats(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
