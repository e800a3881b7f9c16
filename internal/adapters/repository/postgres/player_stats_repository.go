package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type playerStatsRepository struct {
	db *sql.DB
}

func NewPlayerStatsRepository(db *sql.DB) ports.PlayerStatsRepository {
	return &playerStatsRepository{db: db}
}

// GetPlayerStats totals the player's ledger votes and the rewards of their
// live session summaries. Players with no history get zeros.
func (r *playerStatsRepository) GetPlayerStats(ctx context.Context, playerID uuid.UUID) (*domain.PlayerStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM meme_votes WHERE player_id = $1),
			COALESCE(SUM(reward), 0),
			COUNT(*)
		FROM session_summaries
		WHERE player_id = $1 AND mode = 'live'
	`
	stats := &domain.PlayerStats{PlayerID: playerID}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&stats.TotalSwipes, &stats.TotalReward, &stats.SessionsPlayed)
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}
	return stats, nil
}
