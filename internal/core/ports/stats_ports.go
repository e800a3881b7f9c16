package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

type PlayerStatsRepository interface {
	GetPlayerStats(ctx context.Context, playerID uuid.UUID) (*domain.PlayerStats, error)
}

type PlayerStatsService interface {
	Stats(ctx context.Context, playerID uuid.UUID) (*domain.PlayerStats, error)
}
