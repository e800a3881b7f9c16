package ports

import (
	"context"

	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

type MemeResultRepository interface {
	SummarizeVotes(ctx context.Context, memeID int) error
	ListResults(ctx context.Context) ([]domain.MemeResult, error)
}

type LeaderboardService interface {
	SummarizeAllVotes(ctx context.Context) error
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}
