package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type statsService struct {
	repo      ports.PlayerStatsRepository
	stepVotes int
}

// NewStatsService reports lifetime stats, counting down to the next step bonus
// of policy.
func NewStatsService(repo ports.PlayerStatsRepository, policy RewardPolicy) ports.PlayerStatsService {
	return &statsService{
		repo:      repo,
		stepVotes: policy.StepVotes,
	}
}

func (s *statsService) Stats(ctx context.Context, playerID uuid.UUID) (*domain.PlayerStats, error) {
	stats, err := s.repo.GetPlayerStats(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}
	stats.SwipesToNextReward = SwipesToNextStep(stats.TotalSwipes, s.stepVotes)
	return stats, nil
}

// SwipesToNextStep is how many more swipes reach the next multiple of step.
func SwipesToNextStep(swipes int64, step int) int {
	if step <= 0 {
		return 0
	}
	return step - int(swipes%int64(step))
}
