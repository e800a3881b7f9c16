package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type balanceService struct {
	repo       ports.BalanceRepository
	minBalance int64
}

// NewBalanceService gates play on a prepaid balance of at least minBalance credits.
func NewBalanceService(repo ports.BalanceRepository, minBalance int64) ports.BalanceService {
	return &balanceService{
		repo:       repo,
		minBalance: minBalance,
	}
}

func (s *balanceService) CanPlay(ctx context.Context, playerID uuid.UUID) (bool, error) {
	balance, err := s.repo.GetBalance(ctx, playerID)
	if err != nil {
		return false, err
	}
	return balance.Credits >= s.minBalance, nil
}

func (s *balanceService) Balance(ctx context.Context, playerID uuid.UUID) (*domain.Balance, error) {
	return s.repo.GetBalance(ctx, playerID)
}

func (s *balanceService) Deposit(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error) {
	if credits <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	balance, err := s.repo.Deposit(ctx, playerID, credits)
	if err != nil {
		return nil, fmt.Errorf("failed to deposit: %w", err)
	}
	return balance, nil
}

func (s *balanceService) Withdraw(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error) {
	if credits <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	balance, err := s.repo.Withdraw(ctx, playerID, credits)
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw: %w", err)
	}
	return balance, nil
}
