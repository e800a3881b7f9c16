package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

// FundingGate is consulted by callers before a live session starts.
type FundingGate interface {
	CanPlay(ctx context.Context, playerID uuid.UUID) (bool, error)
}

type BalanceRepository interface {
	GetBalance(ctx context.Context, playerID uuid.UUID) (*domain.Balance, error)
	Deposit(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error)
	Withdraw(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error)
}

type BalanceService interface {
	FundingGate
	Balance(ctx context.Context, playerID uuid.UUID) (*domain.Balance, error)
	Deposit(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error)
	Withdraw(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error)
}
