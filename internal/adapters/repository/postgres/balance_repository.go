package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type balanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) ports.BalanceRepository {
	return &balanceRepository{db: db}
}

// GetBalance reports zero credits for players that never deposited.
func (r *balanceRepository) GetBalance(ctx context.Context, playerID uuid.UUID) (*domain.Balance, error) {
	query := `SELECT player_id, credits, updated_at FROM player_balances WHERE player_id = $1`
	balance := &domain.Balance{}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&balance.PlayerID, &balance.Credits, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.Balance{PlayerID: playerID, UpdatedAt: time.Time{}}, nil
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (r *balanceRepository) Deposit(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error) {
	query := `
		INSERT INTO player_balances (player_id, credits, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (player_id) DO UPDATE
		SET credits = player_balances.credits + EXCLUDED.credits,
		    updated_at = NOW()
		RETURNING player_id, credits, updated_at
	`
	balance := &domain.Balance{}
	err := r.db.QueryRowContext(ctx, query, playerID, credits).Scan(&balance.PlayerID, &balance.Credits, &balance.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}
	return balance, nil
}

func (r *balanceRepository) Withdraw(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error) {
	balance := &domain.Balance{}
	err := r.db.QueryRowContext(ctx, debitQuery, playerID, credits).Scan(&balance.PlayerID, &balance.Credits, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}
	return balance, nil
}

const debitQuery = `
	UPDATE player_balances
	SET credits = credits - $2, updated_at = NOW()
	WHERE player_id = $1 AND credits >= $2
	RETURNING player_id, credits, updated_at
`
