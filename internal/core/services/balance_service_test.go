package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

type fakeBalanceRepo struct {
	credits map[uuid.UUID]int64
}

func (f *fakeBalanceRepo) GetBalance(ctx context.Context, playerID uuid.UUID) (*domain.Balance, error) {
	return &domain.Balance{PlayerID: playerID, Credits: f.credits[playerID]}, nil
}

func (f *fakeBalanceRepo) Deposit(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error) {
	f.credits[playerID] += credits
	return f.GetBalance(ctx, playerID)
}

func (f *fakeBalanceRepo) Withdraw(ctx context.Context, playerID uuid.UUID, credits int64) (*domain.Balance, error) {
	if f.credits[playerID] < credits {
		return nil, domain.ErrInsufficientBalance
	}
	f.credits[playerID] -= credits
	return f.GetBalance(ctx, playerID)
}

func TestBalanceService(t *testing.T) {
	ctx := context.Background()
	player := uuid.New()
	svc := NewBalanceService(&fakeBalanceRepo{credits: map[uuid.UUID]int64{}}, 2)

	ok, err := svc.CanPlay(ctx, player)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Deposit(ctx, player, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = svc.Withdraw(ctx, player, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	balance, err := svc.Deposit(ctx, player, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance.Credits)

	ok, err = svc.CanPlay(ctx, player)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Withdraw(ctx, player, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	balance, err = svc.Withdraw(ctx, player, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), balance.Credits)

	ok, err = svc.CanPlay(ctx, player)
	require.NoError(t, err)
	assert.False(t, ok)
}
