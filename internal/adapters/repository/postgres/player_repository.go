package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type PlayerRepository struct {
	db *sql.DB
}

func NewPlayerRepository(db *sql.DB) ports.PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByWallet(ctx context.Context, address string) (*domain.Player, error) {
	query := `SELECT id, wallet_address, created_at FROM players WHERE wallet_address = $1 AND deleted_at IS NULL`
	player := &domain.Player{}
	err := r.db.QueryRowContext(ctx, query, address).Scan(&player.ID, &player.WalletAddress, &player.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return player, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	query := `SELECT id, wallet_address, created_at FROM players WHERE id = $1 AND deleted_at IS NULL`
	player := &domain.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&player.ID, &player.WalletAddress, &player.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return player, nil
}

func (r *PlayerRepository) Create(ctx context.Context, player *domain.Player) error {
	query := `INSERT INTO players (wallet_address) VALUES ($1) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, player.WalletAddress).Scan(&player.ID, &player.CreatedAt)
}
