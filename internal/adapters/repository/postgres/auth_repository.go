package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

// AuthRepository keeps a player's refresh tokens. Tokens are looked up by
// hash and revoked per player.
type AuthRepository struct {
	db *sql.DB
}

func NewAuthRepository(db *sql.DB) ports.AuthRepository {
	return &AuthRepository{db: db}
}

// StoreRefreshToken adds a token for its player and drops that player's
// revoked or expired ones in the same transaction.
func (r *AuthRepository) StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pruneQuery := `
		DELETE FROM refresh_tokens
		WHERE player_id = $1 AND (revoked OR expires_at < NOW())
	`
	if _, err := tx.ExecContext(ctx, pruneQuery, token.PlayerID); err != nil {
		return fmt.Errorf("failed to prune refresh tokens: %w", err)
	}

	insertQuery := `
		INSERT INTO refresh_tokens (player_id, token_hash, expires_at, revoked)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, insertQuery, token.PlayerID, token.TokenHash, token.ExpiresAt, token.Revoked).
		Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetRefreshTokenByHash returns nil when the hash is unknown or its player
// was deleted.
func (r *AuthRepository) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT rt.id, rt.player_id, rt.token_hash, rt.expires_at, rt.revoked, rt.created_at
		FROM refresh_tokens rt
		JOIN players p ON p.id = rt.player_id
		WHERE rt.token_hash = $1 AND p.deleted_at IS NULL
	`
	token := &domain.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.PlayerID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.Revoked,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return token, nil
}

// RevokePlayerTokens revokes every live token of the player and reports how
// many were revoked.
func (r *AuthRepository) RevokePlayerTokens(ctx context.Context, playerID uuid.UUID) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = true
		WHERE player_id = $1 AND NOT revoked AND expires_at > NOW()
	`
	result, err := r.db.ExecContext(ctx, query, playerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
