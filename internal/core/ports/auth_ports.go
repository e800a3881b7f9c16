package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

type PlayerRepository interface {
	GetByWallet(ctx context.Context, address string) (*domain.Player, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	Create(ctx context.Context, player *domain.Player) error
}

type AuthRepository interface {
	StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokePlayerTokens(ctx context.Context, playerID uuid.UUID) (int64, error)
}

type AuthService interface {
	ConnectWallet(ctx context.Context, address string) (string, string, error) // returns access_token, refresh_token, error
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseAccessToken(token string) (uuid.UUID, error)
}
