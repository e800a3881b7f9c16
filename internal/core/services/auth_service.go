package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// AuthService connects a wallet address to a player and issues session tokens.
// The address is taken as given; proving ownership is the wallet's job.
type AuthService struct {
	playerRepo ports.PlayerRepository
	authRepo   ports.AuthRepository
	jwtSecret  []byte
	now        func() time.Time
}

func NewAuthService(playerRepo ports.PlayerRepository, authRepo ports.AuthRepository, jwtSecret string) *AuthService {
	return &AuthService{
		playerRepo: playerRepo,
		authRepo:   authRepo,
		jwtSecret:  []byte(jwtSecret),
		now:        time.Now,
	}
}

func (s *AuthService) ConnectWallet(ctx context.Context, address string) (string, string, error) {
	address, err := domain.NormalizeWalletAddress(address)
	if err != nil {
		return "", "", err
	}

	player, err := s.playerRepo.GetByWallet(ctx, address)
	if err != nil {
		return "", "", fmt.Errorf("failed to get player: %w", err)
	}

	if player == nil {
		player = &domain.Player{WalletAddress: address}
		if err := s.playerRepo.Create(ctx, player); err != nil {
			return "", "", fmt.Errorf("failed to create player: %w", err)
		}
	}

	accessToken, err := s.generateAccessToken(player)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	rtEntity := &domain.RefreshToken{
		PlayerID:  player.ID,
		TokenHash: s.hashToken(refreshToken),
		ExpiresAt: s.now().Add(refreshTokenTTL),
	}
	if err := s.authRepo.StoreRefreshToken(ctx, rtEntity); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error) {
	rtEntity, err := s.authRepo.GetRefreshTokenByHash(ctx, s.hashToken(refreshToken))
	if err != nil {
		return "", "", fmt.Errorf("failed to get refresh token: %w", err)
	}
	if rtEntity == nil {
		return "", "", errors.New("refresh token not found")
	}
	if rtEntity.Revoked {
		return "", "", errors.New("refresh token revoked")
	}
	if rtEntity.ExpiresAt.Before(s.now()) {
		return "", "", errors.New("refresh token expired")
	}

	player, err := s.playerRepo.GetByID(ctx, rtEntity.PlayerID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return "", "", errors.New("player not found")
	}

	accessToken, err := s.generateAccessToken(player)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	// The refresh token is kept until it expires.
	return accessToken, refreshToken, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	rtEntity, err := s.authRepo.GetRefreshTokenByHash(ctx, s.hashToken(refreshToken))
	if err != nil {
		return fmt.Errorf("failed to get refresh token: %w", err)
	}
	if rtEntity == nil {
		return nil
	}

	// Logging out ends every session the player has open.
	if _, err := s.authRepo.RevokePlayerTokens(ctx, rtEntity.PlayerID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// ParseAccessToken validates an access token and returns the player it was issued to.
func (s *AuthService) ParseAccessToken(token string) (uuid.UUID, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return uuid.Nil, domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	playerID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return playerID, nil
}

func (s *AuthService) generateAccessToken(player *domain.Player) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":    player.ID.String(),
		"wallet": player.WalletAddress,
		"exp":    now.Add(accessTokenTTL).Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
