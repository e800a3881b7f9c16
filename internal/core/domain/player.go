package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID            uuid.UUID `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

type Balance struct {
	PlayerID  uuid.UUID `json:"player_id"`
	Credits   int64     `json:"credits"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlayerStats is a player's lifetime record in live play.
type PlayerStats struct {
	PlayerID       uuid.UUID `json:"player_id"`
	TotalSwipes    int64     `json:"total_swipes"`
	TotalReward    float64   `json:"total_reward"`
	SessionsPlayed int64     `json:"sessions_played"`
	// SwipesToNextReward counts down to the next step bonus; zero when no step applies.
	SwipesToNextReward int `json:"swipes_to_next_reward"`
}

type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	PlayerID  uuid.UUID `json:"player_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

var walletAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeWalletAddress validates an EVM address and lowercases it.
func NormalizeWalletAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !walletAddressPattern.MatchString(address) {
		return "", ErrInvalidWalletAddress
	}
	return strings.ToLower(address), nil
}
