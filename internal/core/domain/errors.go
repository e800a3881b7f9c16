package domain

import "errors"

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotEnded      = errors.New("session has not ended")
	ErrDeckUnavailable      = errors.New("meme deck unavailable")
	ErrInvalidMode          = errors.New("invalid game mode")
	ErrInvalidChoice        = errors.New("invalid vote choice")
	ErrVoteRejected         = errors.New("vote not accepted")
	ErrNotFunded            = errors.New("player balance below the minimum to play")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidWalletAddress = errors.New("invalid wallet address")
	ErrUnauthorized         = errors.New("player not connected")
	ErrInternal             = errors.New("internal server error")
)
