package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

type CreateSessionInput struct {
	Mode     domain.Mode
	PlayerID *uuid.UUID
}

type SessionVoteInput struct {
	SessionID uuid.UUID
	PlayerID  *uuid.UUID
	MemeID    int
	Choice    domain.Choice
}

type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*domain.SessionView, error)
	Get(ctx context.Context, id uuid.UUID, playerID *uuid.UUID) (*domain.SessionView, error)
	Start(ctx context.Context, id uuid.UUID, playerID *uuid.UUID) (*domain.SessionView, error)
	Vote(ctx context.Context, input SessionVoteInput) (*domain.SessionView, error)
	Reset(ctx context.Context, id uuid.UUID, playerID *uuid.UUID) (*domain.SessionView, error)
	Report(ctx context.Context, id uuid.UUID, playerID *uuid.UUID) (*domain.SessionReport, error)
	Deck(ctx context.Context) ([]domain.Meme, error)
}

type SummaryRepository interface {
	SaveReport(ctx context.Context, report *domain.SessionReport) error
	GetReport(ctx context.Context, sessionID uuid.UUID) (*domain.SessionReport, error)
}
