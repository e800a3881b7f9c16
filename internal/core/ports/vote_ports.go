package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

// VoteRecorder registers an accepted vote outside the session and returns an
// opaque reference to it.
type VoteRecorder interface {
	RecordVote(ctx context.Context, memeID int, choice domain.Choice) (string, error)
}

// VoteLedger hands out recorders bound to one player and session.
type VoteLedger interface {
	ForPlayer(playerID, sessionID uuid.UUID) VoteRecorder
}

type VoteRepository interface {
	ListMemeIDs(ctx context.Context) ([]int, error)
}
