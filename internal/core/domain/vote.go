package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Choice string

const (
	ChoiceLike    Choice = "like"
	ChoiceDislike Choice = "dislike"
)

func (c Choice) Valid() bool {
	return c == ChoiceLike || c == ChoiceDislike
}

// SwipeThreshold is the horizontal drag distance a swipe must exceed to count as a vote.
const SwipeThreshold = 100.0

// ChoiceFromSwipe maps a horizontal drag distance to a vote. Right is a like.
// Distances within the threshold are not a vote.
func ChoiceFromSwipe(distance float64) (Choice, bool) {
	if math.IsNaN(distance) || math.Abs(distance) <= SwipeThreshold {
		return "", false
	}
	if distance > 0 {
		return ChoiceLike, true
	}
	return ChoiceDislike, true
}

type VoteStatus string

const (
	VoteStatusPending   VoteStatus = "pending"
	VoteStatusConfirmed VoteStatus = "confirmed"
	VoteStatusFailed    VoteStatus = "failed"
)

type VoteRecord struct {
	MemeID      int        `json:"meme_id"`
	Choice      Choice     `json:"choice"`
	OccurredAt  time.Time  `json:"occurred_at"`
	ExternalRef string     `json:"external_ref,omitempty"`
	Status      VoteStatus `json:"status"`
	Failure     string     `json:"failure,omitempty"`
}

// Vote is a ledger row written by the vote recorder.
type Vote struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	MemeID    int       `json:"meme_id"`
	Choice    Choice    `json:"choice"`
	Fee       int64     `json:"fee"`
	CreatedAt time.Time `json:"created_at"`
}
