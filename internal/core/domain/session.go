package domain

import (
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseRunning    Phase = "running"
	PhaseEnded      Phase = "ended"
)

type Mode string

const (
	ModeDemo Mode = "demo"
	ModeLive Mode = "live"
)

func (m Mode) Valid() bool {
	return m == ModeDemo || m == ModeLive
}

// SessionState is a point-in-time copy of a voting session.
type SessionState struct {
	Phase         Phase           `json:"phase"`
	CurrentIndex  int             `json:"current_index"`
	DeckSize      int             `json:"deck_size"`
	Likes         int             `json:"likes"`
	Dislikes      int             `json:"dislikes"`
	TimeRemaining time.Duration   `json:"time_remaining"`
	Votes         []VoteRecord    `json:"votes"`
	Summary       *SessionSummary `json:"summary,omitempty"`
	EndedAt       *time.Time      `json:"ended_at,omitempty"`
}

// HasCurrent reports whether a meme is on display and can be voted on.
func (s SessionState) HasCurrent() bool {
	return s.Phase == PhaseRunning && s.CurrentIndex < s.DeckSize
}

type MemeStats struct {
	Meme     Meme    `json:"meme"`
	Likes    int     `json:"likes"`
	Dislikes int     `json:"dislikes"`
	Total    int     `json:"total_votes"`
	LikeRate float64 `json:"like_rate"`
}

type SessionSummary struct {
	TotalVotes                int         `json:"total_votes"`
	Likes                     int         `json:"likes"`
	Dislikes                  int         `json:"dislikes"`
	Completed                 bool        `json:"completed"`
	FinishedWithTimeRemaining bool        `json:"finished_with_time_remaining"`
	Reward                    float64     `json:"reward"`
	MostLiked                 *Meme       `json:"most_liked,omitempty"`
	MostDisliked              *Meme       `json:"most_disliked,omitempty"`
	MostDivisive              *Meme       `json:"most_divisive,omitempty"`
	Stats                     []MemeStats `json:"stats"`
	Rankings                  []MemeStats `json:"rankings"`
}

// SessionView is what the session service exposes for one hosted session.
type SessionView struct {
	ID          uuid.UUID    `json:"id"`
	Mode        Mode         `json:"mode"`
	PlayerID    *uuid.UUID   `json:"player_id,omitempty"`
	CurrentMeme *Meme        `json:"current_meme,omitempty"`
	State       SessionState `json:"state"`
	CreatedAt   time.Time    `json:"created_at"`
}

// SessionReport is the persisted and downloadable end-of-session record.
type SessionReport struct {
	SessionID uuid.UUID      `json:"session_id"`
	PlayerID  *uuid.UUID     `json:"player_id,omitempty"`
	Mode      Mode           `json:"mode"`
	Summary   SessionSummary `json:"summary"`
	Votes     []VoteRecord   `json:"votes"`
	EndedAt   time.Time      `json:"ended_at"`
}
