package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type SessionOptions struct {
	Duration time.Duration
	Policy   RewardPolicy
	// Recorder registers votes externally. Without one, votes are confirmed on acceptance.
	Recorder      ports.VoteRecorder
	RecordTimeout time.Duration
	// OnVoteResolved runs after the recorder settles a vote, outside the session lock.
	OnVoteResolved func(index int, record domain.VoteRecord, err error)
	// OnEnd runs once per run when the session ends, outside the session lock.
	// run identifies the run that ended; a later Reset starts a higher one.
	OnEnd  func(run uint64, state domain.SessionState)
	Now    func() time.Time
	Logger *slog.Logger
}

// Session is the timed swipe-voting state machine for one player and one deck.
// It owns no timer: time only advances through Tick.
type Session struct {
	deck []domain.Meme
	opts SessionOptions

	mu           sync.Mutex
	run          uint64
	phase        domain.Phase
	currentIndex int
	likes        int
	dislikes     int
	remaining    time.Duration
	votes        []domain.VoteRecord
	summary      *domain.SessionSummary
	endedAt      time.Time

	confirmations sync.WaitGroup
}

func NewSession(deck []domain.Meme, opts SessionOptions) (*Session, error) {
	if len(deck) == 0 {
		return nil, domain.ErrDeckUnavailable
	}
	if opts.Duration <= 0 {
		return nil, errors.New("session duration must be positive")
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Logger = resolveLogger(opts.Logger)

	s := &Session{
		deck: append([]domain.Meme(nil), deck...),
		opts: opts,
	}
	s.resetLocked()
	return s, nil
}

// Start arms a new run. It only succeeds from the not-started phase.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseNotStarted {
		return false
	}
	s.phase = domain.PhaseRunning
	s.currentIndex = 0
	s.likes, s.dislikes = 0, 0
	s.votes = nil
	s.remaining = s.opts.Duration
	s.summary = nil
	return true
}

// Vote casts choice on the displayed meme. The returned receipt settles when the
// recorder confirms or fails the vote; false means the vote was not accepted.
func (s *Session) Vote(ctx context.Context, choice domain.Choice) (*Receipt, bool) {
	return s.vote(ctx, nil, choice)
}

// VoteOn is Vote guarded by the meme the caller displayed, so a second swipe on
// a card that was already voted is rejected instead of landing on the next one.
func (s *Session) VoteOn(ctx context.Context, memeID int, choice domain.Choice) (*Receipt, bool) {
	return s.vote(ctx, &memeID, choice)
}

func (s *Session) vote(ctx context.Context, memeID *int, choice domain.Choice) (*Receipt, bool) {
	if !choice.Valid() {
		return nil, false
	}

	s.mu.Lock()
	if s.phase != domain.PhaseRunning || s.currentIndex >= len(s.deck) {
		s.mu.Unlock()
		return nil, false
	}
	meme := s.deck[s.currentIndex]
	if memeID != nil && *memeID != meme.ID {
		s.mu.Unlock()
		return nil, false
	}

	record := domain.VoteRecord{
		MemeID:     meme.ID,
		Choice:     choice,
		OccurredAt: s.opts.Now(),
		Status:     domain.VoteStatusConfirmed,
	}
	if s.opts.Recorder != nil {
		record.Status = domain.VoteStatusPending
	}

	index := len(s.votes)
	s.votes = append(s.votes, record)
	if choice == domain.ChoiceLike {
		s.likes++
	} else {
		s.dislikes++
	}
	s.currentIndex++

	receipt := &Receipt{Index: index, Record: record, done: make(chan struct{})}
	if s.opts.Recorder != nil {
		s.confirmations.Add(1)
		go s.confirm(ctx, s.run, receipt)
	} else {
		receipt.settle(record, nil)
	}

	var ended *domain.SessionState
	run := s.run
	if s.currentIndex >= len(s.deck) {
		ended = s.endLocked()
	}
	s.mu.Unlock()

	s.notifyEnd(run, ended)
	return receipt, true
}

// Tick advances the countdown by elapsed and ends the run when it reaches zero.
// It reports whether this call ended the session.
func (s *Session) Tick(elapsed time.Duration) bool {
	if elapsed <= 0 {
		return false
	}

	s.mu.Lock()
	if s.phase != domain.PhaseRunning {
		s.mu.Unlock()
		return false
	}
	s.remaining -= elapsed
	if s.remaining < 0 {
		s.remaining = 0
	}

	var ended *domain.SessionState
	run := s.run
	if s.remaining == 0 {
		ended = s.endLocked()
	}
	s.mu.Unlock()

	s.notifyEnd(run, ended)
	return ended != nil
}

// Reset returns the session to a fresh not-started run over the same deck.
// Confirmations still in flight from the previous run are dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) Snapshot() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// CurrentMeme returns the meme on display while the session is running.
func (s *Session) CurrentMeme() (domain.Meme, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseRunning || s.currentIndex >= len(s.deck) {
		return domain.Meme{}, false
	}
	return s.deck[s.currentIndex], true
}

func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Deck() []domain.Meme {
	return append([]domain.Meme(nil), s.deck...)
}

// WaitConfirmations blocks until every recorder call started so far has returned.
func (s *Session) WaitConfirmations() {
	s.confirmations.Wait()
}

func (s *Session) resetLocked() {
	s.run++
	s.phase = domain.PhaseNotStarted
	s.currentIndex = 0
	s.likes, s.dislikes = 0, 0
	s.remaining = s.opts.Duration
	s.votes = nil
	s.summary = nil
	s.endedAt = time.Time{}
}

func (s *Session) endLocked() *domain.SessionState {
	summary := Summarize(s.deck, s.votes, s.currentIndex, s.remaining, s.opts.Policy)
	s.summary = &summary
	s.phase = domain.PhaseEnded
	s.endedAt = s.opts.Now()

	s.opts.Logger.Info("voting session ended",
		"event", "session_ended",
		"total_votes", summary.TotalVotes,
		"completed", summary.Completed,
		"time_remaining_ms", s.remaining.Milliseconds(),
		"reward", summary.Reward,
	)

	state := s.snapshotLocked()
	return &state
}

func (s *Session) notifyEnd(run uint64, state *domain.SessionState) {
	if state != nil && s.opts.OnEnd != nil {
		s.opts.OnEnd(run, *state)
	}
}

func (s *Session) snapshotLocked() domain.SessionState {
	state := domain.SessionState{
		Phase:         s.phase,
		CurrentIndex:  s.currentIndex,
		DeckSize:      len(s.deck),
		Likes:         s.likes,
		Dislikes:      s.dislikes,
		TimeRemaining: s.remaining,
		Votes:         append([]domain.VoteRecord{}, s.votes...),
	}
	if s.summary != nil {
		summary := *s.summary
		state.Summary = &summary
	}
	if !s.endedAt.IsZero() {
		endedAt := s.endedAt
		state.EndedAt = &endedAt
	}
	return state
}

func (s *Session) confirm(parent context.Context, run uint64, receipt *Receipt) {
	defer s.confirmations.Done()

	ctx := context.WithoutCancel(parent)
	if s.opts.RecordTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RecordTimeout)
		defer cancel()
	}

	record := receipt.Record
	ref, err := s.opts.Recorder.RecordVote(ctx, record.MemeID, record.Choice)
	if err != nil {
		err = fmt.Errorf("failed to record vote for meme %d: %w", record.MemeID, err)
		record.Status = domain.VoteStatusFailed
		record.Failure = err.Error()
		s.opts.Logger.Warn("vote recording failed",
			"event", "session_vote_record_failed",
			"meme_id", record.MemeID,
			"choice", record.Choice,
			"error", err.Error(),
		)
	} else {
		record.Status = domain.VoteStatusConfirmed
		record.ExternalRef = ref
	}

	s.mu.Lock()
	if s.run == run && receipt.Index < len(s.votes) {
		s.votes[receipt.Index].Status = record.Status
		s.votes[receipt.Index].ExternalRef = record.ExternalRef
		s.votes[receipt.Index].Failure = record.Failure
	}
	s.mu.Unlock()

	receipt.settle(record, err)
	if s.opts.OnVoteResolved != nil {
		s.opts.OnVoteResolved(receipt.Index, record, err)
	}
}

// Receipt tracks one accepted vote until the recorder settles it.
type Receipt struct {
	Index  int
	Record domain.VoteRecord

	done  chan struct{}
	final domain.VoteRecord
	err   error
}

func (r *Receipt) settle(record domain.VoteRecord, err error) {
	r.final = record
	r.err = err
	close(r.done)
}

func (r *Receipt) Done() <-chan struct{} {
	return r.done
}

// Wait returns the settled record, and the recorder's error when it failed.
func (r *Receipt) Wait(ctx context.Context) (domain.VoteRecord, error) {
	select {
	case <-r.done:
		return r.final, r.err
	case <-ctx.Done():
		return r.Record, ctx.Err()
	}
}
