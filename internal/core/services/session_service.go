package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type SessionServiceConfig struct {
	LiveDuration  time.Duration
	DemoDuration  time.Duration
	LivePolicy    RewardPolicy
	DemoPolicy    RewardPolicy
	RecordTimeout time.Duration
	// TTL is how long ended or never-started sessions are kept around.
	TTL time.Duration
}

func DefaultSessionServiceConfig() SessionServiceConfig {
	return SessionServiceConfig{
		LiveDuration:  30 * time.Second,
		DemoDuration:  10 * time.Second,
		LivePolicy:    LiveRewardPolicy(),
		DemoPolicy:    DemoRewardPolicy(),
		RecordTimeout: 10 * time.Second,
		TTL:           30 * time.Minute,
	}
}

type hostedSession struct {
	id        uuid.UUID
	mode      domain.Mode
	playerID  *uuid.UUID
	session   *Session
	createdAt time.Time

	// saveMu orders report saves; savedRun is the newest run persisted so far.
	saveMu   sync.Mutex
	savedRun uint64
}

// SessionService hosts voting sessions in memory and wires them to the deck,
// the vote ledger, the funding gate and summary storage.
type SessionService struct {
	deck      ports.DeckProvider
	ledger    ports.VoteLedger
	gate      ports.FundingGate
	summaries ports.SummaryRepository
	cfg       SessionServiceConfig
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*hostedSession
	saves    sync.WaitGroup
}

// NewSessionService builds the service. ledger, gate and summaries may be nil,
// in which case live votes are confirmed locally, nobody is gated and reports
// are not persisted.
func NewSessionService(deck ports.DeckProvider, ledger ports.VoteLedger, gate ports.FundingGate, summaries ports.SummaryRepository, cfg SessionServiceConfig, logger *slog.Logger) *SessionService {
	return &SessionService{
		deck:      deck,
		ledger:    ledger,
		gate:      gate,
		summaries: summaries,
		cfg:       cfg,
		logger:    resolveLogger(logger),
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*hostedSession),
	}
}

func (s *SessionService) Deck(ctx context.Context) ([]domain.Meme, error) {
	deck, err := s.deck.Deck(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeckUnavailable, err)
	}
	if len(deck) == 0 {
		return nil, domain.ErrDeckUnavailable
	}
	return deck, nil
}

func (s *SessionService) Create(ctx context.Context, input ports.CreateSessionInput) (*domain.SessionView, error) {
	if !input.Mode.Valid() {
		return nil, domain.ErrInvalidMode
	}
	if input.Mode == domain.ModeLive && input.PlayerID == nil {
		return nil, domain.ErrUnauthorized
	}

	deck, err := s.Deck(ctx)
	if err != nil {
		return nil, err
	}

	hosted := &hostedSession{
		id:        uuid.New(),
		mode:      input.Mode,
		playerID:  input.PlayerID,
		createdAt: s.now(),
	}

	opts := SessionOptions{
		Duration:      s.cfg.DemoDuration,
		Policy:        s.cfg.DemoPolicy,
		RecordTimeout: s.cfg.RecordTimeout,
		Logger:        s.logger.With("session_id", hosted.id.String(), "mode", string(input.Mode)),
		Now:           func() time.Time { return s.now() },
		OnEnd: func(run uint64, state domain.SessionState) {
			s.saveReport(hosted, run, state)
		},
		OnVoteResolved: func(index int, record domain.VoteRecord, err error) {
			if err != nil {
				return
			}
			s.logger.Info("vote confirmed",
				"event", "session_vote_confirmed",
				"session_id", hosted.id.String(),
				"vote_index", index,
				"meme_id", record.MemeID,
				"external_ref", record.ExternalRef,
			)
		},
	}
	if input.Mode == domain.ModeLive {
		opts.Duration = s.cfg.LiveDuration
		opts.Policy = s.cfg.LivePolicy
		if s.ledger != nil {
			opts.Recorder = s.ledger.ForPlayer(*input.PlayerID, hosted.id)
		}
	}

	session, err := NewSession(deck, opts)
	if err != nil {
		return nil, err
	}
	hosted.session = session

	s.mu.Lock()
	s.sessions[hosted.id] = hosted
	s.mu.Unlock()

	s.logger.Info("voting session created",
		"event", "session_created",
		"session_id", hosted.id.String(),
		"mode", string(input.Mode),
		"deck_size", len(deck),
	)

	return s.view(hosted), nil
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID, playerID *uuid.UUID) (*domain.SessionView, error) {
	hosted, err := s.lookup(id, playerID)
	if err != nil {
		return nil, err
	}
	return s.view(hosted), nil
}

func (s *SessionService) Start(ctx context.Context, id uuid.UUID, playerID *uuid.UUID) (*domain.SessionView, error) {
	hosted, err := s.lookup(id, playerID)
	if err != nil {
		return nil, err
	}

	if hosted.mode == domain.ModeLive && s.gate != nil && hosted.session.Phase() == domain.PhaseNotStarted {
		ok, err := s.gate.CanPlay(ctx, *hosted.playerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check player funding: %w", err)
		}
		if !ok {
			return nil, domain.ErrNotFunded
		}
	}

	if hosted.session.Start() {
		s.logger.Info("voting session started",
			"event", "session_started",
			"session_id", hosted.id.String(),
		)
	}
	return s.view(hosted), nil
}

func (s *SessionService) Vote(ctx context.Context, input ports.SessionVoteInput) (*domain.SessionView, error) {
	if !input.Choice.Valid() {
		return nil, domain.ErrInvalidChoice
	}
	hosted, err := s.lookup(input.SessionID, input.PlayerID)
	if err != nil {
		return nil, err
	}

	if _, ok := hosted.session.VoteOn(ctx, input.MemeID, input.Choice); !ok {
		return nil, domain.ErrVoteRejected
	}
	return s.view(hosted), nil
}

func (s *SessionService) Reset(ctx context.Context, id uuid.UUID, playerID *uuid.UUID) (*domain.SessionView, error) {
	hosted, err := s.lookup(id, playerID)
	if err != nil {
		return nil, err
	}
	hosted.session.Reset()
	return s.view(hosted), nil
}

func (s *SessionService) Report(ctx context.Context, id uuid.UUID, playerID *uuid.UUID) (*domain.SessionReport, error) {
	hosted, err := s.lookup(id, playerID)
	if errors.Is(err, domain.ErrSessionNotFound) && s.summaries != nil {
		return s.storedReport(ctx, id, playerID)
	}
	if err != nil {
		return nil, err
	}
	state := hosted.session.Snapshot()
	if state.Phase != domain.PhaseEnded || state.Summary == nil {
		return nil, domain.ErrSessionNotEnded
	}
	return buildReport(hosted, state), nil
}

// storedReport serves reports of sessions that were already evicted from memory.
func (s *SessionService) storedReport(ctx context.Context, id uuid.UUID, playerID *uuid.UUID) (*domain.SessionReport, error) {
	report, err := s.summaries.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.PlayerID != nil && (playerID == nil || *playerID != *report.PlayerID) {
		return nil, domain.ErrSessionNotFound
	}
	return report, nil
}

// TickAll advances every running session by elapsed.
func (s *SessionService) TickAll(elapsed time.Duration) int {
	ended := 0
	for _, hosted := range s.snapshotSessions() {
		if hosted.session.Tick(elapsed) {
			ended++
		}
	}
	return ended
}

// Evict drops sessions that ended, or were never started, more than TTL ago.
func (s *SessionService) Evict(now time.Time) int {
	if s.cfg.TTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.cfg.TTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, hosted := range s.sessions {
		state := hosted.session.Snapshot()
		stale := state.EndedAt != nil && state.EndedAt.Before(cutoff)
		if state.Phase == domain.PhaseNotStarted && hosted.createdAt.Before(cutoff) {
			stale = true
		}
		if stale {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Drain waits for every in-flight vote confirmation and report save.
func (s *SessionService) Drain() {
	for _, hosted := range s.snapshotSessions() {
		hosted.session.WaitConfirmations()
	}
	s.saves.Wait()
}

func (s *SessionService) snapshotSessions() []*hostedSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hosted := make([]*hostedSession, 0, len(s.sessions))
	for _, h := range s.sessions {
		hosted = append(hosted, h)
	}
	return hosted
}

func (s *SessionService) lookup(id uuid.UUID, playerID *uuid.UUID) (*hostedSession, error) {
	s.mu.RLock()
	hosted, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if hosted.playerID != nil && (playerID == nil || *playerID != *hosted.playerID) {
		// Someone else's live session is reported as missing.
		return nil, domain.ErrSessionNotFound
	}
	return hosted, nil
}

func (s *SessionService) view(hosted *hostedSession) *domain.SessionView {
	view := &domain.SessionView{
		ID:        hosted.id,
		Mode:      hosted.mode,
		PlayerID:  hosted.playerID,
		State:     hosted.session.Snapshot(),
		CreatedAt: hosted.createdAt,
	}
	if meme, ok := hosted.session.CurrentMeme(); ok {
		view.CurrentMeme = &meme
	}
	return view
}

// saveReport persists the report of an ended run in the background so the
// caller, often the scheduler's TickAll, is not held up by storage.
func (s *SessionService) saveReport(hosted *hostedSession, run uint64, state domain.SessionState) {
	if s.summaries == nil || state.Summary == nil {
		return
	}
	report := buildReport(hosted, state)

	s.saves.Add(1)
	go func() {
		defer s.saves.Done()

		hosted.saveMu.Lock()
		defer hosted.saveMu.Unlock()
		if run < hosted.savedRun {
			s.logger.Debug("skipping report of a replaced run",
				"event", "session_report_stale",
				"session_id", hosted.id.String(),
				"run", run,
			)
			return
		}
		hosted.savedRun = run

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.summaries.SaveReport(ctx, report); err != nil {
			s.logger.Error("failed to save session report",
				"event", "session_report_save_failed",
				"session_id", hosted.id.String(),
				"error", err.Error(),
			)
		}
	}()
}

func buildReport(hosted *hostedSession, state domain.SessionState) *domain.SessionReport {
	report := &domain.SessionReport{
		SessionID: hosted.id,
		PlayerID:  hosted.playerID,
		Mode:      hosted.mode,
		Summary:   *state.Summary,
		Votes:     state.Votes,
	}
	if state.EndedAt != nil {
		report.EndedAt = *state.EndedAt
	}
	return report
}
