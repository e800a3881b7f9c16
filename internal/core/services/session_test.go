package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

// fakeRecorder confirms votes once release is closed. Dislikes fail when
// failDislikes is set.
type fakeRecorder struct {
	release      chan struct{}
	failDislikes bool
	calls        atomic.Int32
}

func (r *fakeRecorder) RecordVote(ctx context.Context, memeID int, choice domain.Choice) (string, error) {
	r.calls.Add(1)
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if r.failDislikes && choice == domain.ChoiceDislike {
		return "", errors.New("ledger unavailable")
	}
	return fmt.Sprintf("ref-%d-%s", memeID, choice), nil
}

func newTestSession(t *testing.T, n int, opts SessionOptions) *Session {
	t.Helper()
	if opts.Duration == 0 {
		opts.Duration = 30 * time.Second
	}
	if opts.Policy.CompletionReward == 0 && opts.Policy.InTimeReward == 0 {
		opts.Policy = LiveRewardPolicy()
	}
	s, err := NewSession(testDeck(n), opts)
	require.NoError(t, err)
	return s
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func assertInvariants(t *testing.T, s *Session) {
	t.Helper()
	state := s.Snapshot()
	assert.Equal(t, len(state.Votes), state.Likes+state.Dislikes)
	assert.LessOrEqual(t, state.CurrentIndex, state.DeckSize)
	assert.GreaterOrEqual(t, state.TimeRemaining, time.Duration(0))
	if state.Phase == domain.PhaseEnded {
		assert.NotNil(t, state.Summary)
	} else {
		assert.Nil(t, state.Summary)
	}
}

func TestNewSession_Validation(t *testing.T) {
	_, err := NewSession(nil, SessionOptions{Duration: time.Second})
	assert.ErrorIs(t, err, domain.ErrDeckUnavailable)

	_, err = NewSession(testDeck(1), SessionOptions{})
	assert.Error(t, err)

	_, err = NewSession(testDeck(1), SessionOptions{Duration: time.Second, Policy: RewardPolicy{InTimeReward: -1}})
	assert.Error(t, err)
}

func TestSession_FreshState(t *testing.T) {
	s := newTestSession(t, 3, SessionOptions{Duration: 10 * time.Second})

	state := s.Snapshot()
	assert.Equal(t, domain.PhaseNotStarted, state.Phase)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, 3, state.DeckSize)
	assert.Equal(t, 10*time.Second, state.TimeRemaining)
	assert.Empty(t, state.Votes)
	assert.Nil(t, state.Summary)

	_, ok := s.CurrentMeme()
	assert.False(t, ok)
}

func TestSession_VoteThroughDeck(t *testing.T) {
	s := newTestSession(t, 3, SessionOptions{})

	require.True(t, s.Start())
	assert.False(t, s.Start(), "start is only valid before a run")

	for _, choice := range []domain.Choice{domain.ChoiceLike, domain.ChoiceDislike, domain.ChoiceLike} {
		receipt, ok := s.Vote(context.Background(), choice)
		require.True(t, ok)
		record, err := receipt.Wait(waitCtx(t))
		require.NoError(t, err)
		assert.Equal(t, domain.VoteStatusConfirmed, record.Status)
		assertInvariants(t, s)
	}

	state := s.Snapshot()
	assert.Equal(t, domain.PhaseEnded, state.Phase)
	assert.Equal(t, 3, state.CurrentIndex)
	assert.Equal(t, 2, state.Likes)
	assert.Equal(t, 1, state.Dislikes)
	require.NotNil(t, state.Summary)
	assert.True(t, state.Summary.Completed)
	assert.True(t, state.Summary.FinishedWithTimeRemaining)
	assert.Equal(t, 100.0, state.Summary.Reward)

	_, ok := s.Vote(context.Background(), domain.ChoiceLike)
	assert.False(t, ok, "votes after the end are not accepted")
	assert.Len(t, s.Snapshot().Votes, 3)
}

func TestSession_TimeoutWithoutVotes(t *testing.T) {
	s := newTestSession(t, 3, SessionOptions{Duration: 10 * time.Second})
	require.True(t, s.Start())

	assert.True(t, s.Tick(10*time.Second))

	state := s.Snapshot()
	assert.Equal(t, domain.PhaseEnded, state.Phase)
	assert.Equal(t, time.Duration(0), state.TimeRemaining)
	require.NotNil(t, state.Summary)
	assert.False(t, state.Summary.Completed)
	assert.False(t, state.Summary.FinishedWithTimeRemaining)
	assert.Nil(t, state.Summary.MostLiked)
	assert.Equal(t, 0.0, state.Summary.Reward)

	assert.False(t, s.Tick(time.Second), "ticks after the end do nothing")
}

func TestSession_TickClampsAndIgnoresNonPositive(t *testing.T) {
	s := newTestSession(t, 2, SessionOptions{Duration: time.Second})

	assert.False(t, s.Tick(time.Second), "ticks before start do nothing")
	assert.Equal(t, time.Second, s.Snapshot().TimeRemaining)

	require.True(t, s.Start())
	assert.False(t, s.Tick(0))
	assert.False(t, s.Tick(-time.Second))
	assert.Equal(t, time.Second, s.Snapshot().TimeRemaining)

	for i := 0; i < 9; i++ {
		require.False(t, s.Tick(100*time.Millisecond))
	}
	assert.Equal(t, 100*time.Millisecond, s.Snapshot().TimeRemaining)
	assert.True(t, s.Tick(time.Hour))
	assert.Equal(t, time.Duration(0), s.Snapshot().TimeRemaining)
	assertInvariants(t, s)
}

func TestSession_VoteBeforeStartIsNoop(t *testing.T) {
	s := newTestSession(t, 2, SessionOptions{})

	_, ok := s.Vote(context.Background(), domain.ChoiceLike)
	assert.False(t, ok)
	_, ok = s.Vote(context.Background(), domain.Choice("meh"))
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot().Votes)
}

func TestSession_VoteOnGuardsDisplayedMeme(t *testing.T) {
	s := newTestSession(t, 3, SessionOptions{})
	require.True(t, s.Start())

	_, ok := s.VoteOn(context.Background(), 2, domain.ChoiceLike)
	assert.False(t, ok)

	_, ok = s.VoteOn(context.Background(), 1, domain.ChoiceLike)
	assert.True(t, ok)

	_, ok = s.VoteOn(context.Background(), 1, domain.ChoiceDislike)
	assert.False(t, ok, "a second swipe on the same card is rejected")

	meme, ok := s.CurrentMeme()
	require.True(t, ok)
	assert.Equal(t, 2, meme.ID)
}

func TestSession_ConcurrentSwipesOnSameCard(t *testing.T) {
	s := newTestSession(t, 5, SessionOptions{})
	require.True(t, s.Start())

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.VoteOn(context.Background(), 1, domain.ChoiceLike); ok {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)
	assertInvariants(t, s)
}

func TestSession_RecorderConfirms(t *testing.T) {
	recorder := &fakeRecorder{release: make(chan struct{})}
	var resolved atomic.Int32
	s := newTestSession(t, 3, SessionOptions{
		Recorder: recorder,
		OnVoteResolved: func(index int, record domain.VoteRecord, err error) {
			resolved.Add(1)
		},
	})
	require.True(t, s.Start())

	receipt, ok := s.Vote(context.Background(), domain.ChoiceLike)
	require.True(t, ok)
	assert.Equal(t, domain.VoteStatusPending, receipt.Record.Status)

	state := s.Snapshot()
	require.Len(t, state.Votes, 1)
	assert.Equal(t, domain.VoteStatusPending, state.Votes[0].Status)
	assert.Equal(t, 1, state.Likes)
	assert.Equal(t, 1, state.CurrentIndex)

	close(recorder.release)
	record, err := receipt.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, domain.VoteStatusConfirmed, record.Status)
	assert.Equal(t, "ref-1-like", record.ExternalRef)

	s.WaitConfirmations()
	state = s.Snapshot()
	assert.Equal(t, domain.VoteStatusConfirmed, state.Votes[0].Status)
	assert.Equal(t, "ref-1-like", state.Votes[0].ExternalRef)
	assert.Equal(t, int32(1), resolved.Load())
}

func TestSession_RecorderFailureKeepsCounters(t *testing.T) {
	recorder := &fakeRecorder{failDislikes: true}
	var failures atomic.Int32
	s := newTestSession(t, 3, SessionOptions{
		Recorder: recorder,
		OnVoteResolved: func(index int, record domain.VoteRecord, err error) {
			if err != nil {
				failures.Add(1)
			}
		},
	})
	require.True(t, s.Start())

	receipt, ok := s.Vote(context.Background(), domain.ChoiceDislike)
	require.True(t, ok)
	record, err := receipt.Wait(waitCtx(t))
	require.Error(t, err)
	assert.Equal(t, domain.VoteStatusFailed, record.Status)

	s.WaitConfirmations()
	state := s.Snapshot()
	assert.Equal(t, domain.PhaseRunning, state.Phase)
	assert.Equal(t, 1, state.Dislikes)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Equal(t, domain.VoteStatusFailed, state.Votes[0].Status)
	assert.NotEmpty(t, state.Votes[0].Failure)
	assert.Equal(t, int32(1), failures.Load())

	// The session carries on after a failed recording.
	_, ok = s.Vote(context.Background(), domain.ChoiceLike)
	assert.True(t, ok)
}

func TestSession_TimeoutDoesNotWaitForPending(t *testing.T) {
	recorder := &fakeRecorder{release: make(chan struct{})}
	s := newTestSession(t, 3, SessionOptions{Recorder: recorder, Duration: time.Second})
	require.True(t, s.Start())

	_, ok := s.Vote(context.Background(), domain.ChoiceLike)
	require.True(t, ok)
	require.True(t, s.Tick(time.Second))

	state := s.Snapshot()
	assert.Equal(t, domain.PhaseEnded, state.Phase)
	assert.Equal(t, domain.VoteStatusPending, state.Votes[0].Status)
	assert.Equal(t, 1, state.Summary.TotalVotes)

	close(recorder.release)
	s.WaitConfirmations()
	assert.Equal(t, domain.VoteStatusConfirmed, s.Snapshot().Votes[0].Status)
}

func TestSession_ResetMatchesFreshSession(t *testing.T) {
	opts := SessionOptions{Duration: 5 * time.Second}
	fresh := newTestSession(t, 3, opts)
	s := newTestSession(t, 3, opts)

	require.True(t, s.Start())
	_, ok := s.Vote(context.Background(), domain.ChoiceLike)
	require.True(t, ok)
	s.Tick(5 * time.Second)
	require.Equal(t, domain.PhaseEnded, s.Phase())

	s.Reset()
	assert.Equal(t, fresh.Snapshot(), s.Snapshot())

	// Reset works from any phase.
	require.True(t, s.Start())
	s.Reset()
	assert.Equal(t, fresh.Snapshot(), s.Snapshot())
	s.Reset()
	assert.Equal(t, fresh.Snapshot(), s.Snapshot())
}

func TestSession_StaleConfirmationAfterReset(t *testing.T) {
	recorder := &fakeRecorder{release: make(chan struct{}), failDislikes: true}
	s := newTestSession(t, 3, SessionOptions{Recorder: recorder})

	require.True(t, s.Start())
	_, ok := s.Vote(context.Background(), domain.ChoiceDislike)
	require.True(t, ok)

	s.Reset()
	require.True(t, s.Start())
	receipt, ok := s.Vote(context.Background(), domain.ChoiceLike)
	require.True(t, ok)

	close(recorder.release)
	_, err := receipt.Wait(waitCtx(t))
	require.NoError(t, err)
	s.WaitConfirmations()

	state := s.Snapshot()
	require.Len(t, state.Votes, 1)
	assert.Equal(t, domain.ChoiceLike, state.Votes[0].Choice)
	assert.Equal(t, domain.VoteStatusConfirmed, state.Votes[0].Status)
	assert.Empty(t, state.Votes[0].Failure)
	assert.Equal(t, int32(2), recorder.calls.Load())
}

func TestSession_OnEndRunsOncePerRun(t *testing.T) {
	var ends atomic.Int32
	s := newTestSession(t, 1, SessionOptions{
		Duration: time.Second,
		OnEnd: func(run uint64, state domain.SessionState) {
			ends.Add(1)
			assert.Equal(t, domain.PhaseEnded, state.Phase)
			assert.NotNil(t, state.Summary)
		},
	})

	require.True(t, s.Start())
	_, ok := s.Vote(context.Background(), domain.ChoiceLike)
	require.True(t, ok)
	s.Tick(time.Second)
	assert.Equal(t, int32(1), ends.Load())

	s.Reset()
	require.True(t, s.Start())
	s.Tick(2 * time.Second)
	assert.Equal(t, int32(2), ends.Load())
}

func TestSession_EndTimeBelongsToRun(t *testing.T) {
	endedAt := time.Date(2025, 8, 2, 15, 0, 0, 0, time.UTC)
	var s *Session
	var runs []uint64
	s = newTestSession(t, 1, SessionOptions{
		Now: func() time.Time { return endedAt },
		OnEnd: func(run uint64, state domain.SessionState) {
			runs = append(runs, run)
			require.NotNil(t, state.EndedAt)
			assert.Equal(t, endedAt, *state.EndedAt)
			if len(runs) == 1 {
				// A restart can land before the end hook of the previous run.
				s.Reset()
				require.True(t, s.Start())
			}
		},
	})

	require.True(t, s.Start())
	_, ok := s.Vote(context.Background(), domain.ChoiceLike)
	require.True(t, ok)

	state := s.Snapshot()
	assert.Equal(t, domain.PhaseRunning, state.Phase)
	assert.Nil(t, state.EndedAt)
	assert.Nil(t, state.Summary)

	_, ok = s.Vote(context.Background(), domain.ChoiceDislike)
	require.True(t, ok)
	require.Len(t, runs, 2)
	assert.Less(t, runs[0], runs[1])
	require.NotNil(t, s.Snapshot().EndedAt)
}

func TestSession_DeckIsCopied(t *testing.T) {
	deck := testDeck(2)
	s, err := NewSession(deck, SessionOptions{Duration: time.Second, Policy: LiveRewardPolicy()})
	require.NoError(t, err)

	deck[0].Title = "changed"
	assert.Equal(t, "Meme", s.Deck()[0].Title)
}
