package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type fakeClocked struct {
	mu      sync.Mutex
	ticks   int
	elapsed time.Duration
	evicts  int
}

func (f *fakeClocked) TickAll(elapsed time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks++
	f.elapsed += elapsed
	return 0
}

func (f *fakeClocked) Evict(now time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evicts++
	return 0
}

func (f *fakeClocked) counts() (int, int, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ticks, f.evicts, f.elapsed
}

func TestScheduler_TicksWithElapsedTime(t *testing.T) {
	target := &fakeClocked{}
	scheduler := NewScheduler(target, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		ticks, _, _ := target.counts()
		return ticks >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done

	ticks, evicts, elapsed := target.counts()
	assert.Equal(t, ticks, evicts)
	assert.GreaterOrEqual(t, elapsed, time.Duration(ticks)*time.Millisecond)
}

func TestScheduler_DefaultInterval(t *testing.T) {
	scheduler := NewScheduler(&fakeClocked{}, 0, nil)
	assert.Equal(t, time.Second, scheduler.interval)
}

func TestScheduler_DrivesSessions(t *testing.T) {
	cfg := testServiceConfig()
	cfg.DemoDuration = 20 * time.Millisecond
	svc := NewSessionService(&fakeDeck{memes: testDeck(3)}, nil, nil, nil, cfg, nil)

	view, err := svc.Create(context.Background(), ports.CreateSessionInput{Mode: domain.ModeDemo})
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), view.ID, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewScheduler(svc, 5*time.Millisecond, nil).Run(ctx)

	require.Eventually(t, func() bool {
		v, err := svc.Get(context.Background(), view.ID, nil)
		return err == nil && v.State.Summary != nil
	}, 2*time.Second, 5*time.Millisecond)
}
