package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeServer struct {
	err error
}

func (s *fakeServer) Shutdown(ctx context.Context) error {
	return s.err
}

type fakeDrainer struct {
	drained bool
}

func (d *fakeDrainer) Drain() {
	d.drained = true
}

func TestShutdown_DrainsAfterServerError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sessions := &fakeDrainer{}

	shutdown(context.Background(), &fakeServer{err: context.DeadlineExceeded}, sessions, logger)

	assert.True(t, sessions.drained)
	assert.Contains(t, buf.String(), `"event":"server_shutdown_failed"`)
	assert.Contains(t, buf.String(), `"event":"server_drained"`)
}

func TestShutdown_Clean(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sessions := &fakeDrainer{}

	shutdown(context.Background(), &fakeServer{}, sessions, logger)

	assert.True(t, sessions.drained)
	assert.NotContains(t, buf.String(), "server_shutdown_failed")
}
