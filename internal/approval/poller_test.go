package approval

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

type scriptedReader struct {
	mu       sync.Mutex
	statuses []enums.ApprovalStatus
	errs     []error
	calls    int
}

func (s *scriptedReader) Status(_ context.Context, _ string) (enums.ApprovalStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx >= len(s.statuses) {
		return s.statuses[len(s.statuses)-1], nil
	}
	return s.statuses[idx], nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestPoller(t *testing.T, reader statusReader, apply func(enums.ApprovalStatus)) *Poller {
	t.Helper()
	p, err := NewPoller(PollerParams{
		Reader:    reader,
		Logger:    testLogger(),
		RequestID: "DISC-test00000001",
		Interval:  5 * time.Millisecond,
		Apply:     apply,
	})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	return p
}

func TestPollerStopsOnApproval(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{statuses: []enums.ApprovalStatus{
		enums.ApprovalStatusPending,
		enums.ApprovalStatusPending,
		enums.ApprovalStatusApproved,
	}}

	var mu sync.Mutex
	var observed []enums.ApprovalStatus
	p := newTestPoller(t, reader, func(status enums.ApprovalStatus) {
		mu.Lock()
		observed = append(observed, status)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after approval")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(observed) != 3 {
		t.Fatalf("observed %d statuses, want 3", len(observed))
	}
	if observed[len(observed)-1] != enums.ApprovalStatusApproved {
		t.Fatalf("last status = %s, want approved", observed[len(observed)-1])
	}
}

func TestPollerStopsOnDenial(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{statuses: []enums.ApprovalStatus{
		enums.ApprovalStatusPending,
		enums.ApprovalStatusDenied,
	}}

	var mu sync.Mutex
	var last enums.ApprovalStatus
	p := newTestPoller(t, reader, func(status enums.ApprovalStatus) {
		mu.Lock()
		last = status
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after denial")
	}

	mu.Lock()
	defer mu.Unlock()
	if last != enums.ApprovalStatusDenied {
		t.Fatalf("last status = %s, want denied", last)
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{statuses: []enums.ApprovalStatus{enums.ApprovalStatusPending}}
	p := newTestPoller(t, reader, func(enums.ApprovalStatus) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}

func TestPollerSurvivesTransientErrors(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{
		statuses: []enums.ApprovalStatus{
			enums.ApprovalStatusPending,
			enums.ApprovalStatusPending,
			enums.ApprovalStatusApproved,
		},
		errs: []error{nil, pkgerrors.New(pkgerrors.CodePersistence, "db blip")},
	}

	p := newTestPoller(t, reader, func(enums.ApprovalStatus) {})

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller should keep polling through transient errors")
	}
}

func TestPollerStopsWhenRequestVanishes(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{
		statuses: []enums.ApprovalStatus{enums.ApprovalStatusPending},
		errs:     []error{pkgerrors.New(pkgerrors.CodeNotFound, "gone")},
	}
	p := newTestPoller(t, reader, func(enums.ApprovalStatus) {})

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller should stop when the request is gone")
	}
}
