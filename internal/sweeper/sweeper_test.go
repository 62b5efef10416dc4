package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type stubMaintainer struct {
	mu         sync.Mutex
	abandoned  int
	purged     int
	abandonErr error
	window     time.Duration
}

func (m *stubMaintainer) AbandonIdle(ctx context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandoned++
	m.window = olderThan
	if m.abandonErr != nil {
		return 0, m.abandonErr
	}
	return 2, nil
}

func (m *stubMaintainer) PurgeEmpty(ctx context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged++
	return 1, nil
}

func (m *stubMaintainer) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.abandoned, m.purged
}

func TestSweepRunsBothPasses(t *testing.T) {
	m := &stubMaintainer{}
	New(m, 48*time.Hour, 30*24*time.Hour, nil).Sweep(context.Background())
	abandoned, purged := m.counts()
	if abandoned != 1 || purged != 1 {
		t.Fatalf("expected one pass each, got abandon=%d purge=%d", abandoned, purged)
	}
	if m.window != 48*time.Hour {
		t.Fatalf("abandon window not forwarded, got %s", m.window)
	}
}

func TestSweepContinuesPastAbandonError(t *testing.T) {
	m := &stubMaintainer{abandonErr: errors.New("db down")}
	New(m, time.Hour, time.Hour, nil).Sweep(context.Background())
	if _, purged := m.counts(); purged != 1 {
		t.Fatal("purge must still run when abandon fails")
	}
}

func TestRunSweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	m := &stubMaintainer{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		New(m, time.Hour, time.Hour, nil).Run(ctx, time.Hour)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if abandoned, _ := m.counts(); abandoned >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper did not sweep on startup")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
