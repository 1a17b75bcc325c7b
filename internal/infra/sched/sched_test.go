//go:build !integration

package sched

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

func nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func mkDelivery(t *testing.T, dir string, at time.Time) string {
	t.Helper()
	id := ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy())
	p := filepath.Join(dir, id.String())
	if err := os.MkdirAll(p, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(p, "vacancies_2025-01-01_2025-01-02.csv"), []byte("id\n"), 0o640); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFileJanitor_Sweep(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	old := mkDelivery(t, dir, now.Add(-2*time.Hour))
	fresh := mkDelivery(t, dir, now.Add(-10*time.Minute))
	foreign := filepath.Join(dir, "not-a-ulid")
	if err := os.MkdirAll(foreign, 0o750); err != nil {
		t.Fatal(err)
	}
	stray := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(stray, []byte("x"), 0o640); err != nil {
		t.Fatal(err)
	}

	j := NewFileJanitor(dir, time.Hour, nop())
	j.now = func() time.Time { return now }

	n, err := j.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removal, got %d", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("expired dir should be gone, stat err=%v", err)
	}
	for _, p := range []string{fresh, foreign, stray} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s must be kept: %v", p, err)
		}
	}
}

func TestFileJanitor_MissingDir(t *testing.T) {
	j := NewFileJanitor(filepath.Join(t.TempDir(), "absent"), time.Hour, nop())
	if n, err := j.Sweep(); err != nil || n != 0 {
		t.Fatalf("expected no-op, got n=%d err=%v", n, err)
	}
}

type fakeStats struct {
	calls int32
	ok    bool
}

func (f *fakeStats) Stats() (int32, int32, int32, bool) {
	atomic.AddInt32(&f.calls, 1)
	return 4, 1, 3, f.ok
}

func TestPoolStatsReporter_RunsUntilCancelled(t *testing.T) {
	src := &fakeStats{ok: true}
	r := NewPoolStatsReporter(5*time.Millisecond, src, nop())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	err := r.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context error, got %v", err)
	}
	if atomic.LoadInt32(&src.calls) == 0 {
		t.Fatal("expected stats to be polled")
	}
}

func TestPoolStatsReporter_NoPoolYet(t *testing.T) {
	src := &fakeStats{ok: false}
	r := NewPoolStatsReporter(time.Second, src, nop())
	r.report()
	if src.calls != 1 {
		t.Fatalf("expected one poll, got %d", src.calls)
	}
}
