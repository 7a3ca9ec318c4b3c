package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"memsplit/timer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStoreRecordsRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	// nothing is recorded before the first start
	if err := s.HandleEvent(timer.Split, base); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if s.CurrentRun() != 0 {
		t.Fatalf("CurrentRun = %d before start", s.CurrentRun())
	}

	steps := []func() error{
		func() error { return s.HandleEvent(timer.Start, base) },
		func() error { return s.HandleGameTime(true, base.Add(time.Second)) },
		func() error { return s.HandleEvent(timer.Split, base.Add(2*time.Second)) },
		func() error { return s.HandleEvent(timer.Reset, base.Add(3*time.Second)) },
		func() error { return s.HandleEvent(timer.Start, base.Add(4*time.Second)) },
		func() error { return s.HandleEvent(timer.Split, base.Add(5*time.Second)) },
		func() error { return s.HandleEvent(timer.Split, base.Add(6*time.Second)) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	paused := true
	want := []Record{
		{Kind: "start", At: base},
		{Kind: "game_time", Paused: &paused, At: base.Add(time.Second)},
		{Kind: "split", At: base.Add(2 * time.Second)},
		{Kind: "reset", At: base.Add(3 * time.Second)},
	}
	got, err := s.Events(ctx, 1)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("run 1 mismatch (-want +got):\n%s", diff)
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	wantRuns := []Run{
		{ID: 2, StartedAt: base.Add(4 * time.Second), Splits: 2},
		{ID: 1, StartedAt: base, Splits: 1},
	}
	if diff := cmp.Diff(wantRuns, runs); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}
