// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package budget

import (
	"context"
	"testing"
	"time"
)

func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("Load on empty store = ok %v, err %v", ok, err)
	}

	want := State{Day: "2026-03-14", Remaining: 412, UpdatedAt: time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load = ok %v, err %v", ok, err)
	}
	if got.Day != want.Day || got.Remaining != want.Remaining || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestBadgerStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}

	store, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	tr := newTestTracker(t, store, 500, clock)
	if ok, err := tr.TrySpend(ctx, 120); !ok || err != nil {
		t.Fatalf("TrySpend = %v, %v", ok, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	tr2 := newTestTracker(t, reopened, 500, clock)
	if rem, _ := tr2.Remaining(ctx); rem != 380 {
		t.Errorf("remaining after reopen = %d, want 380", rem)
	}
}
