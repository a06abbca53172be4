package settle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pokercount/backend/internal/events"
	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/money"
	"github.com/pokercount/backend/internal/storage/memory"
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewEngine(store, events.Noop{}), store
}

func addSession(t *testing.T, store *memory.Store, groupID, date string, amounts map[string]money.Cents) {
	t.Helper()
	session := &models.Session{GroupID: groupID, Date: date}
	for playerID, amount := range amounts {
		session.Balances = append(session.Balances, models.Balance{
			PlayerID: playerID,
			Amount:   amount,
		})
	}
	if err := store.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
}

func TestEngineSettlements(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	addSession(t, store, "g1", "2024-01-05", map[string]money.Cents{
		"alice": 3000, "bob": -1000, "carol": -2000,
	})

	view, err := engine.Settlements(ctx, "g1")
	if err != nil {
		t.Fatalf("Settlements() error: %v", err)
	}

	if got := view.Positions["alice"]; got != 3000 {
		t.Errorf("alice position = %d, want 3000", got)
	}
	if len(view.Pending) != 2 {
		t.Fatalf("got %d pending, want 2: %v", len(view.Pending), view.Pending)
	}
	first, second := view.Pending[0], view.Pending[1]
	if first.FromPlayerID != "carol" || first.ToPlayerID != "alice" || first.Amount != 2000 {
		t.Errorf("first pending = %s->%s %d, want carol->alice 2000",
			first.FromPlayerID, first.ToPlayerID, first.Amount)
	}
	if second.FromPlayerID != "bob" || second.ToPlayerID != "alice" || second.Amount != 1000 {
		t.Errorf("second pending = %s->%s %d, want bob->alice 1000",
			second.FromPlayerID, second.ToPlayerID, second.Amount)
	}
	if len(view.Anomalies) != 0 {
		t.Errorf("unexpected anomalies: %v", view.Anomalies)
	}

	// Persisted state must match what the view reported.
	stored, err := store.GetSettlements(ctx, "g1")
	if err != nil {
		t.Fatalf("GetSettlements() error: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("store holds %d records, want 2", len(stored))
	}
}

func TestEngineRecomputeIsStable(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	addSession(t, store, "g1", "2024-01-05", map[string]money.Cents{
		"alice": 1500, "bob": -1500,
	})

	first, err := engine.Settlements(ctx, "g1")
	if err != nil {
		t.Fatalf("first Settlements() error: %v", err)
	}
	second, err := engine.Settlements(ctx, "g1")
	if err != nil {
		t.Fatalf("second Settlements() error: %v", err)
	}

	if len(first.Pending) != 1 || len(second.Pending) != 1 {
		t.Fatalf("pending counts = %d, %d, want 1, 1", len(first.Pending), len(second.Pending))
	}
	if first.Pending[0].ID != second.Pending[0].ID {
		t.Errorf("settlement id changed across recompute: %s vs %s",
			first.Pending[0].ID, second.Pending[0].ID)
	}
}

func TestEngineMarkSettled(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	addSession(t, store, "g1", "2024-01-05", map[string]money.Cents{
		"alice": 1500, "bob": -1500,
	})

	view, err := engine.Settlements(ctx, "g1")
	if err != nil {
		t.Fatalf("Settlements() error: %v", err)
	}
	settlementID := view.Pending[0].ID

	updated, err := engine.MarkSettled(ctx, "g1", settlementID, "user-1")
	if err != nil {
		t.Fatalf("MarkSettled() error: %v", err)
	}
	if !updated.Settled {
		t.Error("record not marked settled")
	}

	// Marking again is a no-op success.
	again, err := engine.MarkSettled(ctx, "g1", settlementID, "user-1")
	if err != nil {
		t.Fatalf("second MarkSettled() error: %v", err)
	}
	if !again.Settled {
		t.Error("record lost its settled flag")
	}

	// The flag survives recomputation while balances are unchanged.
	view, err = engine.Settlements(ctx, "g1")
	if err != nil {
		t.Fatalf("Settlements() after mark error: %v", err)
	}
	if len(view.Pending) != 1 || !view.Pending[0].Settled {
		t.Errorf("settled flag did not survive recompute: %+v", view.Pending)
	}
}

func TestEngineMarkSettledUnknownID(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	addSession(t, store, "g1", "2024-01-05", map[string]money.Cents{
		"alice": 1500, "bob": -1500,
	})

	_, err := engine.MarkSettled(ctx, "g1", "no-such-settlement", "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got error %v, want ErrNotFound", err)
	}
}

func TestEngineAmountChangeResetsSettled(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	addSession(t, store, "g1", "2024-01-05", map[string]money.Cents{
		"alice": 1500, "bob": -1500,
	})

	view, err := engine.Settlements(ctx, "g1")
	if err != nil {
		t.Fatalf("Settlements() error: %v", err)
	}
	if _, err := engine.MarkSettled(ctx, "g1", view.Pending[0].ID, "user-1"); err != nil {
		t.Fatalf("MarkSettled() error: %v", err)
	}

	// A later session changes the pair's obligation, so the marked record
	// is superseded by a fresh pending one for the new amount.
	addSession(t, store, "g1", "2024-01-12", map[string]money.Cents{
		"alice": -1000, "bob": 1000,
	})

	view, err = engine.Settlements(ctx, "g1")
	if err != nil {
		t.Fatalf("Settlements() after new session error: %v", err)
	}
	if len(view.Pending) != 1 {
		t.Fatalf("got %d pending, want 1: %v", len(view.Pending), view.Pending)
	}
	record := view.Pending[0]
	if record.FromPlayerID != "bob" || record.ToPlayerID != "alice" {
		t.Errorf("pending pair = %s->%s, want bob->alice", record.FromPlayerID, record.ToPlayerID)
	}
	if record.Amount != 500 {
		t.Errorf("pending amount = %d, want 500", record.Amount)
	}
	if record.Settled {
		t.Error("changed amount must come back pending")
	}
}

func TestEngineLockTimeout(t *testing.T) {
	store := memory.NewStore()
	engine := NewEngine(store, events.Noop{}, WithLockTimeout(20*time.Millisecond))
	ctx := context.Background()

	release, err := engine.locks.acquire(ctx, "g1", time.Second)
	if err != nil {
		t.Fatalf("failed to take the lock: %v", err)
	}
	defer release()

	if _, err := engine.Settlements(ctx, "g1"); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("got error %v, want ErrLockTimeout", err)
	}
	if _, err := engine.MarkSettled(ctx, "g1", "any", "user-1"); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("MarkSettled got error %v, want ErrLockTimeout", err)
	}
}

func TestEngineGroupsLockIndependently(t *testing.T) {
	store := memory.NewStore()
	engine := NewEngine(store, events.Noop{}, WithLockTimeout(20*time.Millisecond))
	ctx := context.Background()

	release, err := engine.locks.acquire(ctx, "g1", time.Second)
	if err != nil {
		t.Fatalf("failed to take the lock: %v", err)
	}
	defer release()

	// Holding g1's lock must not block g2.
	if _, err := engine.Settlements(ctx, "g2"); err != nil {
		t.Errorf("Settlements(g2) error: %v", err)
	}
}
