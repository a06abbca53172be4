package settle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pokercount/backend/internal/events"
	"github.com/pokercount/backend/internal/ledger"
	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/money"
	"github.com/pokercount/backend/internal/storage"
)

// DefaultLockTimeout bounds how long an operation waits for a group's
// reconciliation lock before giving up with ErrLockTimeout.
const DefaultLockTimeout = 5 * time.Second

// View is the reconciled settlement state of a group, the single point of
// truth callers consume.
type View struct {
	// Positions maps player ID to net amount across all sessions.
	Positions map[string]money.Cents

	// Pending holds the group's current obligations with settled flags.
	Pending []*models.Settlement

	// History holds settled records whose pair no longer owes anything.
	History []*models.Settlement

	// Anomalies describes non-fatal data problems found while computing
	// (malformed sessions, credit/debit imbalance).
	Anomalies []string
}

// Engine orchestrates the settlement pipeline: aggregate session balances,
// match debtors against creditors, and reconcile the result with persisted
// settled state. All store mutations for a group run under that group's lock.
type Engine struct {
	store       storage.Store
	publisher   events.Publisher
	locks       *groupLocks
	lockTimeout time.Duration
	now         func() int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLockTimeout overrides the bounded wait for the per-group lock.
func WithLockTimeout(d time.Duration) Option {
	return func(e *Engine) { e.lockTimeout = d }
}

// NewEngine creates an engine over the given store and event publisher.
func NewEngine(store storage.Store, publisher events.Publisher, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		publisher:   publisher,
		locks:       newGroupLocks(),
		lockTimeout: DefaultLockTimeout,
		now:         func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Settlements recomputes and persists the reconciled settlement view for a
// group. Recomputing with unchanged inputs yields an identical view.
func (e *Engine) Settlements(ctx context.Context, groupID string) (*View, error) {
	release, err := e.locks.acquire(ctx, groupID, e.lockTimeout)
	if err != nil {
		if err == ErrLockTimeout {
			lockTimeoutsTotal.Inc()
		}
		return nil, err
	}
	defer release()

	return e.reconcile(ctx, groupID)
}

// MarkSettled sets settled=true on a current pending settlement. It is
// idempotent: marking an already-settled record is a no-op success. The view
// is recomputed under the group lock first, so a settle action cannot race a
// balance change that invalidates the record being marked.
func (e *Engine) MarkSettled(ctx context.Context, groupID, settlementID, actorID string) (*models.Settlement, error) {
	release, err := e.locks.acquire(ctx, groupID, e.lockTimeout)
	if err != nil {
		if err == ErrLockTimeout {
			lockTimeoutsTotal.Inc()
		}
		return nil, err
	}
	defer release()

	view, err := e.reconcile(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var target *models.Settlement
	for _, record := range view.Pending {
		if record.ID == settlementID {
			target = record
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, ErrNotFound)
	}
	if target.Settled {
		return target, nil
	}

	updated, err := e.store.MarkSettled(ctx, groupID, settlementID)
	if err != nil {
		return nil, err
	}
	markedTotal.Inc()

	event := events.SettlementMarked{
		GroupID:      groupID,
		SettlementID: updated.ID,
		FromPlayerID: updated.FromPlayerID,
		ToPlayerID:   updated.ToPlayerID,
		AmountCents:  int64(updated.Amount),
		MarkedBy:     actorID,
		MarkedAt:     updated.UpdatedAt,
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		slog.Error("Failed to publish settlement event",
			"group_id", groupID, "settlement_id", settlementID, "error", err)
	}

	return updated, nil
}

// reconcile runs the aggregate-match-reconcile-persist pipeline.
// Callers must hold the group lock.
func (e *Engine) reconcile(ctx context.Context, groupID string) (*View, error) {
	sessions, err := e.store.ListSessionsWithBalances(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	positions, anomalies := ledger.Aggregate(sessions)
	for _, anomaly := range anomalies {
		slog.Warn("Balance data anomaly", "group_id", groupID, "detail", anomaly)
	}

	txns, residual := Match(positions)
	imbalanceCents.WithLabelValues(groupID).Set(float64(residual))
	if residual.Abs() > Epsilon {
		detail := fmt.Sprintf("credits and debits differ by %s, residual left unmatched", residual)
		anomalies = append(anomalies, detail)
		slog.Warn("Settlement imbalance", "group_id", groupID, "residual_cents", int64(residual))
	}

	stored, err := e.store.GetSettlements(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}

	merged := Reconcile(groupID, txns, stored, e.now())
	if err := e.store.PutSettlements(ctx, groupID, merged.All()); err != nil {
		return nil, fmt.Errorf("failed to persist settlements: %w", err)
	}
	recomputesTotal.Inc()

	return &View{
		Positions: positions,
		Pending:   merged.Pending,
		History:   merged.History,
		Anomalies: anomalies,
	}, nil
}
