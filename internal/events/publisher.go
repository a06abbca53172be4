// Package events publishes settlement activity to external consumers.
package events

import "context"

// Publisher delivers domain events. Publishing is best-effort; callers log
// failures but never fail the triggering operation on them.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// SettlementMarked is emitted when a settlement is confirmed as paid.
type SettlementMarked struct {
	GroupID      string `json:"group_id"`
	SettlementID string `json:"settlement_id"`
	FromPlayerID string `json:"from_player_id"`
	ToPlayerID   string `json:"to_player_id"`
	AmountCents  int64  `json:"amount_cents"`
	MarkedBy     string `json:"marked_by"`
	MarkedAt     int64  `json:"marked_at"`
}

// Noop discards all events. Used when no broker is configured and in tests.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, any) error { return nil }
