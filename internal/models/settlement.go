package models

import "github.com/pokercount/backend/internal/money"

// Settlement represents a directed obligation between two players: From owes
// To the given amount.
//
// The ID is deterministic, derived from (group, from, to), so recomputing
// settlements after new sessions reuses the same record for the same pair.
// Settled is the only field with an independent lifecycle: it survives
// recomputation as long as the pair's amount is unchanged. A changed amount
// resets Settled to false (a product decision, see DESIGN.md).
type Settlement struct {
	// ID is derived from (GroupID, FromPlayerID, ToPlayerID) via SHA-1 UUID.
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromPlayerID is the debtor (pays).
	FromPlayerID string

	// ToPlayerID is the creditor (receives).
	ToPlayerID string

	// Amount is the obligation in minor units, strictly positive.
	Amount money.Cents

	// Settled reports whether the payment has been confirmed.
	Settled bool

	// UpdatedAt is the Unix timestamp of the last reconciliation or
	// mark-as-settled touching this record.
	UpdatedAt int64
}
