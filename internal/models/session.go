package models

import "github.com/pokercount/backend/internal/money"

// Session represents one game night. Its financial facts are immutable once
// created; editing a session means replacing its balances.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// GroupID is the group this session belongs to.
	GroupID string

	// Name is the display name of the session (e.g. "Friday game").
	Name string

	// Date is the calendar date of the session in YYYY-MM-DD form.
	Date string

	// BuyIn is the non-negative per-player buy-in in minor units.
	BuyIn money.Cents

	// CreatedAt is the Unix timestamp when the session was recorded.
	CreatedAt int64

	// Balances holds the per-player results for this session. Populated by
	// the store when loading sessions with balances.
	Balances []Balance
}

// Balance is a player's net result for one session: cash-out minus buy-in.
// For a well-formed session the balances sum to zero; small residuals are
// tolerated downstream rather than enforced here.
type Balance struct {
	// SessionID is the session this balance belongs to.
	SessionID string

	// PlayerID is the player this balance belongs to.
	PlayerID string

	// Amount is the signed net result in minor units.
	Amount money.Cents
}
