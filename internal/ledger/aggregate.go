// Package ledger reduces raw per-session balances into one net position per
// player. All functions are pure; callers own persistence and locking.
package ledger

import (
	"fmt"

	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/money"
)

// Aggregate sums each player's balances across all sessions of a group.
//
// Players with no balance in any session are absent from the result. A
// session containing a balance without a player ID is malformed; its balances
// are excluded entirely and the anomaly is reported in the returned slice
// rather than failing the whole computation.
func Aggregate(sessions []*models.Session) (map[string]money.Cents, []string) {
	positions := make(map[string]money.Cents)
	var anomalies []string

	for _, session := range sessions {
		if bad := malformed(session); bad != "" {
			anomalies = append(anomalies, bad)
			continue
		}
		for _, balance := range session.Balances {
			positions[balance.PlayerID] += balance.Amount
		}
	}

	return positions, anomalies
}

// malformed returns a description of the session's data problem, or "" if
// its balances are usable.
func malformed(session *models.Session) string {
	for _, balance := range session.Balances {
		if balance.PlayerID == "" {
			return fmt.Sprintf("session %s: balance without player id, session excluded", session.ID)
		}
	}
	return ""
}
