// Package settle turns net positions into a minimal set of pairwise
// transactions and reconciles them with previously persisted settlement
// records.
//
// The matcher and reconciler are pure; Engine wraps them with per-group
// locking and storage.
package settle

import (
	"sort"

	"github.com/pokercount/backend/internal/money"
)

// Epsilon is the rounding tolerance in minor units. Positions within Epsilon
// of zero are treated as settled; credit/debit totals differing by more than
// Epsilon are reported as an imbalance.
const Epsilon money.Cents = 1

// Transaction is a computed obligation: From pays To the given amount.
type Transaction struct {
	From   string
	To     string
	Amount money.Cents
}

// position is one side of the matching work-lists.
type position struct {
	playerID  string
	remaining money.Cents // always positive
}

// Match produces an ordered transaction list from net positions using a
// greedy largest-creditor against largest-debtor pass.
//
// Every transaction amount is strictly positive, per-player sums reproduce
// the net positions, and at most n-1 transactions are emitted for n players
// with nonzero positions. Ordering is deterministic: work-lists are sorted by
// magnitude descending, ties broken by player ID ascending.
//
// The second return value is the residual (total credit minus total debt).
// A residual beyond Epsilon means an upstream invariant was violated; the
// match still runs and the residual is left unmatched on the heavier side.
func Match(positions map[string]money.Cents) ([]Transaction, money.Cents) {
	var creditors, debtors []position
	var residual money.Cents

	for playerID, net := range positions {
		residual += net
		switch {
		case net > Epsilon:
			creditors = append(creditors, position{playerID, net})
		case net < -Epsilon:
			debtors = append(debtors, position{playerID, -net})
		}
	}
	sortByMagnitude(creditors)
	sortByMagnitude(debtors)

	var txns []Transaction
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := debtor.remaining
		if creditor.remaining < amount {
			amount = creditor.remaining
		}
		txns = append(txns, Transaction{
			From:   debtor.playerID,
			To:     creditor.playerID,
			Amount: amount,
		})

		debtor.remaining -= amount
		creditor.remaining -= amount
		if debtor.remaining < Epsilon {
			i++
		}
		if creditor.remaining < Epsilon {
			j++
		}
	}

	return txns, residual
}

func sortByMagnitude(list []position) {
	sort.Slice(list, func(a, b int) bool {
		if list[a].remaining != list[b].remaining {
			return list[a].remaining > list[b].remaining
		}
		return list[a].playerID < list[b].playerID
	})
}
