package settle

import (
	"sort"

	"github.com/pokercount/backend/internal/models"
)

// Reconciled is the merge of freshly computed transactions with previously
// persisted settlement records. Pending holds the group's current
// obligations, annotated with their surviving settled flags; History holds
// settled records whose pair no longer owes anything, retained as history.
type Reconciled struct {
	Pending []*models.Settlement
	History []*models.Settlement
}

// All returns every record that should be persisted for the group.
func (r Reconciled) All() []*models.Settlement {
	all := make([]*models.Settlement, 0, len(r.Pending)+len(r.History))
	all = append(all, r.Pending...)
	all = append(all, r.History...)
	return all
}

// Reconcile merges computed transactions with stored settlement records.
//
// For each transaction the stable pair ID is derived; an existing record with
// an equal amount is kept unchanged (preserving its settled flag), a changed
// amount updates the record and resets settled to false, and a missing record
// is created pending. Stored records whose pair no longer owes anything are
// dropped if pending, or retained in History if already settled.
func Reconcile(groupID string, txns []Transaction, stored []*models.Settlement, now int64) Reconciled {
	byID := make(map[string]*models.Settlement, len(stored))
	for _, record := range stored {
		byID[record.ID] = record
	}

	result := Reconciled{Pending: make([]*models.Settlement, 0, len(txns))}
	current := make(map[string]bool, len(txns))

	for _, txn := range txns {
		id := SettlementID(groupID, txn.From, txn.To)
		current[id] = true

		merged := &models.Settlement{
			ID:           id,
			GroupID:      groupID,
			FromPlayerID: txn.From,
			ToPlayerID:   txn.To,
			Amount:       txn.Amount,
			UpdatedAt:    now,
		}
		if prev, ok := byID[id]; ok {
			if diff := prev.Amount - txn.Amount; diff.Abs() <= Epsilon {
				// Unchanged obligation: the settled flag and amount survive.
				merged.Amount = prev.Amount
				merged.Settled = prev.Settled
				merged.UpdatedAt = prev.UpdatedAt
			}
			// Changed amount: obligation moved since the last settlement
			// action, so the record drops back to pending.
		}
		result.Pending = append(result.Pending, merged)
	}

	for _, record := range stored {
		if current[record.ID] || !record.Settled {
			continue
		}
		result.History = append(result.History, record)
	}
	sort.Slice(result.History, func(a, b int) bool {
		if result.History[a].UpdatedAt != result.History[b].UpdatedAt {
			return result.History[a].UpdatedAt > result.History[b].UpdatedAt
		}
		return result.History[a].ID < result.History[b].ID
	})

	return result
}
