package settle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recomputesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokercount_settlement_recomputes_total",
		Help: "Number of settlement recomputations across all groups.",
	})

	markedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokercount_settlements_marked_total",
		Help: "Number of settlements marked as settled.",
	})

	lockTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokercount_settlement_lock_timeouts_total",
		Help: "Number of reconciliations that failed to acquire the group lock in time.",
	})

	imbalanceCents = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pokercount_settlement_imbalance_cents",
		Help: "Residual between total credits and debits per group, in minor units.",
	}, []string{"group_id"})
)
