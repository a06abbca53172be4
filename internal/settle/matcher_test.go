package settle

import (
	"reflect"
	"testing"

	"github.com/pokercount/backend/internal/money"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name         string
		positions    map[string]money.Cents
		want         []Transaction
		wantResidual money.Cents
	}{
		{
			name:      "one creditor two debtors",
			positions: map[string]money.Cents{"A": 3000, "B": -1000, "C": -2000},
			want: []Transaction{
				{From: "C", To: "A", Amount: 2000},
				{From: "B", To: "A", Amount: 1000},
			},
		},
		{
			name:      "single pair",
			positions: map[string]money.Cents{"A": 1500, "B": -1500},
			want: []Transaction{
				{From: "B", To: "A", Amount: 1500},
			},
		},
		{
			name:      "all zero",
			positions: map[string]money.Cents{"A": 0, "B": 0, "C": 0},
			want:      nil,
		},
		{
			name:      "within epsilon treated as settled",
			positions: map[string]money.Cents{"A": 1, "B": -1},
			want:      nil,
		},
		{
			name:      "magnitude ties broken by player id",
			positions: map[string]money.Cents{"B": -500, "A": -500, "X": 500, "Y": 500},
			want: []Transaction{
				{From: "A", To: "X", Amount: 500},
				{From: "B", To: "Y", Amount: 500},
			},
		},
		{
			name:         "imbalanced input reports residual",
			positions:    map[string]money.Cents{"A": 1000, "B": -700},
			want:         []Transaction{{From: "B", To: "A", Amount: 700}},
			wantResidual: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, residual := Match(tt.positions)
			if !reflect.DeepEqual(txns, tt.want) {
				t.Errorf("Match() = %v, want %v", txns, tt.want)
			}
			if residual != tt.wantResidual {
				t.Errorf("residual = %d, want %d", residual, tt.wantResidual)
			}
		})
	}
}

func TestMatchConservesPositions(t *testing.T) {
	positions := map[string]money.Cents{
		"A": 7321, "B": -1200, "C": -3521, "D": 400, "E": -3000,
	}
	txns, residual := Match(positions)
	if residual != 0 {
		t.Fatalf("residual = %d, want 0", residual)
	}

	net := make(map[string]money.Cents)
	for _, txn := range txns {
		if txn.Amount <= 0 {
			t.Errorf("transaction %v has non-positive amount", txn)
		}
		net[txn.From] -= txn.Amount
		net[txn.To] += txn.Amount
	}
	for playerID, want := range positions {
		if net[playerID] != want {
			t.Errorf("net[%s] = %d, want %d", playerID, net[playerID], want)
		}
	}
}

func TestMatchTransactionBound(t *testing.T) {
	positions := map[string]money.Cents{
		"A": 500, "B": 500, "C": 500, "D": -700, "E": -800,
	}
	txns, _ := Match(positions)

	nonzero := 0
	for _, net := range positions {
		if net.Abs() > Epsilon {
			nonzero++
		}
	}
	if len(txns) > nonzero-1 {
		t.Errorf("got %d transactions for %d nonzero players, want at most %d",
			len(txns), nonzero, nonzero-1)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	positions := map[string]money.Cents{
		"p1": 1200, "p2": -300, "p3": -900, "p4": 450, "p5": -450,
	}
	first, _ := Match(positions)
	for i := 0; i < 10; i++ {
		again, _ := Match(positions)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed: %v vs %v", i, again, first)
		}
	}
}
