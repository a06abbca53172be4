package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Cents
	}{
		{name: "whole units", input: "30", want: 3000},
		{name: "exact cents", input: "12.50", want: 1250},
		{name: "negative", input: "-15.25", want: -1525},
		{name: "rounds half away from zero", input: "0.125", want: 13},
		{name: "rounds negative half away from zero", input: "-0.125", want: -13},
		{name: "zero", input: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.input)
			if err != nil {
				t.Fatalf("bad test input %q: %v", tt.input, err)
			}
			if got := FromDecimal(d); got != tt.want {
				t.Errorf("FromDecimal(%s) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, cents := range []Cents{0, 1, -1, 1250, -987654} {
		d := cents.Decimal()
		if got := FromDecimal(d); got != cents {
			t.Errorf("round trip of %d gave %d", cents, got)
		}
	}
}

func TestString(t *testing.T) {
	if got := Cents(1250).String(); got != "12.50" {
		t.Errorf("String() = %q, want %q", got, "12.50")
	}
	if got := Cents(-5).String(); got != "-0.05" {
		t.Errorf("String() = %q, want %q", got, "-0.05")
	}
}

func TestAbs(t *testing.T) {
	if got := Cents(-42).Abs(); got != 42 {
		t.Errorf("Abs(-42) = %d, want 42", got)
	}
	if got := Cents(42).Abs(); got != 42 {
		t.Errorf("Abs(42) = %d, want 42", got)
	}
}
