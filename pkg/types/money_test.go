package types

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCentsFromDecimal(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "100", want: 10000},
		{in: "19.99", want: 1999},
		{in: "0.1", want: 10},
		{in: "0", want: 0},
		{in: "1.005", wantErr: true},
		{in: "-1", wantErr: true},
	}
	for _, tc := range cases {
		got, err := CentsFromDecimal(decimal.RequireFromString(tc.in))
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(1999); got != "19.99" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatCents(30000); got != "300.00" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatCents(-500); got != "-5.00" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestLineTotalAndAddCentsStayInRange(t *testing.T) {
	if got, err := LineTotal(1999, 3); err != nil || got != 5997 {
		t.Fatalf("unexpected line total %d %v", got, err)
	}
	// 2^53 cents * 2048 wraps to exactly zero in int64.
	if _, err := LineTotal(MaxCents, 2048); !errors.Is(err, ErrAmountOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if _, err := LineTotal(MaxCents, 1024); !errors.Is(err, ErrAmountOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if got, err := LineTotal(MaxCents, 1); err != nil || got != MaxCents {
		t.Fatalf("max single unit should fit, got %d %v", got, err)
	}

	if got, err := AddCents(MaxCents-1, 1); err != nil || got != MaxCents {
		t.Fatalf("unexpected sum %d %v", got, err)
	}
	if _, err := AddCents(MaxCents, 1); !errors.Is(err, ErrAmountOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}
