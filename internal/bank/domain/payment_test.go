package bank

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want Amount
		err  error
	}{
		{in: 1500, want: 1500},
		{in: int64(42), want: 42},
		{in: 1500.0, want: 1500},
		{in: "2 000", want: 2000},
		{in: "1500,00", want: 1500},
		{in: "1500.5", err: ErrNonIntegerAmount},
		{in: 99.99, err: ErrNonIntegerAmount},
		{in: "abc", err: ErrInvalidAmount},
		{in: nil, err: ErrInvalidAmount},
		{in: true, err: ErrInvalidAmount},
		{in: "18446744073709551717", err: ErrInvalidAmount},
		{in: 1e20, err: ErrInvalidAmount},
		{in: "-9223372036854775809", err: ErrInvalidAmount},
		{in: "9223372036854775807", want: 9223372036854775807},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("ParseAmount(%v): expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAmount(%v): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAmount(%v): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestAmountOrZero(t *testing.T) {
	if AmountOrZero(nil) != 0 {
		t.Fatalf("nil should read as zero")
	}
	if AmountOrZero("300") != 300 {
		t.Fatalf("expected 300")
	}
}

func TestMonthOf(t *testing.T) {
	if m, ok := MonthOf("01.03.2025"); !ok || m != 3 {
		t.Fatalf("expected march, got %d %v", m, ok)
	}
	if m, ok := MonthOf("2025.09.15"); !ok || m != 9 {
		t.Fatalf("expected september, got %d %v", m, ok)
	}
	if _, ok := MonthOf("31.02.2025"); ok {
		t.Fatalf("expected invalid calendar date to fail")
	}
	if _, ok := MonthOf("garbage"); ok {
		t.Fatalf("expected garbage to fail")
	}
}

func TestPaymentRecordValidate(t *testing.T) {
	ok := PaymentRecord{UnitID: "12", Amount: 10, Date: "01.03.2025"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (PaymentRecord{Amount: 10, Date: "01.03.2025"}).Validate(); !errors.Is(err, ErrEmptyUnitID) {
		t.Fatalf("expected ErrEmptyUnitID, got %v", err)
	}
	if err := (PaymentRecord{UnitID: "1", Amount: -1, Date: "01.03.2025"}).Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestPaymentsTotals(t *testing.T) {
	p := Payments{
		Units: []string{"1", "2"},
		ByUnit: map[string][]AggregatedPayment{
			"1": {{Amount: 100}, {Amount: 50}},
			"2": {{Amount: 25}},
		},
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 payments, got %d", p.Len())
	}
	if p.Total() != 175 {
		t.Fatalf("expected total 175, got %d", p.Total())
	}
}
