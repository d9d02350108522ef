package bank

import (
	"strings"
	"time"
)

// DateLayout is the normalised payment date layout.
const DateLayout = "02.01.2006"

// reversed layout produced by normalising ISO strings ("2025-03-01" -> "2025.03.01").
const isoDotLayout = "2006.01.02"

// PaymentRecord is one validated bank transaction row.
type PaymentRecord struct {
	UnitID      string
	Amount      Amount
	Date        string
	AccountType string
	SourceRow   int
}

// Validate checks the record invariants.
func (p PaymentRecord) Validate() error {
	if strings.TrimSpace(p.UnitID) == "" {
		return ErrEmptyUnitID
	}
	if p.Amount < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(p.Date) == "" {
		return ErrEmptyDate
	}
	return nil
}

// AggregatedPayment is the sum of all records of one unit sharing account type and date.
type AggregatedPayment struct {
	UnitID      string
	AccountType string
	Date        string
	Amount      Amount
	SourceRows  []int
}

// Payments is the aggregator output: per-unit payment lists plus first-seen unit order.
type Payments struct {
	Units  []string
	ByUnit map[string][]AggregatedPayment
}

// For returns the payments of a unit in aggregation order.
func (p Payments) For(unitID string) []AggregatedPayment {
	return p.ByUnit[unitID]
}

// Len returns the number of aggregated payments.
func (p Payments) Len() int {
	n := 0
	for _, list := range p.ByUnit {
		n += len(list)
	}
	return n
}

// Total returns the sum of every aggregated payment.
func (p Payments) Total() Amount {
	var total Amount
	for _, list := range p.ByUnit {
		for _, pay := range list {
			total += pay.Amount
		}
	}
	return total
}

// ParseDate resolves a normalised date string to a calendar day.
// Both "DD.MM.YYYY" and the dotted ISO form "YYYY.MM.DD" are accepted.
func ParseDate(date string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	for _, layout := range []string{DateLayout, isoDotLayout} {
		if t, err := time.Parse(layout, date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthOf returns the calendar month number of a normalised date.
func MonthOf(date string) (int, bool) {
	t, ok := ParseDate(date)
	if !ok {
		return 0, false
	}
	return int(t.Month()), true
}
