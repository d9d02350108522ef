package ledger

import (
	"strings"

	bank "osi-dues/internal/bank/domain"
)

// MonthColumnRange is the column window of one calendar month in the roster header.
// StartColumn is inclusive and EndColumn exclusive.
type MonthColumnRange struct {
	MonthKey    string
	Month       int
	StartColumn int
	EndColumn   int
	SubColumns  map[string]int
}

// Width returns the number of columns in the range.
func (r MonthColumnRange) Width() int { return r.EndColumn - r.StartColumn }

// FeeColumn returns the sub-column labelled label, falling back to the range start.
func (r MonthColumnRange) FeeColumn(label string) int {
	if label != "" {
		if col, ok := r.SubColumns[label]; ok {
			return col
		}
	}
	return r.StartColumn
}

// UnitAccount holds the roster figures of one unit.
type UnitAccount struct {
	UnitID     string
	RosterRow  int
	MonthlyFee bank.Amount
	PriorDebt  bank.Amount
	DebtRepaid bank.Amount
}

// DebtRemaining returns prior debt not yet repaid; it can be negative on overpaid rows.
func (a UnitAccount) DebtRemaining() bank.Amount {
	return a.PriorDebt - a.DebtRepaid
}

// TrackingCell is the tracking sheet state of one unit inside one month block.
type TrackingCell struct {
	UnitID string
	Month  int
	Row    int
	Dates  []string
	Sum    bank.Amount
	Period string
}

// HasDate reports whether the date was already recorded.
func (c TrackingCell) HasDate(date string) bool {
	for _, d := range c.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// DatesText renders the '/'-delimited date list in insertion order.
func (c TrackingCell) DatesText() string {
	return strings.Join(c.Dates, "/")
}

// ParseDates splits a tracking date cell. Empty and "0" cells hold no dates.
func ParseDates(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" || text == "0" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(text, "/") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
