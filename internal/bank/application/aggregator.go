package application

import (
	bank "osi-dues/internal/bank/domain"
)

// Aggregator merges payment records by (unit, account type, date).
// Units and per-unit entries keep first-seen order.
type Aggregator struct {
	units  []string
	byUnit map[string][]bank.AggregatedPayment
}

// NewAggregator constructs an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byUnit: make(map[string][]bank.AggregatedPayment)}
}

// Add merges one record.
func (a *Aggregator) Add(rec bank.PaymentRecord) {
	list, seen := a.byUnit[rec.UnitID]
	if !seen {
		a.units = append(a.units, rec.UnitID)
	}
	for i := range list {
		if list[i].AccountType == rec.AccountType && list[i].Date == rec.Date {
			list[i].Amount += rec.Amount
			list[i].SourceRows = append(list[i].SourceRows, rec.SourceRow)
			return
		}
	}
	a.byUnit[rec.UnitID] = append(list, bank.AggregatedPayment{
		UnitID:      rec.UnitID,
		AccountType: rec.AccountType,
		Date:        rec.Date,
		Amount:      rec.Amount,
		SourceRows:  []int{rec.SourceRow},
	})
}

// Payments returns the aggregated result. Units without valid payments are absent.
func (a *Aggregator) Payments() bank.Payments {
	units := make([]string, len(a.units))
	copy(units, a.units)
	byUnit := make(map[string][]bank.AggregatedPayment, len(a.byUnit))
	for unit, list := range a.byUnit {
		cp := make([]bank.AggregatedPayment, len(list))
		for i, p := range list {
			p.SourceRows = append([]int(nil), p.SourceRows...)
			cp[i] = p
		}
		byUnit[unit] = cp
	}
	return bank.Payments{Units: units, ByUnit: byUnit}
}

// Collect normalises every raw row and aggregates the valid ones.
// It returns the payments and the number of rejected rows.
func Collect(rows []RawRow, normalizer *Normalizer) (bank.Payments, int) {
	agg := NewAggregator()
	rejected := 0
	for _, row := range rows {
		rec, ok := normalizer.Normalize(row)
		if !ok {
			rejected++
			continue
		}
		agg.Add(rec)
	}
	return agg.Payments(), rejected
}
