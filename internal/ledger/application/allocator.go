package application

import (
	"errors"
	"sort"

	bank "osi-dues/internal/bank/domain"
	"osi-dues/internal/events"
	ledger "osi-dues/internal/ledger/domain"
)

// AllocationStatus is the outcome of one payment.
type AllocationStatus string

const (
	StatusAllocated       AllocationStatus = "allocated"
	StatusAlreadyRecorded AllocationStatus = "already_recorded"
	StatusSkipped         AllocationStatus = "skipped"
)

// MonthDelta is the amount added to one month fee column.
type MonthDelta struct {
	Month  int
	Column int
	Amount bank.Amount
}

// Allocation records what happened to one aggregated payment. Reason is set
// when the payment was not allocated.
type Allocation struct {
	UnitID      string
	Date        string
	AccountType string
	Month       int
	Amount      bank.Amount
	Status      AllocationStatus
	Reason      events.Code
	TrackingRow int
	RosterRow   int
	DebtApplied bank.Amount
	Deltas      []MonthDelta
	Period      string
}

// Distributed returns the total written to month fee columns.
func (a Allocation) Distributed() bank.Amount {
	var total bank.Amount
	for _, d := range a.Deltas {
		total += d.Amount
	}
	return total
}

// Allocator applies payments to a ledger: debt first, then month fees from the
// payment month forward. The last scanned month absorbs whatever remains.
type Allocator struct {
	ledger   *ledger.Ledger
	layout   ledger.Layout
	ranges   []ledger.MonthColumnRange
	feeLabel string
	registry *UnitRegistry
	sink     events.Sink
	touched  map[int]struct{}
}

// NewAllocator constructs an allocator over scanned month ranges.
func NewAllocator(l *ledger.Ledger, layout ledger.Layout, ranges []ledger.MonthColumnRange, registry *UnitRegistry, sink events.Sink) (*Allocator, error) {
	if l == nil {
		return nil, errors.New("allocator: nil ledger")
	}
	if registry == nil {
		return nil, errors.New("allocator: nil registry")
	}
	if len(ranges) == 0 {
		return nil, ledger.ErrNoMonthRanges
	}
	if sink == nil {
		sink = events.Discard
	}
	return &Allocator{
		ledger:   l,
		layout:   layout,
		ranges:   ranges,
		feeLabel: normalizeLabel(layout.Roster.Months.FeeLabel),
		registry: registry,
		sink:     sink,
		touched:  make(map[int]struct{}),
	}, nil
}

// AllocateAll processes every unit in first-seen order and every payment in
// aggregation order. Only document failures stop the run.
func (a *Allocator) AllocateAll(payments bank.Payments) ([]Allocation, error) {
	var out []Allocation
	for _, unit := range payments.Units {
		for _, p := range payments.For(unit) {
			alloc, err := a.Allocate(p)
			if err != nil {
				return out, err
			}
			out = append(out, alloc)
		}
	}
	return out, nil
}

// TouchedMonths returns the tracking months holding a row of a processed
// payment, ascending. Already recorded payments count too.
func (a *Allocator) TouchedMonths() []int {
	out := make([]int, 0, len(a.touched))
	for m := range a.touched {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// Allocate applies one payment. Every lookup happens before the first write so
// a skipped payment leaves the ledger untouched.
func (a *Allocator) Allocate(p bank.AggregatedPayment) (Allocation, error) {
	alloc := Allocation{
		UnitID:      p.UnitID,
		Date:        p.Date,
		AccountType: p.AccountType,
		Amount:      p.Amount,
		Status:      StatusSkipped,
	}

	month, ok := bank.MonthOf(p.Date)
	if !ok {
		return a.skip(alloc, events.Errorf(events.CodeUnknownMonth,
			"unit %s: cannot resolve month of payment date", p.UnitID).WithRaw(p.Date)), nil
	}
	alloc.Month = month
	monthName, _ := ledger.MonthNumberToName(month)

	trackingRow, ok := a.registry.TrackingRow(p.UnitID, month)
	if !ok {
		return a.skip(alloc, events.Warnf(events.CodeUnitNotFound,
			"unit %s has no row in tracking block %s", p.UnitID, monthName)), nil
	}
	alloc.TrackingRow = trackingRow
	a.touched[month] = struct{}{}

	rosterRow, ok := a.registry.RosterRow(p.UnitID)
	if !ok {
		return a.skip(alloc, events.Warnf(events.CodeUnitNotFound,
			"unit %s not found on roster", p.UnitID)), nil
	}
	alloc.RosterRow = rosterRow

	startIdx := -1
	for i, r := range a.ranges {
		if r.Month == month {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return a.skip(alloc, events.Errorf(events.CodeUnknownMonth,
			"unit %s: month %s has no fee columns on roster", p.UnitID, monthName).WithParsed(month)), nil
	}

	t := a.layout.Tracking
	dateText, err := a.ledger.ReadText(t.Sheet, trackingRow, t.DateColumn())
	if err != nil {
		return alloc, err
	}
	cell := ledger.TrackingCell{UnitID: p.UnitID, Month: month, Row: trackingRow, Dates: ledger.ParseDates(dateText)}
	if cell.HasDate(p.Date) {
		alloc.Status = StatusAlreadyRecorded
		alloc.Reason = events.CodePaymentAlreadyRecorded
		a.sink.Emit(events.Infof(events.CodePaymentAlreadyRecorded,
			"unit %s: payment of %s on %s already recorded", p.UnitID, p.Amount, p.Date).
			AtCell(trackingRow, t.DateColumn()).WithRaw(dateText))
		return alloc, nil
	}

	cell.Dates = append(cell.Dates, p.Date)
	if err := a.ledger.WriteCell(t.Sheet, trackingRow, t.DateColumn(), cell.DatesText()); err != nil {
		return alloc, err
	}
	sum, err := a.ledger.ReadAmount(t.Sheet, trackingRow, t.SumColumn())
	if err != nil {
		return alloc, err
	}
	if err := a.ledger.WriteAmount(t.Sheet, trackingRow, t.SumColumn(), sum+p.Amount); err != nil {
		return alloc, err
	}
	alloc.Status = StatusAllocated

	account, err := a.account(p.UnitID, rosterRow)
	if err != nil {
		return alloc, err
	}

	balance := p.Amount
	if remaining := account.DebtRemaining(); remaining > 0 {
		applied := remaining
		if balance < applied {
			applied = balance
		}
		r := a.layout.Roster
		if err := a.ledger.WriteAmount(r.Sheet, rosterRow, r.DebtRepaidColumn, account.DebtRepaid+applied); err != nil {
			return alloc, err
		}
		alloc.DebtApplied = applied
		balance -= applied
	}

	if balance > 0 {
		alloc.Deltas, err = a.distribute(rosterRow, account.MonthlyFee, startIdx, balance)
		if err != nil {
			return alloc, err
		}
	}

	if len(alloc.Deltas) > 0 {
		alloc.Period, err = a.updatePeriod(trackingRow, alloc.Deltas)
		if err != nil {
			return alloc, err
		}
	}

	a.sink.Emit(events.Debugf(events.CodePaymentAllocated,
		"unit %s: %s on %s, debt %s, fees %s, period %q",
		p.UnitID, p.Amount, p.Date, alloc.DebtApplied, alloc.Distributed(), alloc.Period).AtRow(trackingRow))
	return alloc, nil
}

// distribute walks month fee columns from startIdx. Full months are skipped;
// the last month takes the remaining balance regardless of its content.
func (a *Allocator) distribute(rosterRow int, fee bank.Amount, startIdx int, balance bank.Amount) ([]MonthDelta, error) {
	sheet := a.layout.Roster.Sheet
	var deltas []MonthDelta
	for i := startIdx; i < len(a.ranges) && balance > 0; i++ {
		r := a.ranges[i]
		col := r.FeeColumn(a.feeLabel)
		recorded, err := a.ledger.ReadAmount(sheet, rosterRow, col)
		if err != nil {
			return deltas, err
		}

		var add bank.Amount
		switch {
		case i == len(a.ranges)-1:
			add = balance
		case recorded >= fee:
			continue
		case balance >= fee-recorded:
			add = fee - recorded
		default:
			add = balance
		}
		if err := a.ledger.WriteAmount(sheet, rosterRow, col, recorded+add); err != nil {
			return deltas, err
		}
		balance -= add
		deltas = append(deltas, MonthDelta{Month: r.Month, Column: col, Amount: add})
	}
	return deltas, nil
}

func (a *Allocator) updatePeriod(trackingRow int, deltas []MonthDelta) (string, error) {
	t := a.layout.Tracking
	start, _ := ledger.MonthNumberToName(deltas[0].Month)
	end, _ := ledger.MonthNumberToName(deltas[len(deltas)-1].Month)

	existing, err := a.ledger.ReadText(t.Sheet, trackingRow, t.PeriodColumn())
	if err != nil {
		return "", err
	}
	var label string
	switch {
	case existing != "":
		label = existing + " - " + end
	case start == end:
		label = start
	default:
		label = start + " - " + end
	}
	if err := a.ledger.WriteCell(t.Sheet, trackingRow, t.PeriodColumn(), label); err != nil {
		return "", err
	}
	return label, nil
}

func (a *Allocator) account(unit string, row int) (ledger.UnitAccount, error) {
	r := a.layout.Roster
	acc := ledger.UnitAccount{UnitID: unit, RosterRow: row}
	var err error
	if acc.MonthlyFee, err = a.ledger.ReadAmount(r.Sheet, row, r.FeeColumn); err != nil {
		return acc, err
	}
	if acc.PriorDebt, err = a.ledger.ReadAmount(r.Sheet, row, r.DebtColumn); err != nil {
		return acc, err
	}
	if acc.DebtRepaid, err = a.ledger.ReadAmount(r.Sheet, row, r.DebtRepaidColumn); err != nil {
		return acc, err
	}
	return acc, nil
}

func (a *Allocator) skip(alloc Allocation, e events.Event) Allocation {
	alloc.Status = StatusSkipped
	alloc.Reason = e.Code
	a.sink.Emit(e)
	return alloc
}
