package application

import (
	"testing"

	bank "osi-dues/internal/bank/domain"
	"osi-dues/internal/events"
	ledger "osi-dues/internal/ledger/domain"
	"osi-dues/internal/ledger/infrastructure/memory"
)

func newTestAllocator(t *testing.T, doc *memory.Document, sink events.Sink) (*Allocator, *ledger.Ledger) {
	t.Helper()
	layout := testLayout()
	ranges, err := ScanMonthRanges(doc, layout.Roster.Sheet, layout.Roster.Months, sink)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	registry, err := NewUnitRegistry(doc, layout, sink)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	l, err := ledger.NewLedger(doc, nil, false)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	alloc, err := NewAllocator(l, layout, ranges, registry, sink)
	if err != nil {
		t.Fatalf("allocator: %v", err)
	}
	return alloc, l
}

func payment(unit string, amount bank.Amount, date string) bank.AggregatedPayment {
	return bank.AggregatedPayment{UnitID: unit, AccountType: "взнос", Date: date, Amount: amount}
}

func amountAt(t *testing.T, doc *memory.Document, sheet string, row, col int) bank.Amount {
	t.Helper()
	v, err := doc.Value(sheet, row, col)
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	return bank.AmountOrZero(v)
}

func assertConserved(t *testing.T, a Allocation) {
	t.Helper()
	if got := a.DebtApplied + a.Distributed(); got != a.Amount {
		t.Fatalf("conservation violated: debt %s + months %s != %s", a.DebtApplied, a.Distributed(), a.Amount)
	}
}

func TestAllocateDebtThenFees(t *testing.T) {
	doc := newFixture(t)
	r := testLayout().Roster
	doc.Set(rosterSheet, rosterRow(1), r.DebtColumn, int64(300))
	alloc, _ := newTestAllocator(t, doc, nil)

	res, err := alloc.Allocate(payment("1", 1000, "05.03.2025"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if res.Status != StatusAllocated {
		t.Fatalf("expected allocated, got %s", res.Status)
	}
	if res.DebtApplied != 300 {
		t.Fatalf("expected debt 300, got %s", res.DebtApplied)
	}
	if got := amountAt(t, doc, rosterSheet, rosterRow(1), r.DebtRepaidColumn); got != 300 {
		t.Fatalf("expected debt repaid 300, got %s", got)
	}
	for m := 3; m <= 9; m++ {
		if got := amountAt(t, doc, rosterSheet, rosterRow(1), monthColumn(m)); got != 100 {
			t.Fatalf("month %d: expected 100, got %s", m, got)
		}
	}
	for _, m := range []int{1, 2, 10} {
		if got := amountAt(t, doc, rosterSheet, rosterRow(1), monthColumn(m)); got != 0 {
			t.Fatalf("month %d must stay empty, got %s", m, got)
		}
	}
	if res.Period != "март - сентябрь" {
		t.Fatalf("unexpected period %q", res.Period)
	}
	tr := testLayout().Tracking
	if v, _ := doc.Value(trackingSheet, trackingRow(1), tr.PeriodColumn()); v != "март - сентябрь" {
		t.Fatalf("unexpected period cell %v", v)
	}
	if v, _ := doc.Value(trackingSheet, trackingRow(1), tr.DateColumn()); v != "05.03.2025" {
		t.Fatalf("unexpected date cell %v", v)
	}
	if got := amountAt(t, doc, trackingSheet, trackingRow(1), tr.SumColumn()); got != 1000 {
		t.Fatalf("expected tracking sum 1000, got %s", got)
	}
	assertConserved(t, res)
}

func TestAllocateDebtAbsorbsWholePayment(t *testing.T) {
	doc := newFixture(t)
	r := testLayout().Roster
	doc.Set(rosterSheet, rosterRow(2), r.DebtColumn, int64(500))
	doc.Set(rosterSheet, rosterRow(2), r.DebtRepaidColumn, int64(100))
	alloc, _ := newTestAllocator(t, doc, nil)

	res, err := alloc.Allocate(payment("2", 400, "01.03.2025"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if res.DebtApplied != 400 || len(res.Deltas) != 0 {
		t.Fatalf("expected debt-only allocation, got %+v", res)
	}
	if got := amountAt(t, doc, rosterSheet, rosterRow(2), r.DebtRepaidColumn); got != 500 {
		t.Fatalf("expected debt repaid 500, got %s", got)
	}
	if v, _ := doc.Value(trackingSheet, trackingRow(2), testLayout().Tracking.PeriodColumn()); v != nil {
		t.Fatalf("period must stay unset, got %v", v)
	}
	assertConserved(t, res)
}

func TestAllocatePartialThenCompletes(t *testing.T) {
	doc := newFixture(t)
	alloc, _ := newTestAllocator(t, doc, nil)

	first, err := alloc.Allocate(payment("3", 50, "02.03.2025"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if first.Period != "март" {
		t.Fatalf("expected period март, got %q", first.Period)
	}
	second, err := alloc.Allocate(payment("3", 80, "20.03.2025"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got := amountAt(t, doc, rosterSheet, rosterRow(3), monthColumn(3)); got != 100 {
		t.Fatalf("expected march complete, got %s", got)
	}
	if got := amountAt(t, doc, rosterSheet, rosterRow(3), monthColumn(4)); got != 30 {
		t.Fatalf("expected april 30, got %s", got)
	}
	if second.Period != "март - апрель" {
		t.Fatalf("expected extended period, got %q", second.Period)
	}
	tr := testLayout().Tracking
	if v, _ := doc.Value(trackingSheet, trackingRow(3), tr.DateColumn()); v != "02.03.2025/20.03.2025" {
		t.Fatalf("unexpected dates %v", v)
	}
	if got := amountAt(t, doc, trackingSheet, trackingRow(3), tr.SumColumn()); got != 130 {
		t.Fatalf("expected tracking sum 130, got %s", got)
	}
	assertConserved(t, first)
	assertConserved(t, second)
}

func TestAllocateExtendsExistingPeriodWithSameMonth(t *testing.T) {
	doc := newFixture(t)
	alloc, _ := newTestAllocator(t, doc, nil)

	if _, err := alloc.Allocate(payment("1", 50, "01.03.2025")); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	second, err := alloc.Allocate(payment("1", 30, "02.03.2025"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if second.Period != "март - март" {
		t.Fatalf("expected period март - март, got %q", second.Period)
	}
	if got := amountAt(t, doc, rosterSheet, rosterRow(1), monthColumn(3)); got != 80 {
		t.Fatalf("expected march 80, got %s", got)
	}
	assertConserved(t, second)
}

func TestAllocateSkipsFullMonthsAndOverflowsIntoLast(t *testing.T) {
	doc := newFixture(t)
	row := rosterRow(4)
	for m := 3; m <= 12; m++ {
		if m != 5 {
			doc.Set(rosterSheet, row, monthColumn(m), int64(100))
		}
	}
	alloc, _ := newTestAllocator(t, doc, nil)

	res, err := alloc.Allocate(payment("4", 350, "10.03.2025"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got := amountAt(t, doc, rosterSheet, row, monthColumn(5)); got != 100 {
		t.Fatalf("expected may filled, got %s", got)
	}
	if got := amountAt(t, doc, rosterSheet, row, monthColumn(12)); got != 350 {
		t.Fatalf("expected december to absorb 250 on top of 100, got %s", got)
	}
	if len(res.Deltas) != 2 || res.Deltas[1].Month != 12 || res.Deltas[1].Amount != 250 {
		t.Fatalf("unexpected deltas %+v", res.Deltas)
	}
	if res.Period != "май - декабрь" {
		t.Fatalf("unexpected period %q", res.Period)
	}
	assertConserved(t, res)
}

func TestAllocateSameDateTwiceIsRecordedOnce(t *testing.T) {
	doc := newFixture(t)
	collector := events.NewCollector()
	alloc, l := newTestAllocator(t, doc, collector)
	p := payment("1", 200, "01.03.2025")

	if _, err := alloc.Allocate(p); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	writes := l.Writes()
	res, err := alloc.Allocate(p)
	if err != nil {
		t.Fatalf("allocate again: %v", err)
	}
	if res.Status != StatusAlreadyRecorded {
		t.Fatalf("expected already recorded, got %s", res.Status)
	}
	if l.Writes() != writes {
		t.Fatalf("expected no writes on re-run, got %d more", l.Writes()-writes)
	}
	tr := testLayout().Tracking
	if got := amountAt(t, doc, trackingSheet, trackingRow(1), tr.SumColumn()); got != 200 {
		t.Fatalf("expected tracking sum 200, got %s", got)
	}
	if collector.Count(events.CodePaymentAlreadyRecorded) != 1 {
		t.Fatalf("expected PAYMENT_ALREADY_RECORDED, got %v", collector.Events())
	}
}

func TestAllocateSkipsUnknownUnitsAndMonths(t *testing.T) {
	doc := newFixture(t)
	collector := events.NewCollector()
	alloc, l := newTestAllocator(t, doc, collector)

	res, err := alloc.Allocate(payment("42", 100, "01.03.2025"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if res.Status != StatusSkipped || res.Reason != events.CodeUnitNotFound {
		t.Fatalf("expected unit not found, got %+v", res)
	}
	res, err = alloc.Allocate(payment("1", 100, "01.05.2025"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if res.Status != StatusSkipped || res.Reason != events.CodeUnitNotFound {
		t.Fatalf("expected missing may block to skip, got %+v", res)
	}
	res, err = alloc.Allocate(payment("1", 100, "31.02.2025"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if res.Status != StatusSkipped || res.Reason != events.CodeUnknownMonth {
		t.Fatalf("expected unknown month, got %+v", res)
	}
	if l.Writes() != 0 {
		t.Fatalf("skipped payments must not write, got %d writes", l.Writes())
	}
	if collector.Count(events.CodeUnitNotFound) != 2 || collector.Count(events.CodeUnknownMonth) != 1 {
		t.Fatalf("unexpected events %v", collector.Events())
	}
}

func TestAllocateAllKeepsOrderAndTracksMonths(t *testing.T) {
	doc := newFixture(t)
	alloc, _ := newTestAllocator(t, doc, nil)
	payments := bank.Payments{
		Units: []string{"2", "1"},
		ByUnit: map[string][]bank.AggregatedPayment{
			"1": {payment("1", 100, "01.04.2025")},
			"2": {payment("2", 100, "01.03.2025"), payment("2", 100, "02.03.2025")},
		},
	}

	out, err := alloc.AllocateAll(payments)
	if err != nil {
		t.Fatalf("allocate all: %v", err)
	}
	if len(out) != 3 || out[0].UnitID != "2" || out[2].UnitID != "1" {
		t.Fatalf("unexpected order %+v", out)
	}
	months := alloc.TouchedMonths()
	if len(months) != 2 || months[0] != 3 || months[1] != 4 {
		t.Fatalf("unexpected touched months %v", months)
	}
	for _, a := range out {
		assertConserved(t, a)
	}
}
