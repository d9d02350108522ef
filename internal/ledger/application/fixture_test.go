package application

import (
	"testing"

	ledger "osi-dues/internal/ledger/domain"
	"osi-dues/internal/ledger/infrastructure/memory"
)

const (
	rosterSheet   = "список как должн"
	trackingSheet = "оплата"
)

var monthHeaders = []string{
	"Январь 2025", "Февраль 2025", "Март 2025", "Апрель 2025", "Май 2025", "Июнь 2025",
	"Июль 2025", "Август 2025", "Сентябрь 2025", "Октябрь 2025", "Ноябрь 2025", "Декабрь 2025",
}

func testLayout() ledger.Layout {
	layout := ledger.DefaultLayout()
	layout.UnitCount = 5
	return layout
}

// monthColumn returns the roster fee column of month m in the fixture.
func monthColumn(m int) int { return 9 + m }

// newFixture builds a ledger with units 1..5, fee 100 each, and tracking
// blocks for March (label row 1) and April (label row 10).
func newFixture(t *testing.T) *memory.Document {
	t.Helper()
	layout := testLayout()
	doc := memory.NewDocument(rosterSheet, trackingSheet)

	r := layout.Roster
	doc.Set(rosterSheet, r.Months.HeaderRow, r.UnitColumn, "№ кв")
	for i, h := range monthHeaders {
		doc.Set(rosterSheet, r.Months.HeaderRow, r.Months.FirstColumn+i, h)
	}
	for unit := 1; unit <= layout.UnitCount; unit++ {
		row := r.FirstRow + unit - 1
		doc.Set(rosterSheet, row, r.UnitColumn, int64(unit))
		doc.Set(rosterSheet, row, r.FeeColumn, int64(100))
	}

	tr := layout.Tracking
	for _, block := range []struct {
		label string
		row   int
	}{{"Март", 1}, {"Апрель", 10}} {
		doc.Set(trackingSheet, block.row, tr.LabelColumn, block.label)
		for unit := 1; unit <= layout.UnitCount; unit++ {
			doc.Set(trackingSheet, block.row+tr.UnitRowOffset+unit-1, tr.UnitColumn(), int64(unit))
		}
	}
	return doc
}

// trackingRow returns the fixture tracking row of unit in the March block.
func trackingRow(unit int) int { return 1 + testLayout().Tracking.UnitRowOffset + unit - 1 }

// rosterRow returns the fixture roster row of unit.
func rosterRow(unit int) int { return testLayout().Roster.FirstRow + unit - 1 }
