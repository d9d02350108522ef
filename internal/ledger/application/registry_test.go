package application

import (
	"testing"

	"osi-dues/internal/events"
)

func TestUnitRegistryLocatesRows(t *testing.T) {
	doc := newFixture(t)
	registry, err := NewUnitRegistry(doc, testLayout(), nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if row, ok := registry.RosterRow("3"); !ok || row != rosterRow(3) {
		t.Fatalf("unexpected roster row %d %v", row, ok)
	}
	if row, ok := registry.RosterRow("03"); !ok || row != rosterRow(3) {
		t.Fatalf("expected canonical lookup, got %d %v", row, ok)
	}
	if row, ok := registry.TrackingRow("5", 3); !ok || row != trackingRow(5) {
		t.Fatalf("unexpected march row %d %v", row, ok)
	}
	if row, ok := registry.TrackingRow("1", 4); !ok || row != 12 {
		t.Fatalf("unexpected april row %d %v", row, ok)
	}
	if _, ok := registry.TrackingRow("1", 5); ok {
		t.Fatalf("may has no block")
	}
	if _, ok := registry.RosterRow("6"); ok {
		t.Fatalf("unit 6 is outside the roster window")
	}
	if months := registry.Months(); len(months) != 2 || months[0] != 3 || months[1] != 4 {
		t.Fatalf("unexpected months %v", months)
	}
	if units := registry.Units(); len(units) != 5 || units[0] != "1" {
		t.Fatalf("unexpected units %v", units)
	}
}

func TestUnitRegistryReportsDuplicateRosterUnits(t *testing.T) {
	doc := newFixture(t)
	layout := testLayout()
	doc.Set(rosterSheet, rosterRow(5), layout.Roster.UnitColumn, "1")
	collector := events.NewCollector()

	registry, err := NewUnitRegistry(doc, layout, collector)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if row, _ := registry.RosterRow("1"); row != rosterRow(1) {
		t.Fatalf("expected first row to win, got %d", row)
	}
	if collector.Count(events.CodeInvalidCell) != 1 {
		t.Fatalf("expected duplicate warning, got %v", collector.Events())
	}
}
