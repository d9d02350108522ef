package application

import (
	"errors"
	"testing"

	"osi-dues/internal/events"
	ledger "osi-dues/internal/ledger/domain"
	"osi-dues/internal/ledger/infrastructure/memory"
)

func TestScanMonthRangesInfersLastWidth(t *testing.T) {
	doc := memory.NewDocument("s")
	doc.Set("s", 1, 3, "Январь 2025")
	doc.Set("s", 1, 7, "февраль")

	ranges, err := ScanMonthRanges(doc, "s", ledger.MonthGrid{HeaderRow: 1}, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[0].StartColumn != 3 || ranges[0].EndColumn != 7 || ranges[0].Month != 1 {
		t.Fatalf("unexpected first range %+v", ranges[0])
	}
	if ranges[1].StartColumn != 7 || ranges[1].EndColumn != 11 || ranges[1].MonthKey != "февраль" {
		t.Fatalf("expected last range [7,11), got %+v", ranges[1])
	}
}

func TestScanMonthRangesIgnoresNonMonthsAndRepeats(t *testing.T) {
	doc := memory.NewDocument("s")
	doc.Set("s", 1, 1, "Итого")
	doc.Set("s", 1, 2, "март")
	doc.Set("s", 1, 4, "  АПРЕЛЬ 2025 ")
	doc.Set("s", 1, 5, int64(2025))
	doc.Set("s", 1, 6, "март 2026")

	ranges, err := ScanMonthRanges(doc, "s", ledger.MonthGrid{HeaderRow: 1}, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(ranges) != 2 || ranges[0].Month != 3 || ranges[1].Month != 4 {
		t.Fatalf("unexpected ranges %+v", ranges)
	}
	if ranges[1].EndColumn != 6 {
		t.Fatalf("expected april to reuse width 2, got %+v", ranges[1])
	}
}

func TestScanMonthRangesNoMonths(t *testing.T) {
	doc := memory.NewDocument("s")
	doc.Set("s", 1, 1, "итого")
	collector := events.NewCollector()

	ranges, err := ScanMonthRanges(doc, "s", ledger.MonthGrid{HeaderRow: 1}, collector)
	if !errors.Is(err, ledger.ErrNoMonthRanges) {
		t.Fatalf("expected ErrNoMonthRanges, got %v", err)
	}
	if len(ranges) != 0 {
		t.Fatalf("expected empty result, got %+v", ranges)
	}
	if collector.Count(events.CodeNoMonthRanges) != 1 {
		t.Fatalf("expected NO_MONTH_RANGES event, got %v", collector.Events())
	}
}

func TestScanMonthRangesSingleMonth(t *testing.T) {
	doc := memory.NewDocument("s")
	doc.Set("s", 1, 3, "март")
	collector := events.NewCollector()

	_, err := ScanMonthRanges(doc, "s", ledger.MonthGrid{HeaderRow: 1}, collector)
	if !errors.Is(err, ledger.ErrInsufficientColumns) {
		t.Fatalf("expected ErrInsufficientColumns, got %v", err)
	}
	if collector.Count(events.CodeInsufficientColumns) != 1 {
		t.Fatalf("expected INSUFFICIENT_COLUMNS event, got %v", collector.Events())
	}
}

func TestScanMonthRangesSubColumns(t *testing.T) {
	doc := memory.NewDocument("s")
	doc.Set("s", 1, 1, "январь")
	doc.Set("s", 1, 4, "февраль")
	doc.Set("s", 2, 1, "Долг")
	doc.Set("s", 2, 2, "Взнос")
	doc.Set("s", 2, 3, "взнос")
	doc.Set("s", 2, 4, "долг")
	doc.Set("s", 2, 5, "взнос")
	collector := events.NewCollector()

	ranges, err := ScanMonthRanges(doc, "s", ledger.MonthGrid{HeaderRow: 1, SubHeaderRow: 2}, collector)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	jan := ranges[0].SubColumns
	if jan["долг"] != 1 || jan["взнос"] != 2 {
		t.Fatalf("unexpected january sub-columns %v", jan)
	}
	if ranges[1].SubColumns["взнос"] != 5 {
		t.Fatalf("unexpected february sub-columns %v", ranges[1].SubColumns)
	}
	if collector.Count(events.CodeDuplicateSubColumn) != 1 {
		t.Fatalf("expected one DUPLICATE_SUBCOLUMN warning, got %v", collector.Events())
	}
	if ranges[0].FeeColumn("взнос") != 2 || ranges[0].FeeColumn("нет") != 1 {
		t.Fatalf("unexpected fee column lookup")
	}
}
