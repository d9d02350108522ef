package application

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	bankapp "osi-dues/internal/bank/application"
	bank "osi-dues/internal/bank/domain"
	"osi-dues/internal/events"
	ledger "osi-dues/internal/ledger/domain"
)

// CheckSheets verifies that every sheet the layout addresses exists.
// Each missing sheet is reported as SHEET_MISSING.
func CheckSheets(reader ledger.CellReader, layout ledger.Layout, sink events.Sink) error {
	if reader == nil {
		return ledger.ErrNilDocument
	}
	if sink == nil {
		sink = events.Discard
	}
	present := make(map[string]struct{})
	for _, name := range reader.SheetNames() {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range layout.RequiredSheets() {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
			sink.Emit(events.Errorf(events.CodeSheetMissing, "sheet %q not found in ledger", name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ledger.ErrMissingSheets, strings.Join(missing, ", "))
	}
	return nil
}

// ColumnScan describes a vertical run of cells below an optional header.
type ColumnScan struct {
	Sheet    string
	Column   int
	FirstRow int
	LastRow  int
	// HeaderRow is checked against Header when positive.
	HeaderRow int
	Header    string
}

// CellValue is a non-empty cell found by ScanColumn.
type CellValue struct {
	Row   int
	Value any
}

// ScanColumn returns the non-empty cells of the column. A header that does not
// match is reported as HEADER_MISMATCH and returned as ErrHeaderMismatch.
func ScanColumn(reader ledger.CellReader, scan ColumnScan, sink events.Sink) ([]CellValue, error) {
	if reader == nil {
		return nil, ledger.ErrNilDocument
	}
	if sink == nil {
		sink = events.Discard
	}
	if scan.HeaderRow > 0 {
		v, err := reader.Value(scan.Sheet, scan.HeaderRow, scan.Column)
		if err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		got := normalizeLabel(ledger.CellText(v))
		want := normalizeLabel(scan.Header)
		if got != want {
			sink.Emit(events.Errorf(events.CodeHeaderMismatch, "unexpected header on sheet %q", scan.Sheet).
				AtCell(scan.HeaderRow, scan.Column).WithRaw(v).WithParsed(scan.Header))
			return nil, fmt.Errorf("%w: %s[%d:%d]", ledger.ErrHeaderMismatch, scan.Sheet, scan.HeaderRow, scan.Column)
		}
	}
	var out []CellValue
	for row := scan.FirstRow; row <= scan.LastRow; row++ {
		v, err := reader.Value(scan.Sheet, row, scan.Column)
		if err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if v == nil || ledger.CellText(v) == "" {
			continue
		}
		out = append(out, CellValue{Row: row, Value: v})
	}
	return out, nil
}

// ReferenceUnits reads the valid unit ids from the roster unit column.
// Cells that are not unit numbers are reported as INVALID_CELL warnings.
func ReferenceUnits(reader ledger.CellReader, layout ledger.Layout, sink events.Sink) ([]string, error) {
	if sink == nil {
		sink = events.Discard
	}
	r := layout.Roster
	cells, err := ScanColumn(reader, ColumnScan{
		Sheet:     r.Sheet,
		Column:    r.UnitColumn,
		FirstRow:  r.FirstRow,
		LastRow:   r.FirstRow + layout.UnitCount - 1,
		HeaderRow: r.UnitHeaderRow,
		Header:    r.UnitHeader,
	}, sink)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(cells))
	units := make([]string, 0, len(cells))
	for _, c := range cells {
		id, ok := parseUnitID(c.Value)
		if !ok {
			sink.Emit(events.Warnf(events.CodeInvalidCell, "roster cell is not a unit number").
				AtCell(c.Row, r.UnitColumn).WithRaw(c.Value))
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		units = append(units, id)
	}
	return units, nil
}

// SequentialUnits returns "1".."n".
func SequentialUnits(n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

// parseUnitID accepts integral numbers and digit-only text.
func parseUnitID(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
			return "", false
		}
		return bankapp.CanonicalUnitID(s), true
	default:
		amount, err := bank.ParseAmount(v)
		if err != nil {
			return "", false
		}
		return strconv.FormatInt(int64(amount), 10), true
	}
}
