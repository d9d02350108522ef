package application

import (
	"fmt"
	"sort"

	"osi-dues/internal/events"
	ledger "osi-dues/internal/ledger/domain"
)

type monthStart struct {
	label  string
	month  int
	column int
}

// ScanMonthRanges discovers the column window of every month labelled on the
// grid header row. Only labels naming a calendar month are kept, first
// occurrence wins. The last range reuses the width of the one before it.
//
// A header with no months yields ErrNoMonthRanges; a single month yields
// ErrInsufficientColumns. Both are reported to sink before returning.
func ScanMonthRanges(reader ledger.CellReader, sheet string, grid ledger.MonthGrid, sink events.Sink) ([]ledger.MonthColumnRange, error) {
	if reader == nil {
		return nil, ledger.ErrNilDocument
	}
	if sink == nil {
		sink = events.Discard
	}
	maxCol, err := reader.MaxColumn(sheet)
	if err != nil {
		return nil, fmt.Errorf("scan months: %w", err)
	}
	first := grid.FirstColumn
	if first < 1 {
		first = 1
	}

	seen := make(map[string]struct{})
	var starts []monthStart
	for col := first; col <= maxCol; col++ {
		v, err := reader.Value(sheet, grid.HeaderRow, col)
		if err != nil {
			return nil, fmt.Errorf("scan months: %w", err)
		}
		text, ok := v.(string)
		if !ok {
			continue
		}
		label := monthLabel(text)
		if _, dup := seen[label]; dup {
			continue
		}
		month, ok := ledger.MonthNameToNumber(label)
		if !ok {
			continue
		}
		seen[label] = struct{}{}
		starts = append(starts, monthStart{label: label, month: month, column: col})
	}

	if len(starts) == 0 {
		sink.Emit(events.Errorf(events.CodeNoMonthRanges,
			"no month headers found on sheet %q", sheet).AtRow(grid.HeaderRow))
		return nil, ledger.ErrNoMonthRanges
	}
	if len(starts) == 1 {
		sink.Emit(events.Errorf(events.CodeInsufficientColumns,
			"insufficient data to infer column ranges: only %q found", starts[0].label).
			AtCell(grid.HeaderRow, starts[0].column))
		return nil, ledger.ErrInsufficientColumns
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].column < starts[j].column })

	ranges := make([]ledger.MonthColumnRange, len(starts))
	for i, s := range starts {
		var end int
		if i+1 < len(starts) {
			end = starts[i+1].column
		} else {
			end = s.column + ranges[i-1].Width()
		}
		ranges[i] = ledger.MonthColumnRange{
			MonthKey:    s.label,
			Month:       s.month,
			StartColumn: s.column,
			EndColumn:   end,
		}
	}

	if grid.SubHeaderRow > 0 {
		for i := range ranges {
			sub, err := scanSubColumns(reader, sheet, grid.SubHeaderRow, ranges[i], sink)
			if err != nil {
				return nil, err
			}
			ranges[i].SubColumns = sub
		}
	}
	return ranges, nil
}

func scanSubColumns(reader ledger.CellReader, sheet string, row int, r ledger.MonthColumnRange, sink events.Sink) (map[string]int, error) {
	out := make(map[string]int)
	for col := r.StartColumn; col < r.EndColumn; col++ {
		v, err := reader.Value(sheet, row, col)
		if err != nil {
			return nil, fmt.Errorf("scan sub-columns: %w", err)
		}
		label := normalizeLabel(ledger.CellText(v))
		if label == "" {
			continue
		}
		if prev, dup := out[label]; dup {
			sink.Emit(events.Warnf(events.CodeDuplicateSubColumn,
				"duplicate sub-column %q in %s, keeping column %d", label, r.MonthKey, prev).
				AtCell(row, col).WithRaw(v))
			continue
		}
		out[label] = col
	}
	return out, nil
}
