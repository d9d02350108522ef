package application

import (
	"fmt"
	"sort"

	bankapp "osi-dues/internal/bank/application"
	"osi-dues/internal/events"
	ledger "osi-dues/internal/ledger/domain"
)

// TrackingBlock is the row window of one month on the tracking sheet.
type TrackingBlock struct {
	Month    int
	LabelRow int
	FirstRow int
	LastRow  int
}

// UnitRegistry maps unit ids to their roster row and their row in every
// tracking month block. Misses are reported as not found, never as errors.
type UnitRegistry struct {
	roster      map[string]int
	rosterOrder []string
	blocks      map[int]TrackingBlock
	tracking    map[int]map[string]int
}

// NewUnitRegistry indexes the roster window and the tracking month blocks.
// Duplicate unit ids keep their first row and are reported as warnings.
func NewUnitRegistry(reader ledger.CellReader, layout ledger.Layout, sink events.Sink) (*UnitRegistry, error) {
	if reader == nil {
		return nil, ledger.ErrNilDocument
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = events.Discard
	}
	reg := &UnitRegistry{
		roster:   make(map[string]int),
		blocks:   make(map[int]TrackingBlock),
		tracking: make(map[int]map[string]int),
	}

	r := layout.Roster
	for row := r.FirstRow; row < r.FirstRow+layout.UnitCount; row++ {
		unit, err := unitAt(reader, r.Sheet, row, r.UnitColumn)
		if err != nil {
			return nil, err
		}
		if unit == "" {
			continue
		}
		if prev, dup := reg.roster[unit]; dup {
			sink.Emit(events.Warnf(events.CodeInvalidCell,
				"unit %s listed twice on roster, keeping row %d", unit, prev).AtCell(row, r.UnitColumn))
			continue
		}
		reg.roster[unit] = row
		reg.rosterOrder = append(reg.rosterOrder, unit)
	}

	t := layout.Tracking
	maxRow, err := reader.MaxRow(t.Sheet)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	for row := 1; row <= maxRow; row++ {
		v, err := reader.Value(t.Sheet, row, t.LabelColumn)
		if err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		text, ok := v.(string)
		if !ok {
			continue
		}
		month, ok := ledger.MonthNameToNumber(monthLabel(text))
		if !ok {
			continue
		}
		if _, dup := reg.blocks[month]; dup {
			continue
		}
		block := TrackingBlock{
			Month:    month,
			LabelRow: row,
			FirstRow: row + t.UnitRowOffset,
			LastRow:  row + t.UnitRowOffset + layout.UnitCount - 1,
		}
		rows := make(map[string]int)
		for unitRow := block.FirstRow; unitRow <= block.LastRow; unitRow++ {
			unit, err := unitAt(reader, t.Sheet, unitRow, t.UnitColumn())
			if err != nil {
				return nil, err
			}
			if unit == "" {
				continue
			}
			if _, dup := rows[unit]; !dup {
				rows[unit] = unitRow
			}
		}
		reg.blocks[month] = block
		reg.tracking[month] = rows
	}
	return reg, nil
}

// RosterRow returns the roster row of a unit.
func (r *UnitRegistry) RosterRow(unit string) (int, bool) {
	row, ok := r.roster[bankapp.CanonicalUnitID(unit)]
	return row, ok
}

// TrackingRow returns the row of a unit inside the month block.
func (r *UnitRegistry) TrackingRow(unit string, month int) (int, bool) {
	rows, ok := r.tracking[month]
	if !ok {
		return 0, false
	}
	row, ok := rows[bankapp.CanonicalUnitID(unit)]
	return row, ok
}

// Block returns the tracking block of a month.
func (r *UnitRegistry) Block(month int) (TrackingBlock, bool) {
	b, ok := r.blocks[month]
	return b, ok
}

// Months returns the months that have a tracking block, ascending.
func (r *UnitRegistry) Months() []int {
	out := make([]int, 0, len(r.blocks))
	for m := range r.blocks {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// Units returns roster units in sheet order.
func (r *UnitRegistry) Units() []string {
	out := make([]string, len(r.rosterOrder))
	copy(out, r.rosterOrder)
	return out
}

// unitAt reads a unit id cell; empty and non-numeric cells read as "".
func unitAt(reader ledger.CellReader, sheet string, row, col int) (string, error) {
	v, err := reader.Value(sheet, row, col)
	if err != nil {
		return "", fmt.Errorf("registry: %w", err)
	}
	id, ok := parseUnitID(v)
	if !ok {
		return "", nil
	}
	return id, nil
}
