package memory

import (
	"fmt"
	"sync"

	ledger "osi-dues/internal/ledger/domain"
)

type cellKey struct {
	row int
	col int
}

type sheet struct {
	cells  map[cellKey]any
	maxRow int
	maxCol int
}

// Document is an in-memory tabular document for dry runs and tests.
type Document struct {
	mu     sync.RWMutex
	order  []string
	sheets map[string]*sheet
}

// NewDocument constructs a document with the given sheets.
func NewDocument(sheetNames ...string) *Document {
	d := &Document{sheets: make(map[string]*sheet)}
	for _, name := range sheetNames {
		d.AddSheet(name)
	}
	return d
}

// AddSheet adds an empty sheet; existing sheets are kept.
func (d *Document) AddSheet(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sheets[name]; ok {
		return
	}
	d.sheets[name] = &sheet{cells: make(map[cellKey]any)}
	d.order = append(d.order, name)
}

// SheetNames returns sheet names in creation order.
func (d *Document) SheetNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Value returns the cell value or nil when empty.
func (d *Document) Value(name string, row, col int) (any, error) {
	if row < 1 || col < 1 {
		return nil, ledger.ErrInvalidCoordinates
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrSheetNotFound, name)
	}
	return s.cells[cellKey{row: row, col: col}], nil
}

// SetValue stores a value; nil clears the cell.
func (d *Document) SetValue(name string, row, col int, value any) error {
	if row < 1 || col < 1 {
		return ledger.ErrInvalidCoordinates
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.sheets[name]
	if !ok {
		return fmt.Errorf("%w: %s", ledger.ErrSheetNotFound, name)
	}
	key := cellKey{row: row, col: col}
	if value == nil {
		delete(s.cells, key)
		return nil
	}
	s.cells[key] = value
	if row > s.maxRow {
		s.maxRow = row
	}
	if col > s.maxCol {
		s.maxCol = col
	}
	return nil
}

// Set is SetValue for fixtures; it panics on unknown sheets.
func (d *Document) Set(name string, row, col int, value any) {
	if err := d.SetValue(name, row, col, value); err != nil {
		panic(err)
	}
}

// MaxRow returns the highest row ever written.
func (d *Document) MaxRow(name string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sheets[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ledger.ErrSheetNotFound, name)
	}
	return s.maxRow, nil
}

// MaxColumn returns the highest column ever written.
func (d *Document) MaxColumn(name string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sheets[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ledger.ErrSheetNotFound, name)
	}
	return s.maxCol, nil
}

// Clone copies the document, used to compare before/after states.
func (d *Document) Clone() *Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := &Document{sheets: make(map[string]*sheet, len(d.sheets))}
	out.order = append(out.order, d.order...)
	for name, s := range d.sheets {
		cp := &sheet{cells: make(map[cellKey]any, len(s.cells)), maxRow: s.maxRow, maxCol: s.maxCol}
		for k, v := range s.cells {
			cp.cells[k] = v
		}
		out.sheets[name] = cp
	}
	return out
}

// CopyFrom fills a new in-memory document from any reader, e.g. to dry-run
// against a workbook without touching it.
func CopyFrom(src ledger.CellReader) (*Document, error) {
	out := NewDocument(src.SheetNames()...)
	for _, name := range src.SheetNames() {
		maxRow, err := src.MaxRow(name)
		if err != nil {
			return nil, err
		}
		maxCol, err := src.MaxColumn(name)
		if err != nil {
			return nil, err
		}
		for row := 1; row <= maxRow; row++ {
			for col := 1; col <= maxCol; col++ {
				v, err := src.Value(name, row, col)
				if err != nil {
					return nil, err
				}
				if v != nil {
					out.Set(name, row, col, v)
				}
			}
		}
	}
	return out, nil
}
