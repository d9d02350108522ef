package ledger

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	bank "osi-dues/internal/bank/domain"
)

// CellReader is read-only cell access by (sheet, row, column), 1-based.
// Empty cells read as nil; other values are string, int64, float64, bool or time.Time.
type CellReader interface {
	SheetNames() []string
	Value(sheet string, row, col int) (any, error)
	MaxRow(sheet string) (int, error)
	MaxColumn(sheet string) (int, error)
}

// Document is a loaded tabular document that can be mutated in place.
type Document interface {
	CellReader
	SetValue(sheet string, row, col int, value any) error
}

// Ledger is the single writer over a ledger document for one run.
type Ledger struct {
	doc    Document
	logger *log.Logger
	debug  bool
	writes int
}

// NewLedger wraps a document. Cell traffic is logged when debug is set.
func NewLedger(doc Document, logger *log.Logger, debug bool) (*Ledger, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{doc: doc, logger: logger, debug: debug}, nil
}

// Reader returns the read-only view shared with scanners and locators.
func (l *Ledger) Reader() CellReader { return l.doc }

// Writes returns the number of cell writes performed.
func (l *Ledger) Writes() int { return l.writes }

// ReadCell returns the raw cell value.
func (l *Ledger) ReadCell(sheet string, row, col int) (any, error) {
	v, err := l.doc.Value(sheet, row, col)
	if err != nil {
		return nil, fmt.Errorf("read %s[%d:%d]: %w", sheet, row, col, err)
	}
	if l.debug {
		l.logger.Printf("cell read: sheet=%s row=%d col=%d value=%v", sheet, row, col, v)
	}
	return v, nil
}

// ReadAmount reads a numeric cell; empty or unreadable cells count as zero.
func (l *Ledger) ReadAmount(sheet string, row, col int) (bank.Amount, error) {
	v, err := l.ReadCell(sheet, row, col)
	if err != nil {
		return 0, err
	}
	return bank.AmountOrZero(v), nil
}

// ReadText reads a cell as text.
func (l *Ledger) ReadText(sheet string, row, col int) (string, error) {
	v, err := l.ReadCell(sheet, row, col)
	if err != nil {
		return "", err
	}
	return CellText(v), nil
}

// WriteCell stores a value.
func (l *Ledger) WriteCell(sheet string, row, col int, value any) error {
	if err := l.doc.SetValue(sheet, row, col, value); err != nil {
		return fmt.Errorf("write %s[%d:%d]: %w", sheet, row, col, err)
	}
	l.writes++
	if l.debug {
		l.logger.Printf("cell write: sheet=%s row=%d col=%d value=%v", sheet, row, col, value)
	}
	return nil
}

// WriteAmount stores an amount as a plain integer.
func (l *Ledger) WriteAmount(sheet string, row, col int, amount bank.Amount) error {
	return l.WriteCell(sheet, row, col, int64(amount))
}

// CellText renders a cell value as text. Integral floats lose their ".0",
// dates use the payment date layout.
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		return x.Format(bank.DateLayout)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
