package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	ledger "osi-dues/internal/ledger/domain"
)

// builtin number formats that render dates.
var builtinDateFormats = map[int]struct{}{
	14: {}, 15: {}, 16: {}, 17: {}, 18: {}, 19: {}, 20: {}, 21: {}, 22: {},
	45: {}, 46: {}, 47: {},
}

// Document adapts an excelize workbook to ledger.Document.
type Document struct {
	file     *excelize.File
	date1904 bool
}

// NewDocument wraps an opened workbook.
func NewDocument(file *excelize.File) *Document {
	d := &Document{file: file}
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// OpenFile opens a workbook from disk.
func OpenFile(path string) (*Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return NewDocument(f), nil
}

// OpenReader opens a workbook from a stream.
func OpenReader(r io.Reader) (*Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(f), nil
}

// File exposes the underlying workbook.
func (d *Document) File() *excelize.File { return d.file }

// SheetNames returns the workbook sheets in tab order.
func (d *Document) SheetNames() []string {
	return d.file.GetSheetList()
}

// Value returns nil for empty cells, int64/float64 for numbers, time.Time for
// date-formatted numbers, bool for booleans and string otherwise.
func (d *Document) Value(sheet string, row, col int) (any, error) {
	axis, err := cellName(row, col)
	if err != nil {
		return nil, err
	}
	raw, err := d.file.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, mapError(sheet, err)
	}
	if raw == "" {
		return nil, nil
	}
	typ, err := d.file.GetCellType(sheet, axis)
	if err != nil {
		return nil, mapError(sheet, err)
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return raw, nil
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, nil
	}
	if d.isDateCell(sheet, axis) {
		t, err := excelize.ExcelDateToTime(num, d.date1904)
		if err == nil {
			return t, nil
		}
	}
	if num == float64(int64(num)) {
		return int64(num), nil
	}
	return num, nil
}

// SetValue writes a value into a cell.
func (d *Document) SetValue(sheet string, row, col int, value any) error {
	axis, err := cellName(row, col)
	if err != nil {
		return err
	}
	if err := d.file.SetCellValue(sheet, axis, value); err != nil {
		return mapError(sheet, err)
	}
	return nil
}

// MaxRow returns the last row holding data.
func (d *Document) MaxRow(sheet string) (int, error) {
	rows, err := d.file.GetRows(sheet)
	if err != nil {
		return 0, mapError(sheet, err)
	}
	return len(rows), nil
}

// MaxColumn returns the widest row length.
func (d *Document) MaxColumn(sheet string) (int, error) {
	rows, err := d.file.GetRows(sheet)
	if err != nil {
		return 0, mapError(sheet, err)
	}
	maxCol := 0
	for _, r := range rows {
		if len(r) > maxCol {
			maxCol = len(r)
		}
	}
	return maxCol, nil
}

func (d *Document) isDateCell(sheet, axis string) bool {
	idx, err := d.file.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	style, err := d.file.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if _, ok := builtinDateFormats[style.NumFmt]; ok {
		return true
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	return false
}

// isDateFormat reports whether a custom number format renders a calendar date.
// Quoted literals and bracketed sections are ignored.
func isDateFormat(format string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range format {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == '[' && !inQuote:
			inBracket = true
		case r == ']' && !inQuote:
			inBracket = false
		case !inQuote && !inBracket:
			b.WriteRune(r)
		}
	}
	f := strings.ToLower(b.String())
	return strings.ContainsAny(f, "yd")
}

func cellName(row, col int) (string, error) {
	if row < 1 || col < 1 {
		return "", ledger.ErrInvalidCoordinates
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrInvalidCoordinates, err)
	}
	return name, nil
}

func mapError(sheet string, err error) error {
	var notExist excelize.ErrSheetNotExist
	if errors.As(err, &notExist) {
		return fmt.Errorf("%w: %s", ledger.ErrSheetNotFound, sheet)
	}
	return err
}
