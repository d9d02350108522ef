package events

import (
	"fmt"
	"strings"
)

// Level is the severity of a domain event.
type Level string

const (
	LevelDebug   Level = "DEBUG"
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Code is a machine readable event code.
type Code string

const (
	CodeInvalidApartment       Code = "INVALID_APARTMENT"
	CodeInvalidSum             Code = "INVALID_SUM"
	CodeInvalidDate            Code = "INVALID_DATE"
	CodeUnknownMonth           Code = "UNKNOWN_MONTH"
	CodeDuplicateSubColumn     Code = "DUPLICATE_SUBCOLUMN"
	CodeSavePermissionDenied   Code = "SAVE_PERMISSION_DENIED"
	CodeNoMonthRanges          Code = "NO_MONTH_RANGES"
	CodeInsufficientColumns    Code = "INSUFFICIENT_COLUMNS"
	CodeUnitNotFound           Code = "UNIT_NOT_FOUND"
	CodePaymentAlreadyRecorded Code = "PAYMENT_ALREADY_RECORDED"
	CodeSheetMissing           Code = "SHEET_MISSING"
	CodeHeaderMismatch         Code = "HEADER_MISMATCH"
	CodeInvalidCell            Code = "INVALID_CELL"
	CodeReconciliation         Code = "RECONCILIATION"
	CodePaymentAllocated       Code = "PAYMENT_ALLOCATED"
)

// Event is a structured log record produced by the reconciliation core.
// Row and Column are 1-based; zero means "not set".
type Event struct {
	Level   Level  `json:"level"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Row     int    `json:"row,omitempty"`
	Column  int    `json:"column,omitempty"`
	Raw     string `json:"raw,omitempty"`
	Parsed  string `json:"parsed,omitempty"`
}

// Debugf builds a debug level event.
func Debugf(code Code, format string, args ...any) Event {
	return Event{Level: LevelDebug, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error level event.
func Errorf(code Code, format string, args ...any) Event {
	return Event{Level: LevelError, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning level event.
func Warnf(code Code, format string, args ...any) Event {
	return Event{Level: LevelWarning, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Infof builds an info level event.
func Infof(code Code, format string, args ...any) Event {
	return Event{Level: LevelInfo, Code: code, Message: fmt.Sprintf(format, args...)}
}

// AtRow returns a copy of the event tagged with a source row.
func (e Event) AtRow(row int) Event {
	e.Row = row
	return e
}

// AtCell returns a copy of the event tagged with cell coordinates.
func (e Event) AtCell(row, column int) Event {
	e.Row = row
	e.Column = column
	return e
}

// WithRaw attaches the raw value that triggered the event.
func (e Event) WithRaw(v any) Event {
	if v != nil {
		e.Raw = fmt.Sprint(v)
	}
	return e
}

// WithParsed attaches the value the core derived from the raw input.
func (e Event) WithParsed(v any) Event {
	if v != nil {
		e.Parsed = fmt.Sprint(v)
	}
	return e
}

// IsError reports whether the event is error level.
func (e Event) IsError() bool { return e.Level == LevelError }

// String renders "[CODE] message | ROW=n | COL=n | RAW='..' | PARSED='..'".
func (e Event) String() string {
	parts := []string{fmt.Sprintf("[%s]", e.Code), e.Message}
	if e.Row > 0 {
		parts = append(parts, fmt.Sprintf("ROW=%d", e.Row))
	}
	if e.Column > 0 {
		parts = append(parts, fmt.Sprintf("COL=%d", e.Column))
	}
	if e.Raw != "" {
		parts = append(parts, fmt.Sprintf("RAW='%s'", e.Raw))
	}
	if e.Parsed != "" {
		parts = append(parts, fmt.Sprintf("PARSED='%s'", e.Parsed))
	}
	return strings.Join(parts, " | ")
}
