package ledger

import "errors"

var (
	// ErrNilDocument is returned when a ledger is built without a document.
	ErrNilDocument = errors.New("ledger: nil document")
	// ErrSheetNotFound is returned when a sheet does not exist in the document.
	ErrSheetNotFound = errors.New("ledger: sheet not found")
	// ErrInvalidCoordinates is returned for rows or columns below 1.
	ErrInvalidCoordinates = errors.New("ledger: invalid cell coordinates")
	// ErrInvalidLayout is returned when a layout fails validation.
	ErrInvalidLayout = errors.New("ledger: invalid layout")
	// ErrNoMonthRanges is returned when no month header could be found.
	ErrNoMonthRanges = errors.New("ledger: no month ranges found")
	// ErrInsufficientColumns is returned when the last month range width cannot be inferred.
	ErrInsufficientColumns = errors.New("ledger: insufficient data to infer column ranges")
	// ErrHeaderMismatch is returned when a scanned header does not hold the expected text.
	ErrHeaderMismatch = errors.New("ledger: header mismatch")
	// ErrMissingSheets is returned when required sheets are absent.
	ErrMissingSheets = errors.New("ledger: required sheets missing")
	// ErrSavePermissionDenied is returned when the document is locked by another process.
	ErrSavePermissionDenied = errors.New("ledger: save permission denied")
)
