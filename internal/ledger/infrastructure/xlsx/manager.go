package xlsx

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"osi-dues/internal/events"
	ledger "osi-dues/internal/ledger/domain"
)

// Manager loads and saves ledger workbooks at their original location.
type Manager struct {
	logger *log.Logger
	sink   events.Sink
}

// NewManager constructs a workbook manager.
func NewManager(logger *log.Logger, sink events.Sink) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	if sink == nil {
		sink = events.Discard
	}
	return &Manager{logger: logger, sink: sink}
}

// Load opens the workbook at path.
func (m *Manager) Load(path string) (*Document, error) {
	doc, err := OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	m.logger.Printf("workbook loaded: path=%s sheets=%d", path, len(doc.SheetNames()))
	return doc, nil
}

// Save writes the workbook back to the path it was loaded from. A locked or
// read-only file yields ledger.ErrSavePermissionDenied; the document is left
// untouched so the caller can retry.
func (m *Manager) Save(doc *Document) error {
	if doc == nil || doc.file == nil {
		return ledger.ErrNilDocument
	}
	path := doc.file.Path
	if path == "" {
		return errors.New("save: workbook has no path")
	}
	if err := doc.file.SaveAs(path); err != nil {
		if isPermissionError(err) {
			m.sink.Emit(events.Errorf(events.CodeSavePermissionDenied,
				"cannot save %s: the file is open in another program or read-only", path))
			return fmt.Errorf("%w: %s", ledger.ErrSavePermissionDenied, path)
		}
		return fmt.Errorf("save %s: %w", path, err)
	}
	m.logger.Printf("workbook saved: path=%s", path)
	return nil
}

// Close releases the workbook.
func (m *Manager) Close(doc *Document) error {
	if doc == nil || doc.file == nil {
		return nil
	}
	return doc.file.Close()
}

func isPermissionError(err error) bool {
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	// Windows reports sharing violations without mapping them to ErrPermission.
	return strings.Contains(strings.ToLower(err.Error()), "used by another process")
}
