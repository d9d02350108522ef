package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// SheetName is the single sheet a CSV extract exposes.
const SheetName = "csv"

var errUnknownEncoding = errors.New("csvfile: unknown encoding")

// Options control how an extract CSV is decoded.
type Options struct {
	// Encoding is "utf-8" (default), "windows-1251" or "cp866".
	Encoding string
	// Comma defaults to ','; descriptions use ';' internally.
	Comma rune
}

// Source exposes a CSV bank extract through row/column access.
type Source struct {
	rows [][]string
}

// Open reads a CSV extract from disk.
func Open(path string, opts Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses a CSV extract.
func Read(r io.Reader, opts Options) (*Source, error) {
	dec, err := decoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec.NewDecoder())
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvfile: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return &Source{rows: rows}, nil
}

func decoder(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251, nil
	case "cp866", "ibm866":
		return charmap.CodePage866, nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownEncoding, name)
	}
}

// SheetNames returns the single CSV sheet.
func (s *Source) SheetNames() []string { return []string{SheetName} }

// Value returns the trimmed cell text, nil when empty or out of range.
func (s *Source) Value(sheet string, row, col int) (any, error) {
	if sheet != SheetName {
		return nil, fmt.Errorf("csvfile: unknown sheet %q", sheet)
	}
	if row < 1 || col < 1 || row > len(s.rows) || col > len(s.rows[row-1]) {
		return nil, nil
	}
	v := strings.TrimSpace(s.rows[row-1][col-1])
	if v == "" {
		return nil, nil
	}
	return v, nil
}

// MaxRow returns the number of records.
func (s *Source) MaxRow(sheet string) (int, error) {
	if sheet != SheetName {
		return 0, fmt.Errorf("csvfile: unknown sheet %q", sheet)
	}
	return len(s.rows), nil
}
