package application

import (
	"errors"
	"fmt"

	bank "osi-dues/internal/bank/domain"
)

// RowSource exposes cell access to the bank extract document.
type RowSource interface {
	Value(sheet string, row, col int) (any, error)
	MaxRow(sheet string) (int, error)
	SheetNames() []string
}

// ExtractLayout describes the fixed column layout of a bank extract.
type ExtractLayout struct {
	// Sheet is the extract sheet; empty selects the first sheet.
	Sheet             string `yaml:"sheet"`
	FirstDataRow      int    `yaml:"first_data_row"`
	AccountTypeColumn int    `yaml:"account_type_column"`
	DescriptionColumn int    `yaml:"description_column"`
	AmountColumn      int    `yaml:"amount_column"`
	DateColumn        int    `yaml:"date_column"`
	TotalRow          int    `yaml:"total_row"`
	TotalColumn       int    `yaml:"total_column"`
}

// DefaultExtractLayout matches the bank export: type, description, unused, amount, date.
func DefaultExtractLayout() ExtractLayout {
	return ExtractLayout{
		FirstDataRow:      2,
		AccountTypeColumn: 1,
		DescriptionColumn: 2,
		AmountColumn:      4,
		DateColumn:        5,
		TotalRow:          2,
		TotalColumn:       4,
	}
}

// Validate checks that every column is addressable.
func (l ExtractLayout) Validate() error {
	if l.FirstDataRow <= 0 || l.AccountTypeColumn <= 0 || l.DescriptionColumn <= 0 || l.AmountColumn <= 0 || l.DateColumn <= 0 {
		return errors.New("extract layout: rows and columns must be positive")
	}
	return nil
}

// RawRow is one unvalidated transaction row.
type RawRow struct {
	Index       int
	AccountType any
	Description any
	Amount      any
	Date        any
}

// Extract is the content of a bank extract document.
type Extract struct {
	Rows     []RawRow
	Total    bank.Amount
	HasTotal bool
}

// ReadExtract reads every row with a non-empty description starting at FirstDataRow.
func ReadExtract(src RowSource, layout ExtractLayout) (Extract, error) {
	if src == nil {
		return Extract{}, errors.New("extract: nil source")
	}
	if err := layout.Validate(); err != nil {
		return Extract{}, err
	}
	sheet := layout.Sheet
	if sheet == "" {
		names := src.SheetNames()
		if len(names) == 0 {
			return Extract{}, errors.New("extract: document has no sheets")
		}
		sheet = names[0]
	}

	maxRow, err := src.MaxRow(sheet)
	if err != nil {
		return Extract{}, fmt.Errorf("extract: %w", err)
	}

	var out Extract
	if layout.TotalRow > 0 && layout.TotalColumn > 0 {
		v, err := src.Value(sheet, layout.TotalRow, layout.TotalColumn)
		if err != nil {
			return Extract{}, fmt.Errorf("extract total: %w", err)
		}
		if total, err := bank.ParseAmount(v); err == nil {
			out.Total = total
			out.HasTotal = true
		}
	}

	for row := layout.FirstDataRow; row <= maxRow; row++ {
		description, err := src.Value(sheet, row, layout.DescriptionColumn)
		if err != nil {
			return Extract{}, fmt.Errorf("extract row %d: %w", row, err)
		}
		if description == nil {
			continue
		}
		raw := RawRow{Index: row, Description: description}
		if raw.AccountType, err = src.Value(sheet, row, layout.AccountTypeColumn); err != nil {
			return Extract{}, fmt.Errorf("extract row %d: %w", row, err)
		}
		if raw.Amount, err = src.Value(sheet, row, layout.AmountColumn); err != nil {
			return Extract{}, fmt.Errorf("extract row %d: %w", row, err)
		}
		if raw.Date, err = src.Value(sheet, row, layout.DateColumn); err != nil {
			return Extract{}, fmt.Errorf("extract row %d: %w", row, err)
		}
		out.Rows = append(out.Rows, raw)
	}
	return out, nil
}
