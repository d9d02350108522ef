package ledger

import "fmt"

// Layout describes where the ledger keeps its data. It is a plain value:
// every ledger shape is a Layout, not a type.
type Layout struct {
	// UnitCount bounds the roster window and every tracking block.
	UnitCount int            `yaml:"unit_count"`
	Roster    RosterLayout   `yaml:"roster"`
	Tracking  TrackingLayout `yaml:"tracking"`
}

// RosterLayout locates the per-unit dues and debt figures.
type RosterLayout struct {
	Sheet    string `yaml:"sheet"`
	FirstRow int    `yaml:"first_row"`
	// UnitHeaderRow and UnitHeader verify the unit column header; zero row skips the check.
	UnitHeaderRow    int       `yaml:"unit_header_row"`
	UnitHeader       string    `yaml:"unit_header"`
	UnitColumn       int       `yaml:"unit_column"`
	FeeColumn        int       `yaml:"fee_column"`
	DebtColumn       int       `yaml:"debt_column"`
	DebtRepaidColumn int       `yaml:"debt_repaid_column"`
	Months           MonthGrid `yaml:"months"`
}

// MonthGrid locates the month header and optional sub-header rows.
type MonthGrid struct {
	HeaderRow int `yaml:"header_row"`
	// SubHeaderRow is zero when months have no nested sub-columns.
	SubHeaderRow int `yaml:"sub_header_row"`
	FirstColumn  int `yaml:"first_column"`
	// FeeLabel names the sub-column receiving monthly fees; the range start is used when absent.
	FeeLabel string `yaml:"fee_label"`
}

// TrackingLayout locates the month blocks of the payment tracking sheet.
// Offsets are relative to LabelColumn; UnitRowOffset is relative to the month label row.
type TrackingLayout struct {
	Sheet         string `yaml:"sheet"`
	LabelColumn   int    `yaml:"label_column"`
	UnitRowOffset int    `yaml:"unit_row_offset"`
	DateOffset    int    `yaml:"date_offset"`
	UnitOffset    int    `yaml:"unit_offset"`
	PeriodOffset  int    `yaml:"period_offset"`
	SumOffset     int    `yaml:"sum_offset"`
}

// DefaultLayout is the layout of the association's yearly ledger workbook.
func DefaultLayout() Layout {
	return Layout{
		UnitCount: 60,
		Roster: RosterLayout{
			Sheet:            "список как должн",
			FirstRow:         8,
			UnitColumn:       2,
			FeeColumn:        6,
			DebtColumn:       8,
			DebtRepaidColumn: 9,
			Months: MonthGrid{
				HeaderRow:   7,
				FirstColumn: 10,
			},
		},
		Tracking: TrackingLayout{
			Sheet:         "оплата",
			LabelColumn:   1,
			UnitRowOffset: 2,
			DateOffset:    0,
			UnitOffset:    1,
			PeriodOffset:  2,
			SumOffset:     3,
		},
	}
}

// Validate checks that every coordinate is addressable.
func (l Layout) Validate() error {
	if l.UnitCount <= 0 {
		return fmt.Errorf("%w: unit count must be positive", ErrInvalidLayout)
	}
	r := l.Roster
	if r.Sheet == "" || l.Tracking.Sheet == "" {
		return fmt.Errorf("%w: sheet names required", ErrInvalidLayout)
	}
	for name, v := range map[string]int{
		"roster.first_row":          r.FirstRow,
		"roster.unit_column":        r.UnitColumn,
		"roster.fee_column":         r.FeeColumn,
		"roster.debt_column":        r.DebtColumn,
		"roster.debt_repaid_column": r.DebtRepaidColumn,
		"roster.months.header_row":  r.Months.HeaderRow,
		"tracking.label_column":     l.Tracking.LabelColumn,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidLayout, name)
		}
	}
	if r.Months.SubHeaderRow < 0 || r.Months.FirstColumn < 0 || r.UnitHeaderRow < 0 {
		return fmt.Errorf("%w: negative header coordinates", ErrInvalidLayout)
	}
	t := l.Tracking
	if t.UnitRowOffset <= 0 || t.DateOffset < 0 || t.UnitOffset < 0 || t.PeriodOffset < 0 || t.SumOffset < 0 {
		return fmt.Errorf("%w: tracking offsets must not be negative", ErrInvalidLayout)
	}
	return nil
}

// RequiredSheets lists the sheets a ledger document must contain.
func (l Layout) RequiredSheets() []string {
	return []string{l.Roster.Sheet, l.Tracking.Sheet}
}

// DateColumn returns the tracking column holding payment dates.
func (t TrackingLayout) DateColumn() int { return t.LabelColumn + t.DateOffset }

// UnitColumn returns the tracking column holding unit ids.
func (t TrackingLayout) UnitColumn() int { return t.LabelColumn + t.UnitOffset }

// PeriodColumn returns the tracking column holding the paid period label.
func (t TrackingLayout) PeriodColumn() int { return t.LabelColumn + t.PeriodOffset }

// SumColumn returns the tracking column holding the accumulated sum.
func (t TrackingLayout) SumColumn() int { return t.LabelColumn + t.SumOffset }
