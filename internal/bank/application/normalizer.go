package application

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	bank "osi-dues/internal/bank/domain"
	"osi-dues/internal/events"
)

// unitField is the index of the composite "unit" field inside the payment description.
const unitField = 5

// ExtractUnitID pulls the unit id out of a ';'-separated payment description.
func ExtractUnitID(description string) (string, bool) {
	if description == "" {
		return "", false
	}
	parts := strings.Split(description, ";")
	if len(parts) <= unitField {
		return "", false
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, parts[unitField])
	if digits == "" {
		return "", false
	}
	return CanonicalUnitID(digits), true
}

// CanonicalUnitID strips leading zeros so "07" and "7" address the same unit.
func CanonicalUnitID(id string) string {
	id = strings.TrimSpace(id)
	trimmed := strings.TrimLeft(id, "0")
	if trimmed == "" && id != "" {
		return "0"
	}
	return trimmed
}

// NormalizeDate converts a date cell into dotted text.
// time.Time values are formatted as DD.MM.YYYY; strings keep the part before the
// first space with '-' replaced by '.'. Calendar validity is checked later.
func NormalizeDate(v any) (string, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return "", false
		}
		return x.Format(bank.DateLayout), true
	case string:
		s := strings.TrimSpace(x)
		if i := strings.Index(s, " "); i >= 0 {
			s = s[:i]
		}
		s = strings.ReplaceAll(s, "-", ".")
		if s == "" {
			return "", false
		}
		return s, true
	}
	return "", false
}

// Normalizer validates raw extract rows against the unit reference set.
type Normalizer struct {
	valid map[string]struct{}
	sink  events.Sink
}

// NewNormalizer constructs a normalizer for the given valid unit ids.
func NewNormalizer(validUnits []string, sink events.Sink) (*Normalizer, error) {
	if len(validUnits) == 0 {
		return nil, errors.New("normalizer: empty unit reference set")
	}
	if sink == nil {
		sink = events.Discard
	}
	valid := make(map[string]struct{}, len(validUnits))
	for _, id := range validUnits {
		valid[CanonicalUnitID(id)] = struct{}{}
	}
	return &Normalizer{valid: valid, sink: sink}, nil
}

// Normalize turns a raw row into a payment record. Every violated rule emits
// its own event; the row is rejected when at least one rule fails.
func (n *Normalizer) Normalize(row RawRow) (bank.PaymentRecord, bool) {
	failed := false

	description := textOf(row.Description)
	unitID, ok := ExtractUnitID(description)
	switch {
	case !ok:
		n.sink.Emit(events.Errorf(events.CodeInvalidApartment, "unit id cannot be extracted from description").AtRow(row.Index).WithRaw(row.Description))
		failed = true
	default:
		if _, known := n.valid[unitID]; !known {
			n.sink.Emit(events.Errorf(events.CodeInvalidApartment, "unit %q is not in the reference set", unitID).AtRow(row.Index).WithRaw(row.Description).WithParsed(unitID))
			failed = true
		}
	}

	amount, err := bank.ParseAmount(row.Amount)
	if err == nil && amount < 0 {
		err = bank.ErrNegativeAmount
	}
	if err != nil {
		n.sink.Emit(events.Errorf(events.CodeInvalidSum, "amount is not a non-negative integer: %v", err).AtRow(row.Index).WithRaw(row.Amount))
		failed = true
	}

	date, ok := NormalizeDate(row.Date)
	if !ok {
		n.sink.Emit(events.Errorf(events.CodeInvalidDate, "payment date is missing or unreadable").AtRow(row.Index).WithRaw(row.Date))
		failed = true
	}

	if failed {
		return bank.PaymentRecord{}, false
	}
	return bank.PaymentRecord{
		UnitID:      unitID,
		Amount:      amount,
		Date:        date,
		AccountType: strings.ToLower(strings.TrimSpace(textOf(row.AccountType))),
		SourceRow:   row.Index,
	}, true
}

func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
