package bank

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a whole currency amount as it appears in the bank extract and ledger.
type Amount int64

func (a Amount) String() string {
	return strconv.FormatInt(int64(a), 10)
}

// ParseAmount converts a cell value into an Amount.
// Accepted inputs are integers, integral floats and numeric strings
// ("1500", "1500.00", "1 500,00"). Fractional values are rejected.
func ParseAmount(v any) (Amount, error) {
	var d decimal.Decimal
	switch x := v.(type) {
	case nil:
		return 0, ErrInvalidAmount
	case Amount:
		return x, nil
	case int:
		return Amount(x), nil
	case int32:
		return Amount(x), nil
	case int64:
		return Amount(x), nil
	case float32:
		d = decimal.NewFromFloat32(x)
	case float64:
		d = decimal.NewFromFloat(x)
	case string:
		s := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\u00a0', '\u202f':
				return -1
			case ',':
				return '.'
			}
			return r
		}, strings.TrimSpace(x))
		if s == "" {
			return 0, ErrInvalidAmount
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		d = parsed
	default:
		return 0, ErrInvalidAmount
	}
	if !d.IsInteger() {
		return 0, ErrNonIntegerAmount
	}
	if !d.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}
	return Amount(d.IntPart()), nil
}

// AmountOrZero reads a ledger cell that may be empty; unreadable values count as zero.
func AmountOrZero(v any) Amount {
	a, err := ParseAmount(v)
	if err != nil {
		return 0
	}
	return a
}
