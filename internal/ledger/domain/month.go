package ledger

import "strings"

var monthNames = [12]string{
	"январь",
	"февраль",
	"март",
	"апрель",
	"май",
	"июнь",
	"июль",
	"август",
	"сентябрь",
	"октябрь",
	"ноябрь",
	"декабрь",
}

// MonthNumberToName returns the lower-case month name for 1..12.
func MonthNumberToName(month int) (string, bool) {
	if month < 1 || month > 12 {
		return "", false
	}
	return monthNames[month-1], true
}

// MonthNameToNumber resolves a month name, ignoring case and surrounding space.
func MonthNameToNumber(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, false
	}
	for i, n := range monthNames {
		if n == name {
			return i + 1, true
		}
	}
	return 0, false
}
