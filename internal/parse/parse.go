// Package parse normalizes raw source-field encodings into canonical
// semantic values. Every parser is total: bad input resolves to the
// documented default, never an error.
package parse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// trueWords are the string encodings accepted as a raised flag.
var trueWords = map[string]struct{}{
	"да":   {},
	"yes":  {},
	"true": {},
	"1":    {},
	"1.0":  {},
}

// BoolFlag converts flag-like values (1.00, 0.00, "да", "нет") to bool.
// Missing values and unrecognized strings are false.
func BoolFlag(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return !math.IsNaN(val) && val != 0
	case string:
		_, ok := trueWords[strings.ToLower(strings.TrimSpace(val))]
		return ok
	default:
		return false
	}
}

// dateLayouts are tried in order; day-first forms come before ISO so that
// ambiguous inputs follow the source locale convention.
var dateLayouts = []string{
	"02.01.2006",
	"02.01.2006 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01-02-06",
}

// Date converts a raw value to its calendar date. The second return is
// false when no date can be extracted; absence is the only failure signal.
func Date(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return truncate(val), true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return truncate(*val), true
	case float64:
		// Spreadsheet serial date.
		if math.IsNaN(val) || val <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(val, false)
		if err != nil {
			return time.Time{}, false
		}
		return truncate(t), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncate(t), true
			}
		}
		// Numeric text from an unstyled spreadsheet cell.
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return Date(serial)
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Float converts numeric-like values to float64, resolving missing or
// unparseable input to 0.
func Float(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(val) {
			return 0
		}
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	default:
		return 0
	}
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
