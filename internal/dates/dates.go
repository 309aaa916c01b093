// Package dates normalizes the textual date formats accepted on input
// paths (CSV import, request payloads) into calendar dates.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// layouts is tried in order; the first successful parse wins. The
// day-first layout is deliberately tried before the US month-first one,
// so "03/04/2026" means 3 April, not 4 March. Do not reorder.
var layouts = []string{
	"2006-01-02", // 2026-01-05
	"02/01/2006", // 05/01/2026
	"01/02/2006", // 01/05/2026 (US)
	"02-01-2006", // 05-01-2026
}

// InvalidFormatError reports an input that matched none of the accepted
// date layouts.
type InvalidFormatError struct {
	Input string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("Invalid date format: '%s'. Use YYYY-MM-DD or DD/MM/YYYY.", e.Input)
}

// Parse attempts to parse s against the accepted layouts. An empty or
// blank string yields a zero time and no error ("no date" is not a
// failure). Anything else that matches no layout returns an
// *InvalidFormatError carrying the offending input.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidFormatError{Input: s}
}
