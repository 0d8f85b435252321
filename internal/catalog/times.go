package catalog

import (
	"strconv"
	"strings"
)

// ParseClockRange converts a raw time-range token like "08:30/11:29" (or
// the dash/dot variants "08.30-11.29") into float hours: (8.5, 11.4833...).
// Any failure returns (nil, nil); callers keep the slot anyway so courses
// without a fixed meeting time still show up.
func ParseClockRange(raw string) (start, end *float64) {
	clean := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "-", "/"), " ", ""))
	if clean == "" || !strings.Contains(clean, "/") {
		return nil, nil
	}

	parts := strings.SplitN(clean, "/", 2)
	s, ok1 := parseClock(parts[0])
	e, ok2 := parseClock(parts[1])
	if !ok1 || !ok2 {
		return nil, nil
	}
	return &s, &e
}

// parseClock reads "0830", "08:30" or "08.30" as 8.5. The first two digits
// are the hour, the remainder (required) is minutes.
func parseClock(tok string) (float64, bool) {
	tok = strings.ReplaceAll(strings.ReplaceAll(tok, ":", ""), ".", "")
	if len(tok) < 3 {
		return 0, false
	}
	h, err := strconv.Atoi(tok[:2])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(tok[2:])
	if err != nil {
		return 0, false
	}
	return float64(h) + float64(m)/60.0, true
}
