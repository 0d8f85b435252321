package domain

import (
	"encoding/json"
	"strings"
)

// Weekday is one of the five teaching days. Weekend days and tokens we
// cannot recognize collapse into DayUnknown, which never takes part in
// conflict checks.
type Weekday int

const (
	DayUnknown Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
)

// canonical Turkish day names, the form persisted snapshots carry.
var dayNames = map[Weekday]string{
	Monday:    "Pazartesi",
	Tuesday:   "Salı",
	Wednesday: "Çarşamba",
	Thursday:  "Perşembe",
	Friday:    "Cuma",
}

// dayTokens maps every accepted spelling (English full name, English
// 3-letter abbreviation, Turkish name) to its Weekday. Lookup is
// case-insensitive; anything missing here is DayUnknown.
var dayTokens = map[string]Weekday{
	"monday": Monday, "mon": Monday, "pazartesi": Monday,
	"tuesday": Tuesday, "tue": Tuesday, "salı": Tuesday, "sali": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday, "çarşamba": Wednesday, "carsamba": Wednesday,
	"thursday": Thursday, "thu": Thursday, "perşembe": Thursday, "persembe": Thursday,
	"friday": Friday, "fri": Friday, "cuma": Friday,
}

// ParseWeekday normalizes a raw day token. Unrecognized tokens (including
// Saturday/Sunday) come back as DayUnknown.
func ParseWeekday(tok string) Weekday {
	d, ok := dayTokens[strings.ToLower(strings.TrimSpace(tok))]
	if !ok {
		return DayUnknown
	}
	return d
}

func (d Weekday) String() string {
	if s, ok := dayNames[d]; ok {
		return s
	}
	return ""
}

// Known reports whether the day is a real teaching day.
func (d Weekday) Known() bool {
	return d >= Monday && d <= Friday
}

func (d Weekday) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any spelling ParseWeekday accepts. Older persisted
// snapshots carried English day tokens; decoding through ParseWeekday is
// what upgrades them in place.
func (d *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = ParseWeekday(s)
	return nil
}
