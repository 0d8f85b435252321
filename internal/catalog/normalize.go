package catalog

import (
	"strings"

	"github.com/basaknazik/itudam/internal/domain"
)

// DefaultSeniorMarkers are the substrings that mark a row's class
// restriction cell as senior/thesis-track only. The source site emits the
// marker in whichever language the scraper happened to get.
var DefaultSeniorMarkers = []string{"Detay", "Detail"}

// Normalize folds raw scraped rows into a deduplicated catalog. Rows
// sharing a CRN merge into a single course: the first-seen code, title and
// instructor win, slots accumulate, and the senior flag is monotonic (once
// set it stays set). Malformed rows degrade field by field; no row aborts
// the batch.
func Normalize(records []RawRecord, seniorMarkers []string) *Catalog {
	if len(seniorMarkers) == 0 {
		seniorMarkers = DefaultSeniorMarkers
	}

	var order []*domain.Course
	byCRN := make(map[string]*domain.Course)
	subjects := make(map[string]bool)

	for _, rec := range records {
		crn := getString(rec, crnKeys...)
		// A re-ingested table header shows up as a row whose CRN cell is
		// the literal column name.
		if crn == "" || strings.EqualFold(crn, "CRN") {
			continue
		}

		senior := isSenior(getString(rec, classKeys...), seniorMarkers)

		course, ok := byCRN[crn]
		if !ok {
			code := getString(rec, codeKeys...)
			course = &domain.Course{
				CRN:        crn,
				Code:       code,
				Title:      getString(rec, titleKeys...),
				Instructor: getString(rec, instructorKeys...),
				Slots:      []domain.TimeSlot{},
				Senior:     senior,
				Type:       domain.Candidate,
			}
			byCRN[crn] = course
			order = append(order, course)
			if s := subjectPrefix(code); len(s) > 1 {
				subjects[s] = true
			}
		} else if senior {
			course.Senior = true
		}

		course.Slots = append(course.Slots, recordSlots(rec)...)
	}

	return build(order, subjects)
}

// recordSlots extracts the meeting slots of one raw row. A row can carry a
// multi-entry day cell and a multi-entry time cell; when their lengths
// differ the shorter one repeats its last entry (one time range spanning
// several listed days, or vice versa). A row without any day token yields
// no slots: internships and theses have no fixed meeting.
func recordSlots(rec RawRecord) []domain.TimeSlot {
	days := splitCell(getString(rec, dayKeys...))
	if len(days) == 0 {
		return nil
	}

	times := splitCell(getString(rec, timeKeys...))

	// Rows pre-split by the scraper carry numeric bounds instead of a raw
	// time-range cell.
	var numStart, numEnd *float64
	if len(times) == 0 {
		if v, ok := getFloat(rec, startKeys...); ok {
			numStart = &v
		}
		if v, ok := getFloat(rec, endKeys...); ok {
			numEnd = &v
		}
	}

	n := len(days)
	if len(times) > n {
		n = len(times)
	}

	slots := make([]domain.TimeSlot, 0, n)
	for i := 0; i < n; i++ {
		day := domain.ParseWeekday(pick(days, i))
		if !day.Known() {
			continue
		}

		start, end := numStart, numEnd
		if len(times) > 0 {
			start, end = ParseClockRange(pick(times, i))
		}
		// Unparseable times stay as nil bounds; the slot is kept so the
		// course still renders as "time unknown".
		slots = append(slots, domain.TimeSlot{Day: day, Start: start, End: end})
	}
	return slots
}

func pick(entries []string, i int) string {
	if i < len(entries) {
		return entries[i]
	}
	return entries[len(entries)-1]
}

func isSenior(restriction string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(restriction, m) {
			return true
		}
	}
	return false
}

// subjectPrefix is the course code up to its first space ("BLG 102E" → "BLG").
func subjectPrefix(code string) string {
	if i := strings.IndexByte(code, ' '); i >= 0 {
		return code[:i]
	}
	return code
}
