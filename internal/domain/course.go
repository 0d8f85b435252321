package domain

// TimeSlot is one weekly meeting occurrence. Start and End are float hours
// (8:30 → 8.5) and stay nil when the source time was unparseable; such
// slots are kept for display but impose no conflict.
type TimeSlot struct {
	Day   Weekday  `json:"day"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// Schedulable reports whether the slot can participate in conflict checks:
// a known day and both bounds present.
func (s TimeSlot) Schedulable() bool {
	return s.Day.Known() && s.Start != nil && s.End != nil
}

// Overlaps reports whether two slots collide. Intervals are half-open, so
// a slot ending exactly when another starts does not overlap it.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	if !s.Schedulable() || !o.Schedulable() {
		return false
	}
	if s.Day != o.Day {
		return false
	}
	return max(*s.Start, *o.Start) < min(*s.End, *o.End)
}

// SelectionType classifies a selected course as committed or tentative.
// It only matters once a course sits in the schedule store.
type SelectionType string

const (
	Fixed     SelectionType = "SABIT"
	Candidate SelectionType = "ADAY"
)

// Course is the canonical merged representation of all raw catalog rows
// sharing a CRN. The CRN is globally unique across the catalog.
type Course struct {
	CRN        string        `json:"crn"`
	Code       string        `json:"code"`
	Title      string        `json:"title"`
	Instructor string        `json:"instructor"`
	Slots      []TimeSlot    `json:"slots"`
	Senior     bool          `json:"senior"`
	Type       SelectionType `json:"type,omitempty"`
}

// Clone returns a deep copy. The schedule store keeps copies, never
// references into the catalog, so a catalog reload cannot mutate a saved
// selection.
func (c *Course) Clone() *Course {
	out := *c
	out.Slots = make([]TimeSlot, len(c.Slots))
	for i, s := range c.Slots {
		out.Slots[i] = s
		if s.Start != nil {
			v := *s.Start
			out.Slots[i].Start = &v
		}
		if s.End != nil {
			v := *s.End
			out.Slots[i].End = &v
		}
	}
	return &out
}

// ConflictsWith reports whether any pair of slots between the two courses
// overlaps.
func (c *Course) ConflictsWith(o *Course) bool {
	for _, s1 := range c.Slots {
		for _, s2 := range o.Slots {
			if s1.Overlaps(s2) {
				return true
			}
		}
	}
	return false
}
