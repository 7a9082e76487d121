package timeslot

// Booking is the candidate view the conflict detector works over: one
// subject (volunteer or safety-team member), one date, a half-open
// [Start,End) window in minutes since midnight, and a status.
type Booking struct {
	ID        string
	SubjectID string
	Date      Date
	Start     int
	End       int
	Status    Status
}

// Overlaps reports whether the half-open windows [b.Start,b.End) and
// [start,end) intersect. Equal boundaries do not overlap, so back-to-back
// bookings are fine.
func (b Booking) Overlaps(start, end int) bool {
	return b.Start < end && b.End > start
}

// FirstConflict returns the first candidate that would double-book the
// subject for the requested window, or nil if the slot is free.
//
// Candidates are filtered to the same subject and date, to statuses that
// still occupy their slot, and past excludeID (so an update can check
// against every booking except the one being edited). The caller typically
// obtains candidates from a single ranged query on (subject, date, active
// statuses); extra rows are harmless, they are filtered here again.
func FirstConflict(subjectID string, date Date, start, end int, candidates []Booking, excludeID string) (*Booking, error) {
	if start >= end {
		return nil, ErrInvalidRange
	}
	for i := range candidates {
		c := &candidates[i]
		if c.SubjectID != subjectID || c.Date != date {
			continue
		}
		if !IsActive(c.Status) {
			continue
		}
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		if c.Overlaps(start, end) {
			return c, nil
		}
	}
	return nil, nil
}

// HasConflict reports whether any active booking overlaps the requested
// window. See FirstConflict.
func HasConflict(subjectID string, date Date, start, end int, candidates []Booking, excludeID string) (bool, error) {
	c, err := FirstConflict(subjectID, date, start, end, candidates, excludeID)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}
