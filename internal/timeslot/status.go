package timeslot

// Status of a schedule entry.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Kind distinguishes the two schedule families, which differ only in their
// status vocabulary (safety schedules have no no-show state).
type Kind int

const (
	KindMinistry Kind = iota
	KindSafety
)

// statusSets lists the valid statuses per kind.
var statusSets = map[Kind][]Status{
	KindMinistry: {StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow},
	KindSafety:   {StatusScheduled, StatusCompleted, StatusCancelled},
}

// ValidStatus reports whether s is a legal status for the given kind.
func ValidStatus(kind Kind, s Status) bool {
	for _, v := range statusSets[kind] {
		if v == s {
			return true
		}
	}
	return false
}

// IsActive reports whether a booking in status s still occupies its time
// slot. Cancelled and no-show entries free the slot.
func IsActive(s Status) bool {
	return s == StatusScheduled || s == StatusCompleted
}

// ActiveStatuses returns the statuses that count toward conflicts, for use
// in repository queries.
func ActiveStatuses() []Status {
	return []Status{StatusScheduled, StatusCompleted}
}

// CanTransition reports whether a status change is legal. Scheduled entries
// may move to any terminal status of their kind; terminal statuses are
// absorbing. Reopening a completed or cancelled entry would resurrect its
// slot without re-running conflict detection, so it is rejected.
func CanTransition(kind Kind, from, to Status) bool {
	if !ValidStatus(kind, from) || !ValidStatus(kind, to) {
		return false
	}
	if from == to {
		return true
	}
	return from == StatusScheduled
}
