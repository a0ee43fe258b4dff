package reservation

import "time"

// AccessLeadTime is how long before a reservation's start physical admission
// opens.
const AccessLeadTime = 15 * time.Minute

// DisplayStatus is the label shown next to a reservation on the access panel.
type DisplayStatus string

const (
	DisplayAccessOpen DisplayStatus = "Access Open"
	DisplayInProgress DisplayStatus = "In Progress"
	DisplayFinalized  DisplayStatus = "Finalized"
	DisplayCompleted  DisplayStatus = "Completed"
	DisplayPending    DisplayStatus = "Pending"
	DisplayScheduled  DisplayStatus = "Scheduled"
)

// AccessOpen reports whether physical admission should currently be granted:
// start-15min <= now <= start+duration.
func AccessOpen(now, start time.Time, duration time.Duration) bool {
	return !now.Before(start.Add(-AccessLeadTime)) && !now.After(start.Add(duration))
}

// AccessOpenNow applies AccessOpen to the reservation's own slot.
func (r *Reservation) AccessOpenNow(now time.Time) bool {
	return AccessOpen(now, r.slot.StartAt(), r.slot.Duration())
}

// AccessStatus derives the display label. The precedence ladder is a total
// function: any unmatched combination falls through to Finalized.
func (r *Reservation) AccessStatus(now time.Time) DisplayStatus {
	start := r.slot.StartAt()
	end := start.Add(r.slot.Duration())

	switch {
	case AccessOpen(now, start, r.slot.Duration()):
		return DisplayAccessOpen
	case r.status == StatusInProgress:
		return DisplayInProgress
	case r.status == StatusFinalized:
		return DisplayFinalized
	case now.After(end):
		return DisplayCompleted
	case !now.Before(start) && !now.After(end):
		// only reachable once the pre-start window has elapsed past start
		return DisplayPending
	case now.Before(start):
		return DisplayScheduled
	default:
		return DisplayFinalized
	}
}
