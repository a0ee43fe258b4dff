package reservation

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusInProgress Status = "in_progress"
	StatusCancelled  Status = "cancelled"
	StatusFinalized  Status = "finalized"
)

// allowedTransitions is the guard table of the state machine. Cancellation
// edges from pending/approved/in_progress carry the extra notice-deadline
// guard enforced in Transition.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusFinalized, StatusCancelled},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusInProgress, StatusCancelled, StatusFinalized:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusFinalized:
		return true
	default:
		return false
	}
}

// CountsTowardQuota reports whether a reservation in this state occupies the
// household's day/week/month caps.
func (s Status) CountsTowardQuota() bool {
	return s != StatusRejected && s != StatusCancelled
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Label is the human-readable form used by the export surface.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusInProgress:
		return "In Progress"
	case StatusCancelled:
		return "Cancelled"
	case StatusFinalized:
		return "Finalized"
	default:
		return string(s)
	}
}
