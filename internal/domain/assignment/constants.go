package assignment

const (
	RequestTypePeer    = "peer"
	RequestTypeManager = "manager"
	RequestTypeUpward  = "upward"
	RequestTypeSelf    = "self"

	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue"
)

const (
	// DefaultPeersPerEmployee applies when neither the caller nor the cycle
	// config sets a count.
	DefaultPeersPerEmployee = 2

	// candidateBuffer is how many extra ranked peers are fetched beyond the
	// requested count, so recency filtering rarely forces a short list.
	candidateBuffer = 10

	// recencyExclusionDays excludes providers who already gave this requester
	// feedback within the window, independent of cycle boundaries.
	recencyExclusionDays = 30

	assignConcurrency = 8
)

// statusTransitions lists the legal request status moves. Completed is
// terminal; overdue requests may still be completed late.
var statusTransitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusOverdue},
	StatusInProgress: {StatusCompleted, StatusOverdue},
	StatusOverdue:    {StatusInProgress, StatusCompleted},
}

func statusTransitionAllowed(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
