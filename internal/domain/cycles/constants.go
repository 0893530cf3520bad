package cycles

const (
	TypePeer   = "peer"
	Type360    = "360"
	TypePulse  = "pulse"
	TypeCustom = "custom"

	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

var KnownTypes = []string{TypePeer, Type360, TypePulse, TypeCustom}

// Completion thresholds used by the closure predicate.
const (
	completionRateThreshold = 90.0
	overrunGraceDays        = 7
)
