package cycles

import (
	"math"
	"time"
)

// CanTransition reports whether a cycle may move between two states.
// Completed and archived are terminal; the only legal moves are
// active -> completed and active -> archived.
func CanTransition(from, to string) bool {
	if from != StatusActive {
		return false
	}
	return to == StatusCompleted || to == StatusArchived
}

// BuildStats assembles cycle statistics from raw counters. The completion
// rate is a percentage rounded to two decimals, and stays nil for a cycle
// with no requests rather than dividing by zero.
func BuildStats(cycleID string, total, completed, pending, overdue int) CycleStats {
	stats := CycleStats{
		CycleID:   cycleID,
		Total:     total,
		Completed: completed,
		Pending:   pending,
		Overdue:   overdue,
	}
	if total > 0 {
		rate := math.Round(float64(completed)/float64(total)*100*100) / 100
		stats.CompletionRate = &rate
	}
	return stats
}

// ShouldComplete is the closure predicate polled by the scheduler: a cycle is
// due for completion once its completion rate reaches 90%, or once its end
// date has passed by seven days or more.
func ShouldComplete(stats CycleStats, endDate, now time.Time) bool {
	if stats.CompletionRate != nil && *stats.CompletionRate >= completionRateThreshold {
		return true
	}
	return !endDate.IsZero() && now.Sub(endDate) >= overrunGraceDays*24*time.Hour
}
