package ranking

import (
	"sort"
	"time"

	"peerpulse/internal/domain/interactions"
)

const (
	minutesDivisor    = 10.0
	recencyWindowDays = 90.0
	recencyFloor      = 0.5
)

var typeWeights = map[string]float64{
	interactions.TypeChat:    1,
	interactions.TypeMeeting: 3,
	interactions.TypeTask:    5,
	interactions.TypeFile:    2,
}

func typeWeight(interactionType string) float64 {
	if w, ok := typeWeights[interactionType]; ok {
		return w
	}
	return 1
}

// recencyMultiplier decays linearly from 1.0 (fresh) to a floor of 0.5 at 90
// days and beyond. Stale collaborators are demoted, never discarded.
func recencyMultiplier(lastAt, now time.Time) float64 {
	days := now.Sub(lastAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	multiplier := 1 - days/recencyWindowDays
	if multiplier < recencyFloor {
		return recencyFloor
	}
	return multiplier
}

// BuildRankings converts one employee's ledger rows into a dense, fully
// ordered ranking set. The per-peer score sums count*weight + minutes/10
// across types, then applies a single recency multiplier derived from the
// most recent interaction of any type with that peer. Ordering is score
// descending with peer id ascending as the tie break, so repeated runs over
// the same ledger produce identical output.
func BuildRankings(employeeID string, rows []interactions.Interaction, now time.Time) []PeerRanking {
	type peerAccum struct {
		base   float64
		lastAt time.Time
	}
	peers := make(map[string]*peerAccum)
	for _, row := range rows {
		if row.PeerID == employeeID {
			continue
		}
		acc, ok := peers[row.PeerID]
		if !ok {
			acc = &peerAccum{}
			peers[row.PeerID] = acc
		}
		acc.base += float64(row.Count)*typeWeight(row.Type) + float64(row.TotalMinutes)/minutesDivisor
		if row.LastInteractionAt.After(acc.lastAt) {
			acc.lastAt = row.LastInteractionAt
		}
	}

	rankings := make([]PeerRanking, 0, len(peers))
	for peerID, acc := range peers {
		rankings = append(rankings, PeerRanking{
			EmployeeID:   employeeID,
			PeerID:       peerID,
			Score:        acc.base * recencyMultiplier(acc.lastAt, now),
			CalculatedAt: now,
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Score != rankings[j].Score {
			return rankings[i].Score > rankings[j].Score
		}
		return rankings[i].PeerID < rankings[j].PeerID
	})
	for i := range rankings {
		rankings[i].RankPosition = i + 1
	}
	return rankings
}
