package ranking

import (
	"math"
	"testing"
	"time"

	"peerpulse/internal/domain/interactions"
)

func TestBuildRankingsWeightsAndOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []interactions.Interaction{
		{EmployeeID: "a", PeerID: "b", Type: interactions.TypeChat, Count: 10, LastInteractionAt: now},
		{EmployeeID: "a", PeerID: "c", Type: interactions.TypeMeeting, Count: 2, LastInteractionAt: now},
	}

	rankings := BuildRankings("a", rows, now)
	if len(rankings) != 2 {
		t.Fatalf("expected 2 rankings, got %d", len(rankings))
	}

	// chat 10*1 = 10 beats meeting 2*3 = 6.
	if rankings[0].PeerID != "b" || rankings[1].PeerID != "c" {
		t.Fatalf("unexpected order: %s, %s", rankings[0].PeerID, rankings[1].PeerID)
	}
	if rankings[0].Score != 10 {
		t.Fatalf("expected score 10 for b, got %v", rankings[0].Score)
	}
	if rankings[1].Score != 6 {
		t.Fatalf("expected score 6 for c, got %v", rankings[1].Score)
	}
	if rankings[0].RankPosition != 1 || rankings[1].RankPosition != 2 {
		t.Fatalf("unexpected positions: %d, %d", rankings[0].RankPosition, rankings[1].RankPosition)
	}
}

func TestBuildRankingsMinutesContribute(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []interactions.Interaction{
		{EmployeeID: "a", PeerID: "b", Type: interactions.TypeMeeting, Count: 1, TotalMinutes: 60, LastInteractionAt: now},
	}

	rankings := BuildRankings("a", rows, now)
	// 1*3 + 60/10 = 9.
	if rankings[0].Score != 9 {
		t.Fatalf("expected score 9, got %v", rankings[0].Score)
	}
}

func TestBuildRankingsUnknownTypeDefaultsToWeightOne(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []interactions.Interaction{
		{EmployeeID: "a", PeerID: "b", Type: "whiteboard", Count: 4, LastInteractionAt: now},
	}

	rankings := BuildRankings("a", rows, now)
	if rankings[0].Score != 4 {
		t.Fatalf("expected score 4, got %v", rankings[0].Score)
	}
}

func TestRecencyMultiplierDecay(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		daysAgo int
		want    float64
	}{
		{0, 1.0},
		{45, 0.5},
		{90, 0.5},
		{365, 0.5},
	}
	for _, tc := range cases {
		got := recencyMultiplier(now.AddDate(0, 0, -tc.daysAgo), now)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("daysAgo=%d: expected %v, got %v", tc.daysAgo, tc.want, got)
		}
	}

	// A future timestamp is clamped, never amplified.
	if got := recencyMultiplier(now.Add(24*time.Hour), now); got != 1.0 {
		t.Fatalf("future timestamp: expected 1.0, got %v", got)
	}
}

func TestBuildRankingsRecencyUsesMostRecentOfAnyType(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []interactions.Interaction{
		{EmployeeID: "a", PeerID: "b", Type: interactions.TypeChat, Count: 10, LastInteractionAt: now.AddDate(0, 0, -180)},
		{EmployeeID: "a", PeerID: "b", Type: interactions.TypeTask, Count: 2, LastInteractionAt: now},
	}

	rankings := BuildRankings("a", rows, now)
	// base = 10*1 + 2*5 = 20, multiplier 1.0 because the task row is fresh.
	if rankings[0].Score != 20 {
		t.Fatalf("expected score 20, got %v", rankings[0].Score)
	}
}

func TestBuildRankingsTieBreakByPeerID(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []interactions.Interaction{
		{EmployeeID: "a", PeerID: "z", Type: interactions.TypeChat, Count: 5, LastInteractionAt: now},
		{EmployeeID: "a", PeerID: "b", Type: interactions.TypeChat, Count: 5, LastInteractionAt: now},
	}

	rankings := BuildRankings("a", rows, now)
	if rankings[0].PeerID != "b" || rankings[1].PeerID != "z" {
		t.Fatalf("tie break wrong: %s, %s", rankings[0].PeerID, rankings[1].PeerID)
	}
	if rankings[0].RankPosition != 1 || rankings[1].RankPosition != 2 {
		t.Fatalf("tied peers must still get dense positions: %d, %d", rankings[0].RankPosition, rankings[1].RankPosition)
	}
}

func TestBuildRankingsSkipsSelfAndEmptyInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if got := BuildRankings("a", nil, now); len(got) != 0 {
		t.Fatalf("expected empty rankings, got %d", len(got))
	}

	rows := []interactions.Interaction{
		{EmployeeID: "a", PeerID: "a", Type: interactions.TypeChat, Count: 100, LastInteractionAt: now},
	}
	if got := BuildRankings("a", rows, now); len(got) != 0 {
		t.Fatalf("self rows must be ignored, got %d rankings", len(got))
	}
}

func TestBuildRankingsDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []interactions.Interaction{
		{EmployeeID: "a", PeerID: "b", Type: interactions.TypeChat, Count: 3, LastInteractionAt: now.AddDate(0, 0, -10)},
		{EmployeeID: "a", PeerID: "c", Type: interactions.TypeTask, Count: 1, LastInteractionAt: now.AddDate(0, 0, -30)},
		{EmployeeID: "a", PeerID: "d", Type: interactions.TypeFile, Count: 7, LastInteractionAt: now.AddDate(0, 0, -5)},
	}

	first := BuildRankings("a", rows, now)
	for i := 0; i < 10; i++ {
		again := BuildRankings("a", rows, now)
		if len(again) != len(first) {
			t.Fatalf("run %d: length changed", i)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: row %d differs: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}
