package standings

import (
	"testing"
	"time"

	"github.com/crichq/standings/internal/domain/match"
)

func completed(id, teamA, teamB, winner string, innings ...match.Innings) match.Match {
	return match.Match{
		ID:      id,
		TeamA:   teamA,
		TeamB:   teamB,
		Status:  match.StatusCompleted,
		Winner:  winner,
		Innings: innings,
	}
}

func TestComputePointsAndRanking(t *testing.T) {
	matches := []match.Match{
		completed("m1", "CSK", "MI", "CSK",
			match.Innings{Team: "CSK", Runs: 190, Overs: "20"},
			match.Innings{Team: "MI", Runs: 170, Overs: "20"},
		),
		completed("m2", "CSK", "RCB", "CSK",
			match.Innings{Team: "CSK", Runs: 200, Overs: "20"},
			match.Innings{Team: "RCB", Runs: 150, Overs: "20"},
		),
		completed("m3", "MI", "RCB", "MI",
			match.Innings{Team: "MI", Runs: 180, Overs: "20"},
			match.Innings{Team: "RCB", Runs: 175, Overs: "19.4"},
		),
	}

	rows := Compute(nil, matches)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	if rows[0].Team != "CSK" || rows[0].Points != 4 {
		t.Fatalf("rank 1 = %s with %d points, want CSK with 4", rows[0].Team, rows[0].Points)
	}
	if rows[1].Team != "MI" || rows[1].Points != 2 {
		t.Fatalf("rank 2 = %s with %d points, want MI with 2", rows[1].Team, rows[1].Points)
	}
	if rows[2].Team != "RCB" || rows[2].Points != 0 {
		t.Fatalf("rank 3 = %s with %d points, want RCB with 0", rows[2].Team, rows[2].Points)
	}
	for i, row := range rows {
		if row.Rank != i+1 {
			t.Fatalf("row %d rank = %d", i, row.Rank)
		}
	}
}

func TestComputeNetRunRate(t *testing.T) {
	matches := []match.Match{
		completed("m1", "CSK", "MI", "CSK",
			match.Innings{Team: "CSK", Runs: 200, Overs: "20"},
			match.Innings{Team: "MI", Runs: 180, Overs: "20"},
		),
	}

	rows := Compute(nil, matches)
	// 200/20 - 180/20 = 1.000 for the winner, mirrored for the loser.
	if rows[0].NetRunRate != 1.0 {
		t.Fatalf("winner NRR = %v, want 1.0", rows[0].NetRunRate)
	}
	if rows[1].NetRunRate != -1.0 {
		t.Fatalf("loser NRR = %v, want -1.0", rows[1].NetRunRate)
	}
}

func TestComputeNetRunRatePartialOvers(t *testing.T) {
	matches := []match.Match{
		completed("m1", "A", "B", "A",
			match.Innings{Team: "A", Runs: 150, Overs: "18.3"},
			match.Innings{Team: "B", Runs: 149, Overs: "20"},
		),
	}

	rows := Compute(nil, matches)
	// 150/(111/6) - 149/20 = 8.108108 - 7.45 = 0.658 rounded to 3dp.
	if rows[0].NetRunRate != 0.658 {
		t.Fatalf("NRR = %v, want 0.658", rows[0].NetRunRate)
	}
}

func TestComputeTieAndNoResult(t *testing.T) {
	tied := completed("m1", "A", "B", "")
	tied.Tie = true
	washout := completed("m2", "A", "B", "")
	washout.NoResult = true

	rows := Compute(nil, []match.Match{tied, washout})
	for _, row := range rows {
		if row.Points != 2 {
			t.Fatalf("%s points = %d, want 2 (one tie plus one no-result)", row.Team, row.Points)
		}
		if row.Tied != 1 || row.NoResult != 1 {
			t.Fatalf("%s tied=%d noResult=%d, want 1 and 1", row.Team, row.Tied, row.NoResult)
		}
	}
}

func TestComputeSkipsNonCompleted(t *testing.T) {
	live := match.Match{ID: "m1", TeamA: "A", TeamB: "B", Status: match.StatusLive}
	upcoming := match.Match{ID: "m2", TeamA: "A", TeamB: "B", Status: match.StatusUpcoming}

	rows := Compute(nil, []match.Match{live, upcoming})
	for _, row := range rows {
		if row.Played != 0 {
			t.Fatalf("%s played = %d, want 0", row.Team, row.Played)
		}
	}
}

func TestComputeRecentFormKeepsLastFive(t *testing.T) {
	var matches []match.Match
	// Six wins for A; the oldest must drop out of the window.
	for i := 0; i < 6; i++ {
		matches = append(matches, completed("m", "A", "B", "A"))
	}
	matches = append(matches, completed("m7", "A", "B", "B"))

	rows := Compute(nil, matches)
	var formA []string
	for _, row := range rows {
		if row.Team == "A" {
			formA = row.RecentForm
		}
	}
	if len(formA) != 5 {
		t.Fatalf("form length = %d, want 5", len(formA))
	}
	if formA[len(formA)-1] != FormLoss {
		t.Fatalf("most recent result = %s, want %s last", formA[len(formA)-1], FormLoss)
	}
}

func TestComputeDeclaredTeamsBackFillOnlyBeforePlay(t *testing.T) {
	rows := Compute([]string{"CSK", "MI", "RCB"}, nil)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if row.Played != 0 || row.Points != 0 || row.NetRunRate != 0 {
			t.Fatalf("row %d not zero-filled: %+v", i, row)
		}
	}
	// With everything equal, declaration order holds.
	if rows[0].Team != "CSK" || rows[1].Team != "MI" || rows[2].Team != "RCB" {
		t.Fatalf("order = %s, %s, %s", rows[0].Team, rows[1].Team, rows[2].Team)
	}

	// A live match contributes nothing, so declared teams still back-fill.
	live := match.Match{ID: "m1", TeamA: "CSK", TeamB: "MI", Status: match.StatusLive}
	rows = Compute([]string{"CSK", "MI", "RCB"}, []match.Match{live})
	if len(rows) != 3 {
		t.Fatalf("rows with only a live match = %d, want 3", len(rows))
	}
}

func TestComputeOmitsDeclaredTeamsOnceMatchesExist(t *testing.T) {
	rows := Compute([]string{"CSK", "MI", "RCB", "KKR"}, []match.Match{
		completed("m1", "CSK", "MI", "CSK"),
	})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want only the teams that played", len(rows))
	}
	for _, row := range rows {
		if row.Team == "RCB" || row.Team == "KKR" {
			t.Fatalf("idle declared team %s must not appear", row.Team)
		}
	}
}

func TestHasCompleted(t *testing.T) {
	if HasCompleted(nil) {
		t.Fatalf("empty input must report false")
	}
	live := match.Match{ID: "m1", TeamA: "A", TeamB: "B", Status: match.StatusLive}
	oneSided := match.Match{ID: "m2", TeamA: "A", Status: match.StatusCompleted}
	if HasCompleted([]match.Match{live, oneSided}) {
		t.Fatalf("live and one-sided matches must not count")
	}
	if !HasCompleted([]match.Match{live, completed("m3", "A", "B", "A")}) {
		t.Fatalf("a completed two-team match must count")
	}
}

func TestPlaceholderTable(t *testing.T) {
	now := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	table := PlaceholderTable("synthetic-ipl-2025", "ipl-2025", []string{"CSK", "MI"}, now)

	if !table.Placeholder {
		t.Fatalf("placeholder flag not set")
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if !table.ComputedAt.Equal(now) {
		t.Fatalf("computedAt = %v", table.ComputedAt)
	}
}
