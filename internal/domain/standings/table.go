package standings

import (
	"math"
	"sort"
	"time"

	"github.com/crichq/standings/internal/domain/match"
)

const (
	pointsForWin = 2
	pointsForTie = 1

	recentFormLimit = 5
)

const (
	FormWin  = "W"
	FormLoss = "L"
	FormTie  = "T"
)

// Row is one team's line in a standings table. NetRunRate is rounded to
// three decimal places.
type Row struct {
	Rank       int      `json:"rank"`
	Team       string   `json:"team"`
	Played     int      `json:"played"`
	Won        int      `json:"won"`
	Lost       int      `json:"lost"`
	Tied       int      `json:"tied"`
	NoResult   int      `json:"noResult"`
	Points     int      `json:"points"`
	NetRunRate float64  `json:"netRunRate"`
	RecentForm []string `json:"recentForm"`
}

// Table is a computed standings snapshot for one series.
type Table struct {
	SeriesID    string    `json:"seriesId"`
	SeriesSlug  string    `json:"seriesSlug"`
	Rows        []Row     `json:"rows"`
	ComputedAt  time.Time `json:"computedAt"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// tally accumulates one team's results while matches stream through Compute.
type tally struct {
	team string

	played   int
	won      int
	lost     int
	tied     int
	noResult int

	runsScored    int
	ballsFaced    int
	runsConceded  int
	ballsBowled   int
	recentResults []string

	firstSeen int
}

// Compute aggregates completed matches into a ranked table. The table
// carries exactly the teams that appear in a completed match; declared
// series teams only back-fill a zero table when nothing has been played
// yet, so a fresh season still renders. Matches are processed in the order
// given; callers sort them by schedule so recent form reads oldest to newest.
func Compute(declaredTeams []string, matches []match.Match) []Row {
	tallies := make(map[string]*tally)
	order := 0

	ensure := func(team string) *tally {
		if team == "" {
			return nil
		}
		t, ok := tallies[team]
		if !ok {
			t = &tally{team: team, firstSeen: order}
			order++
			tallies[team] = t
		}
		return t
	}

	if !HasCompleted(matches) {
		for _, team := range declaredTeams {
			ensure(team)
		}
	}

	for _, m := range matches {
		if !m.IsCompleted() || !m.HasBothTeams() {
			continue
		}

		a := ensure(m.TeamA)
		b := ensure(m.TeamB)
		a.played++
		b.played++

		switch {
		case m.NoResult:
			a.noResult++
			b.noResult++
			a.recordForm(FormTie)
			b.recordForm(FormTie)
		case m.Tie || m.Winner == "":
			a.tied++
			b.tied++
			a.recordForm(FormTie)
			b.recordForm(FormTie)
		case m.Winner == m.TeamA:
			a.won++
			b.lost++
			a.recordForm(FormWin)
			b.recordForm(FormLoss)
		case m.Winner == m.TeamB:
			b.won++
			a.lost++
			b.recordForm(FormWin)
			a.recordForm(FormLoss)
		default:
			a.tied++
			b.tied++
			a.recordForm(FormTie)
			b.recordForm(FormTie)
		}

		// No-result matches carry no usable innings figures.
		if m.NoResult {
			continue
		}
		for _, inn := range m.Innings {
			balls := match.OversToBalls(inn.Overs)
			switch inn.Team {
			case m.TeamA:
				a.runsScored += inn.Runs
				a.ballsFaced += balls
				b.runsConceded += inn.Runs
				b.ballsBowled += balls
			case m.TeamB:
				b.runsScored += inn.Runs
				b.ballsFaced += balls
				a.runsConceded += inn.Runs
				a.ballsBowled += balls
			}
		}
	}

	rows := make([]Row, 0, len(tallies))
	for _, t := range tallies {
		rows = append(rows, Row{
			Team:       t.team,
			Played:     t.played,
			Won:        t.won,
			Lost:       t.lost,
			Tied:       t.tied,
			NoResult:   t.noResult,
			Points:     t.won*pointsForWin + (t.tied+t.noResult)*pointsForTie,
			NetRunRate: t.netRunRate(),
			RecentForm: t.formSnapshot(),
		})
	}

	// Stable so that equal points and equal rate preserve insertion order.
	firstSeen := func(team string) int { return tallies[team].firstSeen }
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].NetRunRate != rows[j].NetRunRate {
			return rows[i].NetRunRate > rows[j].NetRunRate
		}
		return firstSeen(rows[i].Team) < firstSeen(rows[j].Team)
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// HasCompleted reports whether any match would contribute to a computed
// table.
func HasCompleted(matches []match.Match) bool {
	for _, m := range matches {
		if m.IsCompleted() && m.HasBothTeams() {
			return true
		}
	}
	return false
}

// PlaceholderTable builds a zero-filled table from declared teams, used when
// no match data is available at all.
func PlaceholderTable(seriesID, seriesSlug string, teams []string, now time.Time) Table {
	return Table{
		SeriesID:    seriesID,
		SeriesSlug:  seriesSlug,
		Rows:        Compute(teams, nil),
		ComputedAt:  now,
		Placeholder: true,
	}
}

func (t *tally) recordForm(result string) {
	t.recentResults = append(t.recentResults, result)
}

// formSnapshot keeps the most recent results, oldest first.
func (t *tally) formSnapshot() []string {
	if len(t.recentResults) <= recentFormLimit {
		return append([]string(nil), t.recentResults...)
	}
	tail := t.recentResults[len(t.recentResults)-recentFormLimit:]
	return append([]string(nil), tail...)
}

// netRunRate is runs per over scored minus runs per over conceded, with
// overs derived from ball counts. A side with no balls on either leg of a
// term contributes zero for that term.
func (t *tally) netRunRate() float64 {
	rate := 0.0
	if t.ballsFaced > 0 {
		rate += float64(t.runsScored) / (float64(t.ballsFaced) / 6)
	}
	if t.ballsBowled > 0 {
		rate -= float64(t.runsConceded) / (float64(t.ballsBowled) / 6)
	}
	return math.Round(rate*1000) / 1000
}
