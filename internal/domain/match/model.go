package match

import (
	"strconv"
	"strings"
	"time"
)

const (
	StatusUpcoming  = "UPCOMING"
	StatusLive      = "LIVE"
	StatusCompleted = "COMPLETED"
)

// Innings is one team's batting summary for a match. Overs keeps the cricket
// notation from upstream ("19.4" is nineteen overs and four balls).
type Innings struct {
	Team    string `json:"team"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Overs   string `json:"overs"`
}

// Match is one normalized fixture. Winner is empty for ties, no-results, and
// anything not yet completed.
type Match struct {
	ID          string    `json:"id"`
	SeriesID    string    `json:"seriesId"`
	TeamA       string    `json:"teamA"`
	TeamB       string    `json:"teamB"`
	Venue       string    `json:"venue,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      string    `json:"lifecycleStatus"`
	Winner      string    `json:"winner,omitempty"`
	Tie         bool      `json:"tie,omitempty"`
	NoResult    bool      `json:"noResult,omitempty"`
	Innings     []Innings `json:"innings,omitempty"`
}

// IsCompleted reports whether the match can contribute to a standings table.
func (m Match) IsCompleted() bool {
	return m.Status == StatusCompleted
}

// HasBothTeams guards against malformed records reaching the aggregator.
func (m Match) HasBothTeams() bool {
	return strings.TrimSpace(m.TeamA) != "" && strings.TrimSpace(m.TeamB) != ""
}

// ClassifyStatus buckets free-text upstream status into a lifecycle phase.
// Keyword matching over unstructured provider text, tolerant of casing.
func ClassifyStatus(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(value, "live"), strings.Contains(value, "ongoing"):
		return StatusLive
	case strings.Contains(value, "won"),
		strings.Contains(value, "drawn"),
		strings.Contains(value, "tied"),
		strings.Contains(value, "no result"),
		strings.Contains(value, "abandon"):
		return StatusCompleted
	default:
		return StatusUpcoming
	}
}

// ParseScore splits a "runs/wickets" score string. Malformed or absent
// scores parse to zeros rather than failing the match.
func ParseScore(raw string) (runs, wickets int) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, 0
	}

	runsPart := value
	wicketsPart := ""
	if idx := strings.Index(value, "/"); idx >= 0 {
		runsPart = value[:idx]
		wicketsPart = value[idx+1:]
	}

	runs = leadingInt(runsPart)
	wickets = leadingInt(wicketsPart)
	return runs, wickets
}

// OversToBalls converts cricket overs notation to a ball count. The digit
// after the dot is balls within the over, not a decimal fraction.
func OversToBalls(raw string) int {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0
	}

	wholePart := value
	ballsPart := ""
	if idx := strings.Index(value, "."); idx >= 0 {
		wholePart = value[:idx]
		ballsPart = value[idx+1:]
	}

	overs := leadingInt(wholePart)
	balls := leadingInt(ballsPart)
	if balls > 5 {
		balls = 5
	}
	return overs*6 + balls
}

// OversFloat converts overs notation to true overs for rate math
// ("19.4" becomes 19 + 4/6).
func OversFloat(raw string) float64 {
	return float64(OversToBalls(raw)) / 6
}

func leadingInt(raw string) int {
	value := strings.TrimSpace(raw)
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	parsed, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return parsed
}
