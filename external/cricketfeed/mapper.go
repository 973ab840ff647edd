package cricketfeed

import (
	"strconv"
	"strings"
	"time"

	"github.com/crichq/standings/internal/domain/match"
	"github.com/crichq/standings/internal/domain/series"
)

// mapSeries converts one loosely-typed feed series object into a domain
// record. Missing dates stay zero; the resolution layer repairs them.
func mapSeries(item map[string]any) series.Series {
	record := series.Series{
		ID:        getStringAny(item, "id", "objectId", "seriesId"),
		Name:      getStringAny(item, "name", "title", "seriesName"),
		StartDate: parseFeedDate(getStringAny(item, "startDate", "startDt", "start_date")),
		EndDate:   parseFeedDate(getStringAny(item, "endDate", "endDt", "end_date")),
	}
	record.Slug = series.Slugify(record.Name)

	for _, raw := range getSlice(item, "teams", "squads") {
		switch typed := raw.(type) {
		case string:
			if name := strings.TrimSpace(typed); name != "" {
				record.Teams = append(record.Teams, name)
			}
		case map[string]any:
			if name := getStringAny(typed, "name", "teamName", "title"); name != "" {
				record.Teams = append(record.Teams, name)
			}
		}
	}

	for _, raw := range getSlice(item, "matchTypes", "formats") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		format := normalizeFormat(getStringAny(entry, "matchType", "format", "type"))
		if format == "" {
			continue
		}
		record.Formats = append(record.Formats, series.FormatCount{
			Format:  format,
			Matches: getIntAny(entry, "matches", "count", "total"),
		})
	}

	return record
}

// mapMatch normalizes one feed match object. Team names resolve in
// precedence order: the teams array, then teamInfo, then splitting the
// match title on " vs " or " v ". Records without two teams are dropped.
func mapMatch(item map[string]any) (match.Match, bool) {
	record := match.Match{
		ID:          getStringAny(item, "id", "objectId", "matchId"),
		Venue:       getStringAny(item, "venue", "ground"),
		ScheduledAt: parseFeedDate(getStringAny(item, "dateTimeGMT", "date", "startDate")),
	}

	statusText := getStringAny(item, "status", "matchStatus")
	record.Status = match.ClassifyStatus(statusText)

	teamA, teamB := resolveTeams(item)
	record.TeamA = teamA
	record.TeamB = teamB
	if !record.HasBothTeams() {
		return match.Match{}, false
	}

	record.Innings = resolveInnings(item, teamA, teamB)

	if record.Status == match.StatusCompleted {
		classifyResult(&record, statusText)
	}

	return record, true
}

func resolveTeams(item map[string]any) (string, string) {
	names := make([]string, 0, 2)
	for _, raw := range getSlice(item, "teams") {
		switch typed := raw.(type) {
		case string:
			if trimmed := strings.TrimSpace(typed); trimmed != "" {
				names = append(names, trimmed)
			}
		case map[string]any:
			if name := getStringAny(typed, "name", "teamName", "title"); name != "" {
				names = append(names, name)
			}
		}
	}

	if len(names) < 2 {
		names = names[:0]
		for _, raw := range getSlice(item, "teamInfo") {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if name := getStringAny(entry, "name", "teamName"); name != "" {
				names = append(names, name)
			}
		}
	}

	if len(names) < 2 {
		names = splitVersusTitle(getStringAny(item, "name", "title"))
	}

	if len(names) < 2 {
		return "", ""
	}
	return names[0], names[1]
}

func splitVersusTitle(title string) []string {
	for _, sep := range []string{" vs ", " v "} {
		if idx := strings.Index(strings.ToLower(title), sep); idx >= 0 {
			left := strings.TrimSpace(title[:idx])
			right := strings.TrimSpace(title[idx+len(sep):])
			// Trailing match descriptors ("India vs Australia, 3rd T20I").
			if comma := strings.Index(right, ","); comma >= 0 {
				right = strings.TrimSpace(right[:comma])
			}
			if left != "" && right != "" {
				return []string{left, right}
			}
		}
	}
	return nil
}

func resolveInnings(item map[string]any, teamA, teamB string) []match.Innings {
	var out []match.Innings
	for _, raw := range getSlice(item, "score", "innings") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		team := matchInningsTeam(getStringAny(entry, "inning", "team", "battingTeam"), teamA, teamB)
		if team == "" {
			continue
		}

		inn := match.Innings{
			Team:  team,
			Overs: getStringAny(entry, "o", "overs"),
		}
		if runs := getIntAny(entry, "r", "runs"); runs > 0 {
			inn.Runs = runs
			inn.Wickets = getIntAny(entry, "w", "wickets")
		} else {
			inn.Runs, inn.Wickets = match.ParseScore(getStringAny(entry, "score", "scoreText"))
		}
		out = append(out, inn)
	}
	return out
}

// matchInningsTeam maps free-text inning labels ("Chennai Super Kings
// Inning 1") back to one of the two match teams.
func matchInningsTeam(label, teamA, teamB string) string {
	candidate := strings.ToLower(strings.TrimSpace(label))
	if candidate == "" {
		return ""
	}
	switch {
	case strings.Contains(candidate, strings.ToLower(teamA)):
		return teamA
	case strings.Contains(candidate, strings.ToLower(teamB)):
		return teamB
	default:
		return ""
	}
}

func classifyResult(record *match.Match, statusText string) {
	lowered := strings.ToLower(statusText)
	switch {
	case strings.Contains(lowered, "no result"), strings.Contains(lowered, "abandon"):
		record.NoResult = true
	case strings.Contains(lowered, "tied"), strings.Contains(lowered, "drawn"):
		record.Tie = true
	case strings.Contains(lowered, "won"):
		switch {
		case strings.Contains(lowered, strings.ToLower(record.TeamA)):
			record.Winner = record.TeamA
		case strings.Contains(lowered, strings.ToLower(record.TeamB)):
			record.Winner = record.TeamB
		default:
			record.Tie = true
		}
	}
}

func normalizeFormat(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "t20", "t20i":
		return series.FormatT20
	case "odi":
		return series.FormatODI
	case "test":
		return series.FormatTest
	case "":
		return ""
	default:
		return strings.TrimSpace(raw)
	}
}

func parseFeedDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return ""
	}
	value, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func getStringAny(src map[string]any, keys ...string) string {
	for _, key := range keys {
		if value := getString(src, key); value != "" {
			return value
		}
	}
	return ""
}

func getInt(src map[string]any, key string) int {
	if src == nil {
		return 0
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return 0
	}
	switch typed := raw.(type) {
	case float64:
		return int(typed)
	case float32:
		return int(typed)
	case int:
		return typed
	case int64:
		return int(typed)
	case string:
		v, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

func getIntAny(src map[string]any, keys ...string) int {
	for _, key := range keys {
		if value := getInt(src, key); value != 0 {
			return value
		}
	}
	return 0
}

func getSlice(src map[string]any, keys ...string) []any {
	if src == nil {
		return nil
	}
	for _, key := range keys {
		if raw, ok := src[key].([]any); ok && len(raw) > 0 {
			return raw
		}
	}
	return nil
}
