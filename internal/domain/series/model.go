package series

import (
	"strings"
	"time"
)

const (
	StatusUpcoming  = "UPCOMING"
	StatusOngoing   = "ONGOING"
	StatusCompleted = "COMPLETED"
)

const (
	FormatT20  = "T20"
	FormatODI  = "ODI"
	FormatTest = "Test"
)

// DefaultEndDateWindow pads a series whose end date is missing or earlier
// than its start date.
const DefaultEndDateWindow = 30 * 24 * time.Hour

// FormatCount is the number of fixtures a series schedules in one format.
type FormatCount struct {
	Format  string `json:"format"`
	Matches int    `json:"matches"`
}

// Series is the canonical identity of one resolved series. Immutable once
// resolved for the lifetime of a request; safe to cache by slug.
type Series struct {
	ID        string        `json:"id"`
	Slug      string        `json:"slug"`
	Name      string        `json:"name"`
	StartDate time.Time     `json:"startDate"`
	EndDate   time.Time     `json:"endDate"`
	Formats   []FormatCount `json:"formats,omitempty"`
	Teams     []string      `json:"teams,omitempty"`
}

// Status derives the series lifecycle from its date window relative to now.
func (s Series) Status(now time.Time) string {
	switch {
	case now.Before(s.StartDate):
		return StatusUpcoming
	case now.After(s.EndDate):
		return StatusCompleted
	default:
		return StatusOngoing
	}
}

// RepairDates enforces the date invariants every resolution path must hold:
// a missing start date becomes now, a missing end date (or one earlier than
// the start) becomes start plus the default window. Runs unconditionally on
// every resolved record, not only synthetic ones.
func (s *Series) RepairDates(now time.Time) {
	if s.StartDate.IsZero() {
		s.StartDate = now
	}
	if s.EndDate.IsZero() || s.EndDate.Before(s.StartDate) {
		s.EndDate = s.StartDate.Add(DefaultEndDateWindow)
	}
}

// MatchesSlug reports whether a candidate series answers to the given slug,
// either by exact canonical-slug equality or by the candidate's name
// containing the slug text with hyphens read as spaces.
func (s Series) MatchesSlug(slug string) bool {
	if slug == "" {
		return false
	}
	if Slugify(s.Name) == slug {
		return true
	}
	needle := strings.ReplaceAll(slug, "-", " ")
	return strings.Contains(strings.ToLower(s.Name), needle)
}
