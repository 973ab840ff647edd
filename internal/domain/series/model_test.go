package series

import (
	"testing"
	"time"
)

func TestRepairDates(t *testing.T) {
	now := time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)

	t.Run("missing start and end", func(t *testing.T) {
		s := Series{}
		s.RepairDates(now)
		if !s.StartDate.Equal(now) {
			t.Fatalf("start = %v, want %v", s.StartDate, now)
		}
		if !s.EndDate.Equal(now.Add(DefaultEndDateWindow)) {
			t.Fatalf("end = %v, want start+window", s.EndDate)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		start := time.Date(2025, time.March, 22, 0, 0, 0, 0, time.UTC)
		s := Series{StartDate: start, EndDate: start.AddDate(0, 0, -10)}
		s.RepairDates(now)
		if !s.EndDate.Equal(start.Add(DefaultEndDateWindow)) {
			t.Fatalf("end = %v, want start+window", s.EndDate)
		}
	})

	t.Run("valid window untouched", func(t *testing.T) {
		start := time.Date(2025, time.March, 22, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, time.May, 26, 0, 0, 0, 0, time.UTC)
		s := Series{StartDate: start, EndDate: end}
		s.RepairDates(now)
		if !s.StartDate.Equal(start) || !s.EndDate.Equal(end) {
			t.Fatalf("dates changed: %v .. %v", s.StartDate, s.EndDate)
		}
	})
}

func TestSeriesStatus(t *testing.T) {
	start := time.Date(2025, time.March, 22, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.May, 26, 0, 0, 0, 0, time.UTC)
	s := Series{StartDate: start, EndDate: end}

	if got := s.Status(start.AddDate(0, 0, -1)); got != StatusUpcoming {
		t.Fatalf("before start = %s, want %s", got, StatusUpcoming)
	}
	if got := s.Status(start.AddDate(0, 0, 10)); got != StatusOngoing {
		t.Fatalf("inside window = %s, want %s", got, StatusOngoing)
	}
	if got := s.Status(end.AddDate(0, 0, 1)); got != StatusCompleted {
		t.Fatalf("after end = %s, want %s", got, StatusCompleted)
	}
}

func TestMatchesSlug(t *testing.T) {
	s := Series{Name: "Indian Premier League 2025"}

	if !s.MatchesSlug("indian-premier-league-2025") {
		t.Fatalf("exact slug match failed")
	}
	if !s.MatchesSlug("premier-league") {
		t.Fatalf("substring match with hyphens as spaces failed")
	}
	if s.MatchesSlug("big-bash") {
		t.Fatalf("unrelated slug must not match")
	}
	if s.MatchesSlug("") {
		t.Fatalf("empty slug must not match")
	}
}
