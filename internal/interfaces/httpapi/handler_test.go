package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/crichq/standings/internal/domain/match"
	"github.com/crichq/standings/internal/domain/series"
	"github.com/crichq/standings/internal/infrastructure/repository/memory"
	"github.com/crichq/standings/internal/platform/logging"
	"github.com/crichq/standings/internal/usecase"
)

type fakeProvider struct {
	listing  []series.Series
	matches  map[string][]match.Match
	matchErr error
}

func (p *fakeProvider) FetchSeriesByID(_ context.Context, _ string) (series.Series, bool, error) {
	return series.Series{}, false, nil
}

func (p *fakeProvider) ListSeries(_ context.Context) ([]series.Series, error) {
	return p.listing, nil
}

func (p *fakeProvider) ListMatches(_ context.Context, seriesID string) ([]match.Match, error) {
	if p.matchErr != nil {
		return nil, p.matchErr
	}
	return p.matches[seriesID], nil
}

func newTestRouter(provider *fakeProvider) http.Handler {
	logger := logging.NewNop()
	seriesSvc := usecase.NewSeriesService(memory.NewSeriesRepository(), provider, logger)
	standingsSvc := usecase.NewStandingsService(seriesSvc, provider, memory.NewStandingsRepository(), nil, logger)
	refreshSvc := usecase.NewRefreshService(standingsSvc, logger)
	handler := NewHandler(seriesSvc, standingsSvc, refreshSvc, logger)
	return NewRouter(handler, logger, []string{"*"}, "job-token")
}

func decodeEnvelope(t *testing.T, body string) googleResponseEnvelope {
	t.Helper()
	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProvider{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec.Body.String())
	if envelope.APIVersion != "2.0" {
		t.Fatalf("apiVersion = %q", envelope.APIVersion)
	}
	if envelope.Error != nil {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestGetSeries_ResolvesAnyReference(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProvider{
		listing: []series.Series{{ID: "s-1", Name: "Indian Premier League 2025"}},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/series/indian-premier-league-2025", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":"s-1"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestGetStandings_ComputesFromMatches(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProvider{
		listing: []series.Series{{ID: "s-1", Name: "IPL 2025"}},
		matches: map[string][]match.Match{
			"s-1": {
				{ID: "m1", TeamA: "CSK", TeamB: "MI", Status: match.StatusCompleted, Winner: "CSK"},
			},
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/series/ipl-2025/standings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"seriesSlug":"ipl-2025"`) {
		t.Fatalf("body = %s", body)
	}
	if !strings.Contains(body, `"team":"CSK"`) || !strings.Contains(body, `"points":2`) {
		t.Fatalf("body = %s", body)
	}
}

func TestGetStandings_EmptyRefIsBadRequest(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProvider{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/series/%20/standings", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec.Body.String())
	if envelope.Error == nil || envelope.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("error = %+v", envelope.Error)
	}
}

func TestRunRefreshJob_RequiresToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProvider{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/refresh", strings.NewReader(`{"seriesRef":"ipl-2025"}`))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/internal/refresh", strings.NewReader(`{"seriesRef":"ipl-2025"}`))
	req.Header.Set("X-Internal-Job-Token", "wrong")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d", rec.Code)
	}
}

func TestRunRefreshJob_RecomputesWithValidToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProvider{
		listing: []series.Series{{ID: "s-1", Name: "IPL 2025"}},
		matches: map[string][]match.Match{"s-1": {}},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/refresh", strings.NewReader(`{"seriesRef":"ipl-2025"}`))
	req.Header.Set("X-Internal-Job-Token", "job-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRunRefreshJob_RejectsMissingSeriesRef(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProvider{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/refresh", strings.NewReader(`{}`))
	req.Header.Set("X-Internal-Job-Token", "job-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRunBulkRefresh(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeProvider{
		listing: []series.Series{{ID: "s-1", Name: "IPL 2025"}},
		matches: map[string][]match.Match{"s-1": {}},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/refresh/bulk", strings.NewReader(`{"seriesRefs":["ipl-2025"]}`))
	req.Header.Set("X-Internal-Job-Token", "job-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success_count":1`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
