package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/crichq/standings/internal/domain/series"
	"github.com/crichq/standings/internal/domain/standings"
	"github.com/crichq/standings/internal/platform/logging"
	"github.com/crichq/standings/internal/usecase"
)

type Handler struct {
	seriesService    *usecase.SeriesService
	standingsService *usecase.StandingsService
	refreshService   *usecase.RefreshService
	logger           *logging.Logger
	validator        *validator.Validate
	now              func() time.Time
}

func NewHandler(
	seriesService *usecase.SeriesService,
	standingsService *usecase.StandingsService,
	refreshService *usecase.RefreshService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		seriesService:    seriesService,
		standingsService: standingsService,
		refreshService:   refreshService,
		logger:           logger,
		validator:        validator.New(),
		now:              time.Now,
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type seriesDTO struct {
	ID        string               `json:"id"`
	Slug      string               `json:"slug"`
	Name      string               `json:"name"`
	Status    string               `json:"status"`
	StartDate time.Time            `json:"startDate"`
	EndDate   time.Time            `json:"endDate"`
	Formats   []series.FormatCount `json:"formats,omitempty"`
	Teams     []string             `json:"teams,omitempty"`
}

func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeries")
	defer span.End()

	ref := r.PathValue("seriesRef")
	force := strings.EqualFold(r.URL.Query().Get("refresh"), "true")
	record, err := h.seriesService.Resolve(ctx, ref, force)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seriesDTO{
		ID:        record.ID,
		Slug:      record.Slug,
		Name:      record.Name,
		Status:    record.Status(h.now()),
		StartDate: record.StartDate,
		EndDate:   record.EndDate,
		Formats:   record.Formats,
		Teams:     record.Teams,
	})
}

type standingsDTO struct {
	SeriesID    string          `json:"seriesId"`
	SeriesSlug  string          `json:"seriesSlug"`
	Rows        []standings.Row `json:"rows"`
	ComputedAt  time.Time       `json:"computedAt"`
	Placeholder bool            `json:"placeholder,omitempty"`
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	ref := r.PathValue("seriesRef")
	force := strings.EqualFold(r.URL.Query().Get("refresh"), "true")

	table, err := h.standingsService.GetOrRefresh(ctx, ref, force)
	if err != nil {
		h.logger.ErrorContext(ctx, "get standings failed", "series_ref", ref, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsDTO{
		SeriesID:    table.SeriesID,
		SeriesSlug:  table.SeriesSlug,
		Rows:        table.Rows,
		ComputedAt:  table.ComputedAt,
		Placeholder: table.Placeholder,
	})
}

type refreshRequest struct {
	SeriesRef string `json:"seriesRef" validate:"required"`
}

// RunRefreshJob handles recompute jobs delivered by the refresh queue.
func (h *Handler) RunRefreshJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshJob")
	defer span.End()

	var payload refreshRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.standingsService.Recompute(ctx, payload.SeriesRef)
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh job failed", "series_ref", payload.SeriesRef, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsDTO{
		SeriesID:    table.SeriesID,
		SeriesSlug:  table.SeriesSlug,
		Rows:        table.Rows,
		ComputedAt:  table.ComputedAt,
		Placeholder: table.Placeholder,
	})
}

type bulkRefreshRequest struct {
	SeriesRefs []string `json:"seriesRefs" validate:"required,min=1,dive,required"`
	MaxWorkers int      `json:"maxWorkers" validate:"omitempty,min=1,max=32"`
}

func (h *Handler) RunBulkRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBulkRefresh")
	defer span.End()

	var payload bulkRefreshRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.refreshService.RefreshAll(ctx, usecase.RefreshInput{
		SeriesRefs: payload.SeriesRefs,
		MaxWorkers: payload.MaxWorkers,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "bulk refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
