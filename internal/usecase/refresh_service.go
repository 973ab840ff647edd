package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/crichq/standings/internal/platform/logging"
)

const (
	refreshStatusSuccess = "success"
	refreshStatusFailed  = "failed"

	defaultRefreshWorkers = 4
	maxRefreshWorkers     = 32
)

type RefreshInput struct {
	SeriesRefs []string
	MaxWorkers int
}

type RefreshResult struct {
	TaskCount    int                 `json:"task_count"`
	SuccessCount int                 `json:"success_count"`
	FailedCount  int                 `json:"failed_count"`
	WorkerCount  int                 `json:"worker_count"`
	Tasks        []RefreshTaskResult `json:"tasks"`
}

type RefreshTaskResult struct {
	SeriesRef  string `json:"series_ref"`
	Status     string `json:"status"`
	Rows       int    `json:"rows"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// RefreshService recomputes standings for many series at once over a
// bounded worker pool.
type RefreshService struct {
	standingsSvc *StandingsService
	logger       *logging.Logger
}

func NewRefreshService(standingsSvc *StandingsService, logger *logging.Logger) *RefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RefreshService{
		standingsSvc: standingsSvc,
		logger:       logger,
	}
}

func (s *RefreshService) RefreshAll(ctx context.Context, input RefreshInput) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshService.RefreshAll")
	defer span.End()

	refs := dedupeRefs(input.SeriesRefs)
	if len(refs) == 0 {
		return RefreshResult{}, fmt.Errorf("%w: at least one series reference is required", ErrInvalidInput)
	}

	workerCount := normalizeRefreshWorkerCount(input.MaxWorkers, len(refs))
	result := RefreshResult{
		TaskCount:   len(refs),
		WorkerCount: workerCount,
		Tasks:       make([]RefreshTaskResult, 0, len(refs)),
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan RefreshTaskResult, len(refs))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, ref := range refs {
		ref := ref
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RefreshTaskResult{SeriesRef: ref}

			table, err := s.standingsSvc.Recompute(ctx, ref)
			if err != nil {
				row.Status = refreshStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
			} else {
				row.Status = refreshStatusSuccess
				row.Rows = len(table.Rows)
				successCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()

			results <- row
		}); err != nil {
			workers.Done()
			return RefreshResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].SeriesRef < result.Tasks[j].SeriesRef
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	return result, nil
}

func dedupeRefs(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

func normalizeRefreshWorkerCount(requested, taskCount int) int {
	count := requested
	if count <= 0 {
		count = defaultRefreshWorkers
	}
	if count > maxRefreshWorkers {
		count = maxRefreshWorkers
	}
	if count > taskCount {
		count = taskCount
	}
	return count
}
