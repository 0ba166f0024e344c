package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/catalog"
	jobmetrics "github.com/dentaldesk/dentaldesk/internal/jobs"
)

// CategoryRefresher rewrites the category cache from the backend.
type CategoryRefresher interface {
	RefreshCategories(ctx context.Context) ([]catalog.Category, error)
}

// CategoryRefreshJob handles TaskCategoryRefresh.
type CategoryRefreshJob struct {
	Catalog CategoryRefresher
	// Token authenticates the worker against the backend.
	Token   string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCategoryRefreshJob wires dependencies for the refresh handler.
func NewCategoryRefreshJob(refresher CategoryRefresher, serviceToken string, logger *slog.Logger, metrics *jobmetrics.Metrics) *CategoryRefreshJob {
	return &CategoryRefreshJob{Catalog: refresher, Token: serviceToken, Logger: logger, Metrics: metrics}
}

// Handle processes category refresh tasks.
func (j *CategoryRefreshJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Catalog == nil {
		return errors.New("category refresh: handler not configured")
	}
	var payload CategoryRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskCategoryRefresh)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("source", payload.Source))
	if j.Token != "" {
		ctx = backend.WithToken(ctx, j.Token)
	}
	categories, err := j.Catalog.RefreshCategories(ctx)
	if err != nil {
		logger.Error("refresh categories", slog.Any("error", err))
		return err
	}
	j.Metrics.SetCachedCategories(len(categories))
	logger.Info("categories refreshed", slog.Int("count", len(categories)))
	return nil
}

func (j *CategoryRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
