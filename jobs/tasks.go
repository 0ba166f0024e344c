package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCategoryRefresh reloads the product categories into the shared cache.
	TaskCategoryRefresh = "catalog:categories:refresh"
)

// categoryRefreshUnique collapses repeated refresh requests into one task.
const categoryRefreshUnique = time.Minute

// CategoryRefreshPayload records who asked for the refresh.
type CategoryRefreshPayload struct {
	Source string `json:"source"`
}

// NewCategoryRefreshTask constructs an Asynq task.
func NewCategoryRefreshTask(source string) (*asynq.Task, error) {
	data, err := json.Marshal(CategoryRefreshPayload{Source: source})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCategoryRefresh, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
