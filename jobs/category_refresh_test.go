package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/catalog"
	jobmetrics "github.com/dentaldesk/dentaldesk/internal/jobs"
)

type stubRefresher struct {
	token string
	err   error
}

func (s *stubRefresher) RefreshCategories(ctx context.Context) ([]catalog.Category, error) {
	s.token = backend.TokenFromContext(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return []catalog.Category{{ID: "1", Name: "Implants"}, {ID: "2", Name: "Hygiene"}}, nil
}

func TestCategoryRefreshUsesServiceToken(t *testing.T) {
	refresher := &stubRefresher{}
	job := NewCategoryRefreshJob(refresher, "svc-token", nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewCategoryRefreshTask("cron")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, "svc-token", refresher.token)
}

func TestCategoryRefreshPropagatesFailure(t *testing.T) {
	job := NewCategoryRefreshJob(&stubRefresher{err: errors.New("down")}, "", nil, nil)
	task, err := NewCategoryRefreshTask("cron")
	require.NoError(t, err)
	assert.EqualError(t, job.Handle(context.Background(), task), "down")
}

func TestCategoryRefreshSkipsBadPayload(t *testing.T) {
	job := NewCategoryRefreshJob(&stubRefresher{}, "", nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskCategoryRefresh, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestHealthReportsQueueDepth(t *testing.T) {
	h := NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Retry: 1}}, nil)
	res := httptest.NewRecorder()
	h.health(res, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var body queueHealth
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, queueHealth{Queue: QueueDefault, Pending: 3, Retry: 1}, body)
}

func TestHealthMissingQueueIsEmpty(t *testing.T) {
	h := NewHandler(stubInspector{err: asynq.ErrQueueNotFound}, nil)
	res := httptest.NewRecorder()
	h.health(res, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"pending":0`)
}
