package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store/memory"
	"github.com/csr-bridge/backend/pkg/queue"
)

// fakeQueue hands out queued jobs and records retries.
type fakeQueue struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	retried []*queue.Job
}

func (q *fakeQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Millisecond):
			return nil, nil
		}
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *fakeQueue) Retry(_ context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempt++
	q.retried = append(q.retried, job)
	return nil
}

func repairJob(t *testing.T, eventID, connID string) *queue.Job {
	t.Helper()
	job, err := queue.NewJob(queue.JobTypeConnectionSummary, queue.ConnectionSummaryPayload{
		EventID: eventID,
		Summary: models.ConnectionSummary{ID: connID, EventID: eventID, Status: models.ConnectionInterested},
	})
	require.NoError(t, err)
	return job
}

func TestProcessIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.CreateEvent(ctx, &models.Event{ID: "e1"}))
	p := NewConnectionSummaryProcessor(s, &fakeQueue{}, zap.NewNop())

	job := repairJob(t, "e1", "c1")
	require.NoError(t, p.Process(ctx, job))
	require.NoError(t, p.Process(ctx, job))

	e, err := s.GetEvent(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, e.ConnectionsMade, 1)
	assert.Equal(t, "c1", e.ConnectionsMade[0].ID)
}

func TestProcessDropsJobForMissingEvent(t *testing.T) {
	p := NewConnectionSummaryProcessor(memory.NewStore(), &fakeQueue{}, zap.NewNop())
	assert.NoError(t, p.Process(context.Background(), repairJob(t, "gone", "c1")))
}

func TestProcessRejectsForeignJob(t *testing.T) {
	p := NewConnectionSummaryProcessor(memory.NewStore(), &fakeQueue{}, zap.NewNop())
	job, err := queue.NewJob("email", map[string]string{"to": "x"})
	require.NoError(t, err)
	assert.Error(t, p.Process(context.Background(), job))
}

func TestRunRetriesFailedJobs(t *testing.T) {
	s := memory.NewStore()
	require.NoError(t, s.CreateEvent(context.Background(), &models.Event{ID: "e1"}))
	s.FailAppend(errors.New("write conflict"))

	q := &fakeQueue{jobs: []*queue.Job{repairJob(t, "e1", "c1")}}
	p := NewConnectionSummaryProcessor(s, q, zap.NewNop())
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.retried) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 1, q.retried[0].Attempt)
}
