package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/models"
)

func TestJobConnectionSummary(t *testing.T) {
	sum := models.ConnectionSummary{ID: "c1", EventID: "e1", BusinessID: "b1", CorporateID: "r1", Status: models.ConnectionInterested}
	job, err := NewJob(JobTypeConnectionSummary, ConnectionSummaryPayload{EventID: "e1", Summary: sum})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Zero(t, job.Attempt)

	p, err := job.ConnectionSummary()
	require.NoError(t, err)
	assert.Equal(t, "e1", p.EventID)
	assert.Equal(t, "c1", p.Summary.ID)

	job.Type = "email"
	_, err = job.ConnectionSummary()
	assert.Error(t, err)
}

func TestQueueRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Del(ctx, QueueRepairs, QueueDLQ).Err())
	t.Cleanup(func() {
		client.Del(context.Background(), QueueRepairs, QueueDLQ)
		client.Close()
	})
	q := NewQueue(client, zap.NewNop())

	require.NoError(t, q.EnqueueConnectionSummary(ctx, ConnectionSummaryPayload{EventID: "e1", Summary: models.ConnectionSummary{ID: "c1"}}))
	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobTypeConnectionSummary, job.Type)

	for i := 0; i < MaxRetries; i++ {
		require.NoError(t, q.Retry(ctx, job))
		if job.Attempt < MaxRetries {
			job, err = q.Dequeue(ctx)
			require.NoError(t, err)
			require.NotNil(t, job)
		}
	}
	n, err := client.LLen(ctx, QueueDLQ).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
