package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/store"
	"github.com/csr-bridge/backend/pkg/queue"
)

// JobSource is the queue the processor drains.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ConnectionSummaryProcessor replays connection summaries that a
// non-atomic connection write failed to append to their event.
type ConnectionSummaryProcessor struct {
	events  store.Events
	queue   JobSource
	logger  *zap.Logger
	backoff time.Duration
}

// NewConnectionSummaryProcessor creates a repair processor.
func NewConnectionSummaryProcessor(events store.Events, q JobSource, logger *zap.Logger) *ConnectionSummaryProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionSummaryProcessor{events: events, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one repair job. The append is idempotent, so a job that
// runs twice leaves a single summary on the event.
func (p *ConnectionSummaryProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := job.ConnectionSummary()
	if err != nil {
		return err
	}

	err = p.events.AppendConnectionSummary(ctx, payload.EventID, payload.Summary)
	if errors.Is(err, store.ErrNotFound) {
		// Nothing to repair against; retrying cannot help.
		p.logger.Warn("repair target event missing, dropping job",
			zap.String("job_id", job.ID),
			zap.String("event_id", payload.EventID),
			zap.String("connection_id", payload.Summary.ID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("append connection summary: %w", err)
	}

	p.logger.Info("connection summary repaired",
		zap.String("event_id", payload.EventID),
		zap.String("connection_id", payload.Summary.ID),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ConnectionSummaryProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("repair worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *ConnectionSummaryProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
