// Package queue moves job identifiers between the API process and the worker
// over Redis using asynq. The queue carries only identifiers; everything the
// worker needs lives in the jobs table.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskTypeGenerateReport is the asynq task type for monthly report jobs.
const TaskTypeGenerateReport = "report:generate"

// QueueReports is the asynq queue report tasks are enqueued on.
const QueueReports = "reports"

// ReportPayload is the wire payload of a report task.
type ReportPayload struct {
	JobID  uuid.UUID `json:"job_id"`
	UserID uuid.UUID `json:"user_id"`
}

// Client enqueues tasks from the API process.
type Client struct {
	client      *asynq.Client
	maxAttempts int
}

// NewClient builds an enqueue client from a Redis URL. maxAttempts is the
// total attempt budget per job; asynq counts retries, so it is told one less.
func NewClient(redisURL string, maxAttempts int) (*Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return &Client{
		client:      asynq.NewClient(opt),
		maxAttempts: maxAttempts,
	}, nil
}

// EnqueueReport queues one report-generation task for the given job.
func (c *Client) EnqueueReport(ctx context.Context, jobID, userID uuid.UUID) error {
	payload, err := json.Marshal(ReportPayload{JobID: jobID, UserID: userID})
	if err != nil {
		return fmt.Errorf("encode report payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeGenerateReport, payload)
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueReports),
		asynq.MaxRetry(c.maxAttempts-1),
	)
	if err != nil {
		return fmt.Errorf("enqueue report task: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
