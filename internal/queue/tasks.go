package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TaskQueue is the single named queue multiplexing every job kind.
const TaskQueue = "TASK_QUEUE"

// TaskKind enumerates the closed set of job kinds carried by the task queue.
type TaskKind string

const (
	// TaskEmail delivers an outbound email.
	TaskEmail TaskKind = "EMAIL"
	// TaskNotification delivers an in-app notification.
	TaskNotification TaskKind = "NOTIFICATION"
	// TaskGradeSolution runs the grading pass over one solution.
	TaskGradeSolution TaskKind = "GRADE_SOLUTION"
	// TaskTestJob verifies the queue round-trip in diagnostics.
	TaskTestJob TaskKind = "TEST_JOB"
)

// Grading jobs get five delivery attempts in total; every other kind runs
// once. Completed tasks are removed (asynq default).
const (
	gradeSolutionMaxRetry = 4
	defaultMaxRetry       = 0
)

// EmailPayload carries an outbound email job.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// NotificationPayload carries an in-app notification job.
type NotificationPayload struct {
	UserID  string `json:"user_id"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GradeSolutionPayload references the solution a grading job targets.
type GradeSolutionPayload struct {
	SolutionID uint `json:"solution_id"`
}

// Enqueuer adds jobs to the task queue.
type Enqueuer struct {
	client *asynq.Client
	logger zerolog.Logger
}

// NewEnqueuer constructs an Enqueuer over the given asynq client.
func NewEnqueuer(client *asynq.Client, logger zerolog.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger.With().Str("component", "task_enqueuer").Logger(),
	}
}

// EnqueueEmail queues an outbound email job.
func (e *Enqueuer) EnqueueEmail(ctx context.Context, to, subject, message string) error {
	return e.enqueue(ctx, TaskEmail, EmailPayload{To: to, Subject: subject, Message: message}, defaultMaxRetry)
}

// EnqueueNotification queues an in-app notification job.
func (e *Enqueuer) EnqueueNotification(ctx context.Context, payload NotificationPayload) error {
	return e.enqueue(ctx, TaskNotification, payload, defaultMaxRetry)
}

// EnqueueGradeSolution queues an asynchronous grading job with the grading
// retry budget.
func (e *Enqueuer) EnqueueGradeSolution(ctx context.Context, solutionID uint) error {
	return e.enqueue(ctx, TaskGradeSolution, GradeSolutionPayload{SolutionID: solutionID}, gradeSolutionMaxRetry)
}

// EnqueueTestJob queues a diagnostic job.
func (e *Enqueuer) EnqueueTestJob(ctx context.Context) error {
	return e.enqueue(ctx, TaskTestJob, struct{}{}, defaultMaxRetry)
}

func (e *Enqueuer) enqueue(ctx context.Context, kind TaskKind, payload interface{}, maxRetry int) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}

	task := asynq.NewTask(string(kind), body)
	info, err := e.client.EnqueueContext(ctx, task, asynq.Queue(TaskQueue), asynq.MaxRetry(maxRetry))
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", kind, err)
	}

	e.logger.Debug().Str("task_id", info.ID).Str("kind", string(kind)).Msg("task enqueued")

	return nil
}
