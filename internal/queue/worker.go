package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/arka-labs/gradeflow-api/internal/grading"
	"github.com/arka-labs/gradeflow-api/internal/mailer"
	"github.com/arka-labs/gradeflow-api/internal/observability"
	"github.com/arka-labs/gradeflow-api/internal/service"
)

// Deps wires the collaborators the worker handlers dispatch to.
type Deps struct {
	Grading service.GradingService
	Mailer  mailer.Mailer
	Logger  zerolog.Logger
}

// NewMux registers a handler for every task kind. The kind set is closed, so
// registration here is exhaustive by construction; an unknown kind is
// rejected by asynq before reaching any handler.
func NewMux(deps Deps) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(string(TaskEmail), deps.HandleEmail)
	mux.HandleFunc(string(TaskNotification), deps.HandleNotification)
	mux.HandleFunc(string(TaskGradeSolution), deps.HandleGradeSolution)
	mux.HandleFunc(string(TaskTestJob), deps.HandleTestJob)

	return mux
}

// NewServer builds the queue worker server with the configured concurrency
// bound. No ordering is guaranteed across distinct jobs.
func NewServer(redisOpt asynq.RedisConnOpt, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 50
	}

	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{TaskQueue: 1},
	})
}

// HandleGradeSolution runs the grading pass for the referenced solution.
// Missing data and unsupported question types are defects that retrying
// cannot fix; everything else consumes the job's retry budget.
func (d Deps) HandleGradeSolution(ctx context.Context, task *asynq.Task) error {
	var payload GradeSolutionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode grade payload: %v: %w", err, asynq.SkipRetry)
	}

	err := d.Grading.GradeSolution(ctx, payload.SolutionID)
	switch {
	case err == nil:
		observability.QueueTasks().WithLabelValues(string(TaskGradeSolution), "ok").Inc()
		return nil
	case errors.Is(err, service.ErrSolutionNotFound),
		errors.Is(err, service.ErrAssessmentNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, grading.ErrUnsupportedQuestionType):
		observability.QueueTasks().WithLabelValues(string(TaskGradeSolution), "fatal").Inc()
		d.Logger.Error().Err(err).Uint("solution_id", payload.SolutionID).Msg("grading job failed permanently")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		observability.QueueTasks().WithLabelValues(string(TaskGradeSolution), "retry").Inc()
		d.Logger.Warn().Err(err).Uint("solution_id", payload.SolutionID).Msg("grading job failed, will retry")
		return err
	}
}

// HandleEmail delivers an outbound email job through the configured mailer.
func (d Deps) HandleEmail(ctx context.Context, task *asynq.Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode email payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := d.Mailer.Send(ctx, payload.To, payload.Subject, payload.Message); err != nil {
		observability.QueueTasks().WithLabelValues(string(TaskEmail), "retry").Inc()
		return err
	}

	observability.QueueTasks().WithLabelValues(string(TaskEmail), "ok").Inc()

	return nil
}

// HandleNotification records an in-app notification job. Delivery fan-out
// happens on the API side; the job kind exists so queued notifications share
// the task queue's durability.
func (d Deps) HandleNotification(ctx context.Context, task *asynq.Task) error {
	var payload NotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode notification payload: %v: %w", err, asynq.SkipRetry)
	}

	observability.QueueTasks().WithLabelValues(string(TaskNotification), "ok").Inc()
	d.Logger.Info().Str("user_id", payload.UserID).Str("type", payload.Type).Msg("notification job processed")

	return nil
}

// HandleTestJob verifies the queue round-trip.
func (d Deps) HandleTestJob(_ context.Context, _ *asynq.Task) error {
	observability.QueueTasks().WithLabelValues(string(TaskTestJob), "ok").Inc()
	d.Logger.Info().Msg("test job executed")

	return nil
}
