package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	resultSubject    = "gradeflow.solutions.graded"
	resultChannel    = "gradeflow:solutions:graded"
	resultQueueGroup = "gradeflow-results"
)

// EmailEnqueuer queues an outbound email job.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, to, subject, message string) error
}

// ResultDispatcher moves graded completion events between the grading
// pipeline and the notification side. Events travel over NATS when a
// connection is configured, falling back to a redis channel otherwise; the
// NATS queue group ensures one worker turns each event into a result email.
type ResultDispatcher struct {
	redis   *redis.Client
	channel string
	nats    *nats.Conn
	subject string
	emails  EmailEnqueuer
	logger  zerolog.Logger
	nodeID  string
}

type gradedEnvelope struct {
	Source string      `json:"source"`
	Event  GradedEvent `json:"event"`
	SentAt time.Time   `json:"sent_at"`
}

// NewResultDispatcher constructs a dispatcher. Either transport may be nil;
// with neither configured, publishing becomes a logged no-op.
func NewResultDispatcher(redisClient *redis.Client, natsConn *nats.Conn, emails EmailEnqueuer, logger zerolog.Logger) *ResultDispatcher {
	return &ResultDispatcher{
		redis:   redisClient,
		channel: resultChannel,
		nats:    natsConn,
		subject: resultSubject,
		emails:  emails,
		logger:  logger.With().Str("component", "result_dispatcher").Logger(),
		nodeID:  uuid.NewString(),
	}
}

// PublishGraded implements GradedEventPublisher.
func (d *ResultDispatcher) PublishGraded(ctx context.Context, event GradedEvent) error {
	payload, err := json.Marshal(gradedEnvelope{Source: d.nodeID, Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	if d.nats != nil {
		return d.nats.Publish(d.subject, payload)
	}

	if d.redis != nil {
		return d.redis.Publish(ctx, d.channel, payload).Err()
	}

	d.logger.Debug().Uint("solution_id", event.SolutionID).Msg("no result transport configured, event dropped")

	return nil
}

// Start begins consuming graded events until the context is cancelled.
func (d *ResultDispatcher) Start(ctx context.Context) {
	if d.nats != nil {
		d.consumeNATS(ctx)
		return
	}
	if d.redis != nil {
		go d.consumeRedis(ctx)
	}
}

func (d *ResultDispatcher) consumeNATS(ctx context.Context) {
	sub, err := d.nats.QueueSubscribe(d.subject, resultQueueGroup, func(msg *nats.Msg) {
		d.handleEvent(msg.Data)
	})
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to subscribe to graded results subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			d.logger.Warn().Err(err).Msg("failed to drain graded results subscription")
		}
	}()
}

func (d *ResultDispatcher) consumeRedis(ctx context.Context) {
	pubsub := d.redis.Subscribe(ctx, d.channel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error().Err(err).Msg("graded results redis subscription closed")
			return
		}
		d.handleEvent([]byte(msg.Payload))
	}
}

func (d *ResultDispatcher) handleEvent(payload []byte) {
	var envelope gradedEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		d.logger.Warn().Err(err).Msg("invalid graded event payload")
		return
	}

	event := envelope.Event
	if event.StudentEmail == "" {
		d.logger.Warn().Uint("solution_id", event.SolutionID).Msg("graded event carries no student email")
		return
	}

	subject := fmt.Sprintf("Result published: %s", event.AssessmentName)
	message := fmt.Sprintf(
		"Hi %s,\n\nYour submission for %s has been graded. You scored %d out of %d marks.\n",
		event.StudentName, event.AssessmentName, event.ObtainedMarks, event.TotalMarks,
	)

	if err := d.emails.EnqueueEmail(context.Background(), event.StudentEmail, subject, message); err != nil {
		d.logger.Error().Err(err).Uint("solution_id", event.SolutionID).Msg("failed to enqueue result email")
		return
	}

	d.logger.Info().Uint("solution_id", event.SolutionID).Msg("result email enqueued")
}
