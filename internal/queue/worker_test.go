package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/arka-labs/gradeflow-api/internal/grading"
	"github.com/arka-labs/gradeflow-api/internal/service"
)

type fakeGradingService struct {
	err     error
	gradeID uint
	calls   int
}

func (s *fakeGradingService) GradeSolution(_ context.Context, solutionID uint) error {
	s.calls++
	s.gradeID = solutionID

	return s.err
}

type fakeMailer struct {
	err  error
	sent []string
}

func (m *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)

	return nil
}

func gradeTask(t *testing.T, solutionID uint) *asynq.Task {
	t.Helper()

	body, err := json.Marshal(GradeSolutionPayload{SolutionID: solutionID})
	require.NoError(t, err)

	return asynq.NewTask(string(TaskGradeSolution), body)
}

func TestHandleGradeSolution(t *testing.T) {
	grader := &fakeGradingService{}
	deps := Deps{Grading: grader, Logger: zerolog.Nop()}

	require.NoError(t, deps.HandleGradeSolution(context.Background(), gradeTask(t, 21)))
	require.Equal(t, uint(21), grader.gradeID)
}

func TestHandleGradeSolutionFatalErrorsSkipRetry(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{name: "solution not found", err: service.ErrSolutionNotFound},
		{name: "assessment not found", err: service.ErrAssessmentNotFound},
		{name: "course not found", err: service.ErrCourseNotFound},
		{name: "unsupported question type", err: fmt.Errorf("resolve: %w", grading.ErrUnsupportedQuestionType)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			deps := Deps{Grading: &fakeGradingService{err: tc.err}, Logger: zerolog.Nop()}

			err := deps.HandleGradeSolution(context.Background(), gradeTask(t, 21))
			require.Error(t, err)
			require.ErrorIs(t, err, asynq.SkipRetry)
		})
	}
}

func TestHandleGradeSolutionRetryableError(t *testing.T) {
	wantErr := errors.New("scoring service down")
	deps := Deps{Grading: &fakeGradingService{err: wantErr}, Logger: zerolog.Nop()}

	err := deps.HandleGradeSolution(context.Background(), gradeTask(t, 21))
	require.ErrorIs(t, err, wantErr)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleGradeSolutionBadPayload(t *testing.T) {
	deps := Deps{Grading: &fakeGradingService{}, Logger: zerolog.Nop()}

	task := asynq.NewTask(string(TaskGradeSolution), []byte("not json"))
	err := deps.HandleGradeSolution(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleEmail(t *testing.T) {
	mailer := &fakeMailer{}
	deps := Deps{Mailer: mailer, Logger: zerolog.Nop()}

	body, err := json.Marshal(EmailPayload{To: "dira@student.test", Subject: "Result", Message: "Hi"})
	require.NoError(t, err)

	require.NoError(t, deps.HandleEmail(context.Background(), asynq.NewTask(string(TaskEmail), body)))
	require.Equal(t, []string{"dira@student.test"}, mailer.sent)
}

func TestHandleEmailDeliveryFailure(t *testing.T) {
	wantErr := errors.New("smtp unreachable")
	deps := Deps{Mailer: &fakeMailer{err: wantErr}, Logger: zerolog.Nop()}

	body, err := json.Marshal(EmailPayload{To: "dira@student.test"})
	require.NoError(t, err)

	err = deps.HandleEmail(context.Background(), asynq.NewTask(string(TaskEmail), body))
	require.ErrorIs(t, err, wantErr)
}

func TestNewMuxRegistersEveryKind(t *testing.T) {
	deps := Deps{Grading: &fakeGradingService{}, Mailer: &fakeMailer{}, Logger: zerolog.Nop()}
	mux := NewMux(deps)

	body, err := json.Marshal(NotificationPayload{UserID: "31", Type: "RESULT"})
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask(string(TaskNotification), body)))
	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask(string(TaskTestJob), nil)))
	require.NoError(t, mux.ProcessTask(context.Background(), gradeTask(t, 21)))
}
