package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arka-labs/gradeflow-api/internal/dto"
	"github.com/arka-labs/gradeflow-api/internal/models"
)

func submitPayload() dto.SolutionSubmitRequest {
	return dto.SolutionSubmitRequest{
		AssessmentID:    1,
		StudentID:       31,
		DurationSeconds: 1800,
		Answers: []dto.AnswerSubmission{
			{QuestionID: 11, Answer: "Paris"},
			{QuestionID: 12, Answer: "42"},
			{QuestionID: 13, Answer: "a thorough explanation"},
		},
	}
}

func newSolutionServiceAt(
	solutions *fakeSolutionRepo,
	assessments *fakeAssessmentRepo,
	enqueuer GradingEnqueuer,
	grader GradingService,
	now time.Time,
) SolutionService {
	svc := NewSolutionService(solutions, assessments, validator.New(validator.WithRequiredStructEnabled()), enqueuer, grader, testLogger())
	svc.(*solutionService).now = func() time.Time { return now }

	return svc
}

func TestSubmitEnqueuesGrading(t *testing.T) {
	solutions := newFakeSolutionRepo()
	enqueuer := &fakeGradingEnqueuer{}
	onTime := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

	svc := newSolutionServiceAt(solutions, newFakeAssessmentRepo(fixtureAssessment(false)), enqueuer, nil, onTime)

	response, err := svc.Submit(context.Background(), submitPayload())
	require.NoError(t, err)
	require.Equal(t, models.SolutionStatusUngraded, response.Status)
	require.False(t, response.LateSubmission)
	require.Len(t, response.Answers, 3)

	require.Equal(t, []uint{response.ID}, enqueuer.solutionIDs)
}

func TestSubmitFlagsLateSubmission(t *testing.T) {
	late := time.Date(2026, time.June, 2, 12, 0, 0, 0, time.UTC)
	svc := newSolutionServiceAt(newFakeSolutionRepo(), newFakeAssessmentRepo(fixtureAssessment(false)), &fakeGradingEnqueuer{}, nil, late)

	response, err := svc.Submit(context.Background(), submitPayload())
	require.NoError(t, err)
	require.True(t, response.LateSubmission)
}

func TestSubmitDuplicate(t *testing.T) {
	solutions := newFakeSolutionRepo()
	solutions.createErr = gorm.ErrDuplicatedKey

	svc := newSolutionServiceAt(solutions, newFakeAssessmentRepo(fixtureAssessment(false)), &fakeGradingEnqueuer{}, nil, time.Now())

	_, err := svc.Submit(context.Background(), submitPayload())
	require.ErrorIs(t, err, ErrDuplicateSubmission)
}

func TestSubmitCancelledAssessment(t *testing.T) {
	assessment := fixtureAssessment(false)
	assessment.Cancelled = true

	svc := newSolutionServiceAt(newFakeSolutionRepo(), newFakeAssessmentRepo(assessment), &fakeGradingEnqueuer{}, nil, time.Now())

	_, err := svc.Submit(context.Background(), submitPayload())
	require.ErrorIs(t, err, ErrAssessmentCancelled)
}

func TestSubmitUnknownAssessment(t *testing.T) {
	svc := newSolutionServiceAt(newFakeSolutionRepo(), newFakeAssessmentRepo(), &fakeGradingEnqueuer{}, nil, time.Now())

	_, err := svc.Submit(context.Background(), submitPayload())
	require.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestSubmitUnknownQuestion(t *testing.T) {
	payload := submitPayload()
	payload.Answers[1].QuestionID = 99

	svc := newSolutionServiceAt(newFakeSolutionRepo(), newFakeAssessmentRepo(fixtureAssessment(false)), &fakeGradingEnqueuer{}, nil, time.Now())

	_, err := svc.Submit(context.Background(), payload)
	require.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestSubmitValidation(t *testing.T) {
	svc := newSolutionServiceAt(newFakeSolutionRepo(), newFakeAssessmentRepo(fixtureAssessment(false)), &fakeGradingEnqueuer{}, nil, time.Now())

	testCases := []struct {
		name   string
		mutate func(*dto.SolutionSubmitRequest)
	}{
		{name: "missing student", mutate: func(p *dto.SolutionSubmitRequest) { p.StudentID = 0 }},
		{name: "no answers", mutate: func(p *dto.SolutionSubmitRequest) { p.Answers = nil }},
		{name: "empty answer text", mutate: func(p *dto.SolutionSubmitRequest) { p.Answers[0].Answer = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payload := submitPayload()
			tc.mutate(&payload)

			_, err := svc.Submit(context.Background(), payload)
			require.Error(t, err)
		})
	}
}

func TestSubmitGradesInlineWithoutEnqueuer(t *testing.T) {
	solutions := newFakeSolutionRepo()
	assessments := newFakeAssessmentRepo(fixtureAssessment(false))
	courses := newFakeCourseRepo(fixtureCourse())

	grader := newGradingService(solutions, assessments, courses, &fakeScorer{score: 95}, &fakePublisher{})
	svc := newSolutionServiceAt(solutions, assessments, nil, grader, time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC))

	response, err := svc.Submit(context.Background(), submitPayload())
	require.NoError(t, err)
	require.Equal(t, models.SolutionStatusGraded, response.Status)
	require.NotNil(t, response.ObtainedMarks)
	require.Equal(t, 6, *response.ObtainedMarks)
}
