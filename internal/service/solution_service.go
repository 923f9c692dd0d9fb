package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arka-labs/gradeflow-api/internal/dto"
	"github.com/arka-labs/gradeflow-api/internal/models"
	"github.com/arka-labs/gradeflow-api/internal/repository"
)

// ErrDuplicateSubmission indicates the student already submitted a solution
// for this assessment. Uniqueness is enforced by the data layer.
var ErrDuplicateSubmission = errors.New("solution already submitted for this assessment")

// ErrAssessmentCancelled indicates a submission against a cancelled assessment.
var ErrAssessmentCancelled = errors.New("assessment is cancelled")

// GradingEnqueuer queues an asynchronous grading job for a solution.
type GradingEnqueuer interface {
	EnqueueGradeSolution(ctx context.Context, solutionID uint) error
}

// SolutionService handles submission intake.
type SolutionService interface {
	Submit(ctx context.Context, payload dto.SolutionSubmitRequest) (dto.SolutionResponse, error)
}

type solutionService struct {
	solutions   repository.SolutionRepository
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	enqueuer    GradingEnqueuer
	grader      GradingService
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSolutionService constructs a SolutionService. When enqueuer is nil the
// service grades inline through grader instead of queueing a job.
func NewSolutionService(
	solutions repository.SolutionRepository,
	assessments repository.AssessmentRepository,
	validate *validator.Validate,
	enqueuer GradingEnqueuer,
	grader GradingService,
	logger zerolog.Logger,
) SolutionService {
	return &solutionService{
		solutions:   solutions,
		assessments: assessments,
		validator:   validate,
		enqueuer:    enqueuer,
		grader:      grader,
		logger:      logger.With().Str("component", "solution_service").Logger(),
		now:         time.Now,
	}
}

func (s *solutionService) Submit(ctx context.Context, payload dto.SolutionSubmitRequest) (dto.SolutionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SolutionResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, payload.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SolutionResponse{}, ErrAssessmentNotFound
		}
		return dto.SolutionResponse{}, err
	}

	if assessment.Cancelled {
		return dto.SolutionResponse{}, ErrAssessmentCancelled
	}

	known := make(map[uint]struct{}, len(assessment.Questions))
	for _, question := range assessment.Questions {
		known[question.ID] = struct{}{}
	}

	answers := make([]models.StudentAnswer, len(payload.Answers))
	for i, submitted := range payload.Answers {
		if _, ok := known[submitted.QuestionID]; !ok {
			return dto.SolutionResponse{}, fmt.Errorf("question %d: %w", submitted.QuestionID, ErrQuestionNotFound)
		}
		answers[i] = models.StudentAnswer{
			QuestionID: submitted.QuestionID,
			Position:   i,
			Answer:     submitted.Answer,
		}
	}

	solution := models.Solution{
		AssessmentID:    payload.AssessmentID,
		StudentID:       payload.StudentID,
		DurationSeconds: payload.DurationSeconds,
		Status:          models.SolutionStatusUngraded,
		LateSubmission:  assessment.IsPastDue(s.now()),
		Answers:         answers,
	}

	if err := s.solutions.Create(ctx, &solution); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SolutionResponse{}, ErrDuplicateSubmission
		}
		return dto.SolutionResponse{}, err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueGradeSolution(ctx, solution.ID); err != nil {
			return dto.SolutionResponse{}, fmt.Errorf("enqueue grading job: %w", err)
		}
	} else if s.grader != nil {
		if err := s.grader.GradeSolution(ctx, solution.ID); err != nil {
			return dto.SolutionResponse{}, err
		}
	}

	created, err := s.solutions.GetByID(ctx, solution.ID)
	if err != nil {
		return dto.SolutionResponse{}, err
	}

	s.logger.Info().
		Uint("solution_id", created.ID).
		Bool("late_submission", created.LateSubmission).
		Msg("solution submitted")

	return dto.NewSolutionResponse(created), nil
}
