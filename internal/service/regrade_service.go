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

// ErrRegradeConflict indicates a regrade was requested while the solution is
// not in the GRADED state.
var ErrRegradeConflict = errors.New("solution is not graded")

// ErrQuestionNotFound indicates the targeted question is not part of the solution.
var ErrQuestionNotFound = errors.New("question is not part of the solution")

// ErrIncompleteMarking indicates a manual marking that does not cover every
// answer on the solution.
var ErrIncompleteMarking = errors.New("marking must cover every answer")

// ErrMarkOutOfRange indicates a supplied mark outside 0..question total.
var ErrMarkOutOfRange = errors.New("mark outside question range")

// RegradeService drives the regrade state machine layered on the solution
// status: GRADED -> REGRADE_REQUESTED -> GRADED, the last transition
// repeatable.
type RegradeService interface {
	CreateRegradeRequest(ctx context.Context, assessmentID, questionID, studentID uint) (dto.SolutionResponse, error)
	ManuallyGradeSolution(ctx context.Context, solutionID uint, payload dto.ManualGradingRequest) (dto.SolutionResponse, error)
}

type regradeService struct {
	solutions   repository.SolutionRepository
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	events      GradedEventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRegradeService constructs the regrade workflow service.
func NewRegradeService(
	solutions repository.SolutionRepository,
	assessments repository.AssessmentRepository,
	validate *validator.Validate,
	events GradedEventPublisher,
	logger zerolog.Logger,
) RegradeService {
	return &regradeService{
		solutions:   solutions,
		assessments: assessments,
		validator:   validate,
		events:      events,
		logger:      logger.With().Str("component", "regrade_service").Logger(),
		now:         time.Now,
	}
}

// CreateRegradeRequest flags a single answer for manual re-evaluation. Valid
// only while the solution is GRADED; setting the flag is idempotent.
func (s *regradeService) CreateRegradeRequest(ctx context.Context, assessmentID, questionID, studentID uint) (dto.SolutionResponse, error) {
	solution, err := s.solutions.GetByAssessmentAndStudent(ctx, assessmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SolutionResponse{}, ErrSolutionNotFound
		}
		return dto.SolutionResponse{}, err
	}

	if solution.Status != models.SolutionStatusGraded {
		return dto.SolutionResponse{}, fmt.Errorf("%w: status %s", ErrRegradeConflict, solution.Status)
	}

	idx := solution.AnswerIndexByQuestion(questionID)
	if idx < 0 {
		return dto.SolutionResponse{}, fmt.Errorf("question %d: %w", questionID, ErrQuestionNotFound)
	}

	solution.Answers[idx].RegradeRequested = true
	solution.Status = models.SolutionStatusRegradeRequested

	if err := s.solutions.UpdateGradingState(ctx, &solution); err != nil {
		return dto.SolutionResponse{}, err
	}

	s.logger.Info().
		Uint("solution_id", solution.ID).
		Uint("question_id", questionID).
		Msg("regrade requested")

	return dto.NewSolutionResponse(solution), nil
}

// ManuallyGradeSolution writes teacher-entered marks for every answer on the
// solution and moves it back to GRADED. The marking must cover each answer
// exactly; regrade flags are cleared because the full marking answers them.
func (s *regradeService) ManuallyGradeSolution(ctx context.Context, solutionID uint, payload dto.ManualGradingRequest) (dto.SolutionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SolutionResponse{}, err
	}

	solution, err := s.solutions.GetByID(ctx, solutionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SolutionResponse{}, ErrSolutionNotFound
		}
		return dto.SolutionResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, solution.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SolutionResponse{}, ErrAssessmentNotFound
		}
		return dto.SolutionResponse{}, err
	}

	if len(payload.Marks) != len(solution.Answers) {
		return dto.SolutionResponse{}, fmt.Errorf("%w: got %d marks for %d answers", ErrIncompleteMarking, len(payload.Marks), len(solution.Answers))
	}

	for i := range solution.Answers {
		answer := &solution.Answers[i]
		marks, ok := payload.Marks[answer.ID]
		if !ok {
			return dto.SolutionResponse{}, fmt.Errorf("answer %d missing: %w", answer.ID, ErrIncompleteMarking)
		}
		if marks < 0 || marks > answer.Question.TotalMarks {
			return dto.SolutionResponse{}, fmt.Errorf("answer %d mark %d: %w", answer.ID, marks, ErrMarkOutOfRange)
		}

		awarded := marks
		answer.Marks = &awarded
		answer.RegradeRequested = false
	}

	solution.RecomputeObtainedMarks()
	solution.Status = models.SolutionStatusGraded

	if err := s.solutions.UpdateGradingState(ctx, &solution); err != nil {
		return dto.SolutionResponse{}, err
	}

	if s.events != nil {
		event := GradedEvent{
			SolutionID:     solution.ID,
			AssessmentID:   assessment.ID,
			AssessmentName: assessment.Name,
			StudentID:      solution.StudentID,
			StudentName:    solution.Student.Name,
			StudentEmail:   solution.Student.Email,
			ObtainedMarks:  *solution.ObtainedMarks,
			TotalMarks:     assessment.TotalMarks,
			GradedAt:       s.now().UTC(),
		}
		if err := s.events.PublishGraded(ctx, event); err != nil {
			s.logger.Warn().Err(err).Uint("solution_id", solution.ID).Msg("failed to publish graded event")
		}
	}

	s.logger.Info().
		Uint("solution_id", solution.ID).
		Int("obtained_marks", *solution.ObtainedMarks).
		Msg("solution manually graded")

	return dto.NewSolutionResponse(solution), nil
}
