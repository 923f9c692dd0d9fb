package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/arka-labs/gradeflow-api/internal/grading"
	"github.com/arka-labs/gradeflow-api/internal/models"
	"github.com/arka-labs/gradeflow-api/internal/observability"
	"github.com/arka-labs/gradeflow-api/internal/repository"
)

// ErrSolutionNotFound indicates the solution was not located.
var ErrSolutionNotFound = errors.New("solution not found")

// ErrAssessmentNotFound indicates the assessment was not located.
var ErrAssessmentNotFound = errors.New("assessment not found")

// ErrCourseNotFound indicates no course matches the assessment's class.
var ErrCourseNotFound = errors.New("course not found")

// GradingService runs the grading pass over a submitted solution.
type GradingService interface {
	GradeSolution(ctx context.Context, solutionID uint) error
}

type gradingService struct {
	solutions   repository.SolutionRepository
	assessments repository.AssessmentRepository
	courses     repository.CourseRepository
	resolver    grading.Resolver
	events      GradedEventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading orchestrator.
func NewGradingService(
	solutions repository.SolutionRepository,
	assessments repository.AssessmentRepository,
	courses repository.CourseRepository,
	resolver grading.Resolver,
	events GradedEventPublisher,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		solutions:   solutions,
		assessments: assessments,
		courses:     courses,
		resolver:    resolver,
		events:      events,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

// GradeSolution loads the solution with its assessment and course, fans every
// gradable answer out to its strategy, and persists the merged result. The
// pass is all-or-nothing: any strategy failure leaves the solution untouched.
// In manual mode descriptive answers are held back and marks a teacher
// already entered for them are preserved.
func (s *gradingService) GradeSolution(ctx context.Context, solutionID uint) error {
	tracer := otel.Tracer("github.com/arka-labs/gradeflow-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.solution")
	span.SetAttributes(attribute.Int64("grading.solution_id", int64(solutionID)))
	defer span.End()

	solution, err := s.solutions.GetByID(ctx, solutionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrSolutionNotFound
		}
		return s.fail(span, err, "solution_lookup_failed")
	}

	assessment, err := s.assessments.GetByID(ctx, solution.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrAssessmentNotFound
		}
		return s.fail(span, err, "assessment_lookup_failed")
	}

	course, err := s.courses.GetByCode(ctx, assessment.Class.CourseCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrCourseNotFound
		}
		return s.fail(span, err, "course_lookup_failed")
	}

	mode := assessment.GradingMode()
	span.SetAttributes(attribute.String("grading.mode", string(mode)))

	toGrade := gradableAnswers(solution.Answers, mode)

	results, err := s.gradeAnswers(ctx, course, solution.Answers, toGrade)
	if err != nil {
		return s.fail(span, err, "grading_pass_failed")
	}

	for i, idx := range toGrade {
		marks := results[i].Marks
		solution.Answers[idx].Marks = &marks
	}
	solution.RecomputeObtainedMarks()
	solution.Status = models.SolutionStatusGraded

	if err := s.solutions.UpdateGradingState(ctx, &solution); err != nil {
		return s.fail(span, err, "solution_update_failed")
	}

	observability.SolutionsGraded().WithLabelValues(string(mode)).Inc()
	span.SetAttributes(attribute.Int("grading.obtained_marks", *solution.ObtainedMarks))

	// A manual-mode pass is partial: descriptive answers are still awaiting
	// the teacher, so no completion event goes out.
	if mode == models.GradingModeAutomatic && s.events != nil {
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
		Str("mode", string(mode)).
		Int("obtained_marks", *solution.ObtainedMarks).
		Msg("solution graded")

	return nil
}

func (s *gradingService) fail(span trace.Span, err error, status string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	observability.GradingFailures().WithLabelValues(failureReason(err)).Inc()

	return err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrSolutionNotFound), errors.Is(err, ErrAssessmentNotFound), errors.Is(err, ErrCourseNotFound):
		return "not_found"
	case errors.Is(err, grading.ErrUnsupportedQuestionType):
		return "unsupported_type"
	case errors.Is(err, repository.ErrVersionConflict):
		return "conflict"
	default:
		return "upstream"
	}
}

// gradableAnswers selects the answer indexes the pass will grade. Automatic
// mode takes every answer; manual mode holds descriptive answers back for the
// teacher.
func gradableAnswers(answers []models.StudentAnswer, mode models.GradingMode) []int {
	indexes := make([]int, 0, len(answers))
	for i := range answers {
		if mode == models.GradingModeManual && answers[i].Question.Type == models.QuestionTypeDescriptive {
			continue
		}
		indexes = append(indexes, i)
	}

	return indexes
}

// gradeAnswers resolves a grader per answer up front, so an unsupported type
// aborts before any external call, then invokes the graders concurrently and
// joins before returning. The result slice is positionally aligned with
// toGrade.
func (s *gradingService) gradeAnswers(ctx context.Context, course models.Course, answers []models.StudentAnswer, toGrade []int) ([]grading.Result, error) {
	graders := make([]grading.Grader, len(toGrade))
	for i, idx := range toGrade {
		grader, err := s.resolver.For(answers[idx].Question.Type)
		if err != nil {
			return nil, err
		}
		graders[i] = grader
	}

	results := make([]grading.Result, len(toGrade))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, idx := range toGrade {
		group.Go(func() error {
			answer := answers[idx]
			result, err := graders[i].GradeAnswer(groupCtx, course, answer.Question, answer.Answer)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
