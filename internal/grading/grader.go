package grading

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arka-labs/gradeflow-api/internal/models"
)

// ErrUnsupportedQuestionType indicates a question type outside the closed
// grader set. This is a defect condition and must never be retried.
var ErrUnsupportedQuestionType = errors.New("unsupported question type")

// ErrMissingCanonicalAnswer indicates an exact-match question stored without
// any accepted answer variant.
var ErrMissingCanonicalAnswer = errors.New("question has no accepted answer")

// ErrMissingThresholds indicates the course threshold map has no cutoff
// sequence for a question's total marks.
var ErrMissingThresholds = errors.New("course has no thresholds for question marks")

// Result is the outcome of grading a single answer.
type Result struct {
	QuestionID uint
	Marks      int
}

// Scorer obtains a semantic similarity score for a descriptive answer from
// the external scoring service.
type Scorer interface {
	Score(ctx context.Context, embeddingURL, markingScheme, studentResponse string) (float64, error)
}

// Grader grades one student answer against its question.
type Grader interface {
	GradeAnswer(ctx context.Context, course models.Course, question models.Question, answer string) (Result, error)
}

// ExactMatchGrader grades MCQ and fill-in-the-blank answers by
// case-insensitive equality with the canonical accepted answer. A match earns
// the full question marks, anything else earns zero; there is no partial
// credit and additional stored variants are ignored.
type ExactMatchGrader struct{}

// GradeAnswer implements Grader.
func (ExactMatchGrader) GradeAnswer(_ context.Context, _ models.Course, question models.Question, answer string) (Result, error) {
	canonical, ok := question.CanonicalAnswer()
	if !ok {
		return Result{}, fmt.Errorf("question %d: %w", question.ID, ErrMissingCanonicalAnswer)
	}

	marks := 0
	if strings.EqualFold(answer, canonical) {
		marks = question.TotalMarks
	}

	return Result{QuestionID: question.ID, Marks: marks}, nil
}

// SemanticSimilarityGrader grades descriptive answers by sending the marking
// scheme and student response to the external scoring service and quantizing
// the returned similarity score through the course thresholds. Any service
// failure is propagated unchanged and aborts the caller's grading pass.
type SemanticSimilarityGrader struct {
	scorer Scorer
}

// NewSemanticSimilarityGrader builds a grader backed by the given scorer.
func NewSemanticSimilarityGrader(scorer Scorer) SemanticSimilarityGrader {
	return SemanticSimilarityGrader{scorer: scorer}
}

// GradeAnswer implements Grader.
func (g SemanticSimilarityGrader) GradeAnswer(ctx context.Context, course models.Course, question models.Question, answer string) (Result, error) {
	cutoffs, ok := course.ThresholdsFor(question.TotalMarks)
	if !ok {
		return Result{}, fmt.Errorf("course %s, question %d: %w", course.Code, question.ID, ErrMissingThresholds)
	}

	score, err := g.scorer.Score(ctx, course.EmbeddingURL, question.MarkingScheme, answer)
	if err != nil {
		return Result{}, fmt.Errorf("score question %d: %w", question.ID, err)
	}

	return Result{QuestionID: question.ID, Marks: Quantize(cutoffs, score)}, nil
}
