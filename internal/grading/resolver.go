package grading

import (
	"fmt"

	"github.com/arka-labs/gradeflow-api/internal/models"
)

// Resolver maps a question type to its grader. The grader set is closed:
// unknown or missing types fail immediately instead of defaulting to a no-op.
type Resolver struct {
	exact    ExactMatchGrader
	semantic SemanticSimilarityGrader
}

// NewResolver builds a resolver whose descriptive grader uses the given scorer.
func NewResolver(scorer Scorer) Resolver {
	return Resolver{semantic: NewSemanticSimilarityGrader(scorer)}
}

// For returns the grader bound to the question type.
func (r Resolver) For(questionType models.QuestionType) (Grader, error) {
	switch questionType {
	case models.QuestionTypeMCQ, models.QuestionTypeFillInTheBlank:
		return r.exact, nil
	case models.QuestionTypeDescriptive:
		return r.semantic, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedQuestionType, questionType)
	}
}
