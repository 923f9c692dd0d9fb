package models

import "gorm.io/datatypes"

// QuestionType discriminates which grading strategy applies to a question.
type QuestionType string

const (
	// QuestionTypeMCQ is a multiple-choice question.
	QuestionTypeMCQ QuestionType = "MCQ"
	// QuestionTypeFillInTheBlank is a short free-text question with canonical answers.
	QuestionTypeFillInTheBlank QuestionType = "FILL_IN_THE_BLANK"
	// QuestionTypeDescriptive is a long-form question graded by semantic similarity.
	QuestionTypeDescriptive QuestionType = "DESCRIPTIVE"
)

// Question belongs to an assessment. AcceptedAnswers holds the marking-scheme
// answer variants for MCQ and fill-in-the-blank questions; grading compares
// against the first entry of the first variant only. MarkingScheme carries the
// model answer text used for descriptive questions.
type Question struct {
	ID              uint                          `gorm:"primaryKey" json:"id"`
	AssessmentID    uint                          `gorm:"not null;index" json:"assessment_id"`
	Type            QuestionType                  `gorm:"size:32;not null" json:"type"`
	Text            string                        `gorm:"size:200;not null" json:"text"`
	TotalMarks      int                           `gorm:"not null" json:"total_marks"`
	AcceptedAnswers datatypes.JSONSlice[[]string] `json:"accepted_answers"`
	Options         datatypes.JSONSlice[string]   `json:"options"`
	MarkingScheme   string                        `gorm:"type:text" json:"marking_scheme"`
}

// CanonicalAnswer returns the single accepted answer used by exact-match
// grading, or false when no variant is stored.
func (q Question) CanonicalAnswer() (string, bool) {
	if len(q.AcceptedAnswers) == 0 || len(q.AcceptedAnswers[0]) == 0 {
		return "", false
	}

	return q.AcceptedAnswers[0][0], true
}
