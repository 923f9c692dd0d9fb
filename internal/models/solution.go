package models

import "time"

// SolutionStatus tracks the grading lifecycle of a solution. Valid transitions
// are UNGRADED -> GRADED -> REGRADE_REQUESTED -> GRADED, with the last arrow
// repeatable.
type SolutionStatus string

const (
	// SolutionStatusUngraded marks a freshly submitted solution.
	SolutionStatusUngraded SolutionStatus = "UNGRADED"
	// SolutionStatusGraded marks a solution whose marks have been written.
	SolutionStatusGraded SolutionStatus = "GRADED"
	// SolutionStatusRegradeRequested marks a graded solution a student reopened.
	SolutionStatusRegradeRequested SolutionStatus = "REGRADE_REQUESTED"
)

// Solution is a student's complete submitted answer set for one assessment.
// The composite unique index enforces one solution per student per
// assessment. Version backs the optimistic check guarding concurrent grading
// writes.
type Solution struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AssessmentID    uint            `gorm:"not null;uniqueIndex:idx_solutions_student_assessment" json:"assessment_id"`
	StudentID       uint            `gorm:"not null;uniqueIndex:idx_solutions_student_assessment" json:"student_id"`
	ObtainedMarks   *int            `json:"obtained_marks"`
	DurationSeconds int             `json:"duration_seconds"`
	Status          SolutionStatus  `gorm:"size:32;not null;default:UNGRADED" json:"status"`
	LateSubmission  bool            `gorm:"not null;default:false" json:"late_submission"`
	Version         uint            `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Answers         []StudentAnswer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
	Assessment      Assessment      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assessment"`
	Student         Student         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// StudentAnswer is one answer inside a solution. Marks stays nil until the
// answer has been graded.
type StudentAnswer struct {
	ID               uint     `gorm:"primaryKey" json:"id"`
	SolutionID       uint     `gorm:"not null;index" json:"solution_id"`
	QuestionID       uint     `gorm:"not null" json:"question_id"`
	Position         int      `gorm:"not null" json:"position"`
	Answer           string   `gorm:"type:text;not null" json:"answer"`
	Marks            *int     `json:"marks"`
	RegradeRequested bool     `gorm:"not null;default:false" json:"regrade_requested"`
	Question         Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question"`
}

// IsGraded reports whether the solution carries final marks.
func (s Solution) IsGraded() bool {
	return s.Status == SolutionStatusGraded
}

// AnswerIndexByQuestion returns the index of the answer targeting questionID,
// or -1 when the question is not part of this solution.
func (s Solution) AnswerIndexByQuestion(questionID uint) int {
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			return i
		}
	}

	return -1
}

// RecomputeObtainedMarks sums every awarded mark, skipping answers that are
// still ungraded.
func (s *Solution) RecomputeObtainedMarks() {
	total := 0
	for i := range s.Answers {
		if s.Answers[i].Marks != nil {
			total += *s.Answers[i].Marks
		}
	}

	s.ObtainedMarks = &total
}
