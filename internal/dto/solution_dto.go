package dto

import (
	"time"

	"github.com/arka-labs/gradeflow-api/internal/models"
)

// AnswerSubmission is one answer inside a solution submission.
type AnswerSubmission struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer" validate:"required"`
}

// SolutionSubmitRequest describes the payload for submitting a solution.
type SolutionSubmitRequest struct {
	AssessmentID    uint               `json:"assessment_id" validate:"required,gt=0"`
	StudentID       uint               `json:"student_id" validate:"required,gt=0"`
	DurationSeconds int                `json:"duration_seconds" validate:"omitempty,gte=0"`
	Answers         []AnswerSubmission `json:"answers" validate:"required,min=1,dive"`
}

// ManualGradingRequest carries teacher-entered marks keyed by answer id. The
// marking must cover every answer on the solution.
type ManualGradingRequest struct {
	Marks map[uint]int `json:"marks" validate:"required,min=1"`
}

// RegradeRequestPayload identifies the student asking for a regrade when the
// caller is not authenticated.
type RegradeRequestPayload struct {
	StudentID uint `json:"student_id" validate:"required,gt=0"`
}

// StudentAnswerResponse serializes a single graded or ungraded answer.
type StudentAnswerResponse struct {
	ID               uint   `json:"id"`
	QuestionID       uint   `json:"question_id"`
	Answer           string `json:"answer"`
	Marks            *int   `json:"marks"`
	RegradeRequested bool   `json:"regrade_requested"`
}

// SolutionResponse is returned to API clients when viewing solutions.
type SolutionResponse struct {
	ID              uint                    `json:"id"`
	AssessmentID    uint                    `json:"assessment_id"`
	StudentID       uint                    `json:"student_id"`
	ObtainedMarks   *int                    `json:"obtained_marks"`
	Status          models.SolutionStatus   `json:"status"`
	LateSubmission  bool                    `json:"late_submission"`
	DurationSeconds int                     `json:"duration_seconds"`
	CreatedAt       time.Time               `json:"created_at"`
	Answers         []StudentAnswerResponse `json:"answers"`
}

// NewSolutionResponse maps a solution model to its API representation.
func NewSolutionResponse(solution models.Solution) SolutionResponse {
	answers := make([]StudentAnswerResponse, 0, len(solution.Answers))
	for _, answer := range solution.Answers {
		answers = append(answers, StudentAnswerResponse{
			ID:               answer.ID,
			QuestionID:       answer.QuestionID,
			Answer:           answer.Answer,
			Marks:            answer.Marks,
			RegradeRequested: answer.RegradeRequested,
		})
	}

	return SolutionResponse{
		ID:              solution.ID,
		AssessmentID:    solution.AssessmentID,
		StudentID:       solution.StudentID,
		ObtainedMarks:   solution.ObtainedMarks,
		Status:          solution.Status,
		LateSubmission:  solution.LateSubmission,
		DurationSeconds: solution.DurationSeconds,
		CreatedAt:       solution.CreatedAt,
		Answers:         answers,
	}
}
