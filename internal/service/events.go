package service

import (
	"context"
	"time"
)

// GradedEvent is the structured completion result emitted when a solution
// reaches GRADED. It carries everything the notification side needs so
// consumers never read the grading store.
type GradedEvent struct {
	SolutionID     uint      `json:"solution_id"`
	AssessmentID   uint      `json:"assessment_id"`
	AssessmentName string    `json:"assessment_name"`
	StudentID      uint      `json:"student_id"`
	StudentName    string    `json:"student_name"`
	StudentEmail   string    `json:"student_email"`
	ObtainedMarks  int       `json:"obtained_marks"`
	TotalMarks     int       `json:"total_marks"`
	GradedAt       time.Time `json:"graded_at"`
}

// GradedEventPublisher hands completed gradings to the result topic.
type GradedEventPublisher interface {
	PublishGraded(ctx context.Context, event GradedEvent) error
}
