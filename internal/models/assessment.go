package models

import "time"

// GradingMode selects how a submitted solution is graded.
type GradingMode string

const (
	// GradingModeAutomatic grades every answer through its strategy.
	GradingModeAutomatic GradingMode = "AUTOMATIC"
	// GradingModeManual holds descriptive answers for a teacher and
	// auto-grades the rest.
	GradingModeManual GradingMode = "MANUAL"
)

// Assessment represents a timed assessment published for a class.
type Assessment struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	ClassID            uint       `gorm:"not null" json:"class_id"`
	Name               string     `gorm:"size:50;not null" json:"name"`
	Description        string     `gorm:"size:150" json:"description"`
	OpenDate           time.Time  `gorm:"not null" json:"open_date"`
	DueDate            time.Time  `gorm:"not null" json:"due_date"`
	DurationSeconds    int        `gorm:"not null" json:"duration_seconds"`
	TotalMarks         int        `gorm:"not null" json:"total_marks"`
	AllowManualGrading bool       `gorm:"not null;default:false" json:"allow_manual_grading"`
	Cancelled          bool       `gorm:"not null;default:false" json:"cancelled"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Class              Class      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"class"`
	Questions          []Question `json:"questions"`
}

// GradingMode returns the grading mode implied by the manual-grading flag.
func (a Assessment) GradingMode() GradingMode {
	if a.AllowManualGrading {
		return GradingModeManual
	}

	return GradingModeAutomatic
}

// IsPastDue returns true when the assessment deadline has already passed.
func (a Assessment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
