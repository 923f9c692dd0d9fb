package models

import "time"

// Class links an assessment to the course whose scoring configuration it uses.
type Class struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:50;not null" json:"name"`
	CourseCode string    `gorm:"size:16;not null;index" json:"course_code"`
	TeacherID  uint      `gorm:"not null" json:"teacher_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
