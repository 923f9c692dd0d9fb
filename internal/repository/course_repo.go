package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/arka-labs/gradeflow-api/internal/models"
)

// CourseRepository defines data operations for courses.
type CourseRepository interface {
	GetByCode(ctx context.Context, code string) (models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByCode(ctx context.Context, code string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&course).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}
