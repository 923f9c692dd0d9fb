package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/arka-labs/gradeflow-api/internal/models"
)

// ErrVersionConflict indicates a concurrent writer updated the solution
// between read and write. Queued grading jobs treat this as retryable.
var ErrVersionConflict = errors.New("solution was modified concurrently")

// SolutionRepository defines data operations for solutions.
type SolutionRepository interface {
	Create(ctx context.Context, solution *models.Solution) error
	GetByID(ctx context.Context, id uint) (models.Solution, error)
	GetByAssessmentAndStudent(ctx context.Context, assessmentID, studentID uint) (models.Solution, error)
	// UpdateGradingState persists status, obtained marks, and per-answer
	// marks/regrade flags under an optimistic version check.
	UpdateGradingState(ctx context.Context, solution *models.Solution) error
}

type solutionRepository struct {
	db *gorm.DB
}

// NewSolutionRepository instantiates the repository.
func NewSolutionRepository(db *gorm.DB) SolutionRepository {
	return &solutionRepository{db: db}
}

func (r *solutionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Solution{}).
		Preload("Student").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Answers.Question")
}

func (r *solutionRepository) Create(ctx context.Context, solution *models.Solution) error {
	return r.db.WithContext(ctx).Create(solution).Error
}

func (r *solutionRepository) GetByID(ctx context.Context, id uint) (models.Solution, error) {
	var solution models.Solution
	if err := r.baseQuery(ctx).First(&solution, id).Error; err != nil {
		return models.Solution{}, err
	}

	return solution, nil
}

func (r *solutionRepository) GetByAssessmentAndStudent(ctx context.Context, assessmentID, studentID uint) (models.Solution, error) {
	var solution models.Solution
	if err := r.baseQuery(ctx).
		Where("assessment_id = ?", assessmentID).
		Where("student_id = ?", studentID).
		First(&solution).Error; err != nil {
		return models.Solution{}, err
	}

	return solution, nil
}

func (r *solutionRepository) UpdateGradingState(ctx context.Context, solution *models.Solution) error {
	current := solution.Version
	next := current + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Solution{}).
			Where("id = ? AND version = ?", solution.ID, current).
			Updates(map[string]interface{}{
				"obtained_marks": solution.ObtainedMarks,
				"status":         solution.Status,
				"version":        next,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}

		for i := range solution.Answers {
			answer := &solution.Answers[i]
			if err := tx.Model(&models.StudentAnswer{}).
				Where("id = ?", answer.ID).
				Updates(map[string]interface{}{
					"marks":             answer.Marks,
					"regrade_requested": answer.RegradeRequested,
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	solution.Version = next

	return nil
}
