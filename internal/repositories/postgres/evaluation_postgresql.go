package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"gorm.io/gorm"
)

// Evaluations are not cached: the course list is only visible to the
// course's teacher and the admin, and both lists change on every submission.
type EvaluationPostgreSQL struct {
	db *gorm.DB
}

func NewEvaluationPostgreSQL(db *gorm.DB) repositories.EvaluationRepository {
	return &EvaluationPostgreSQL{db: db}
}

func (e *EvaluationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

// Create inserts one row, which is visible through both the course and the
// student index
func (e *EvaluationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, evaluation *models.Evaluation) error {
	if err := e.getDB(tx).WithContext(ctx).Create(evaluation).Error; err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	return nil
}

// Exists is the duplicate check, served by the (course_id, student) unique index
func (e *EvaluationPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, courseID uint, student models.Address) (bool, error) {
	var count int64
	err := e.getDB(tx).WithContext(ctx).
		Model(&models.Evaluation{}).
		Where("course_id = ? AND student = ?", courseID, student).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check evaluation: %w", err)
	}
	return count > 0, nil
}

func (e *EvaluationPostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Evaluation, error) {
	evaluations := make([]*models.Evaluation, 0)
	err := e.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("ledger_seq ASC").
		Find(&evaluations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get course evaluations: %w", err)
	}
	return evaluations, nil
}

func (e *EvaluationPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, student models.Address) ([]*models.Evaluation, error) {
	evaluations := make([]*models.Evaluation, 0)
	err := e.getDB(tx).WithContext(ctx).
		Where("student = ?", student).
		Order("ledger_seq ASC").
		Find(&evaluations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get student evaluations: %w", err)
	}
	return evaluations, nil
}
