package repositories

import (
	"context"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"gorm.io/gorm"
)

// CourseRepository stores the append-only course catalog
type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	// List returns every course ordered by id
	List(ctx context.Context, tx *gorm.DB) ([]*models.Course, error)
	GetByTeacher(ctx context.Context, tx *gorm.DB, teacher models.Address) ([]*models.Course, error)

	// Count is also the next course id
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

// EnrollmentRepository stores the "has taken course" relation
type EnrollmentRepository interface {
	// Mark inserts the pair if absent and reports whether a row was created
	Mark(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (bool, error)
	IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uint, student models.Address) (bool, error)

	// GetCourseStudents returns addresses in marking order
	GetCourseStudents(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Address, error)
	// GetStudentCourses returns the courses a student is marked for, by course id
	GetStudentCourses(ctx context.Context, tx *gorm.DB, student models.Address) ([]*models.Course, error)

	// InvalidateAll drops every cached roster after a bulk mutation
	InvalidateAll(ctx context.Context)
}

// EvaluationRepository stores evaluations, indexed by course and by student
type EvaluationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, evaluation *models.Evaluation) error
	Exists(ctx context.Context, tx *gorm.DB, courseID uint, student models.Address) (bool, error)

	// Both lists are in submission order
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Evaluation, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, student models.Address) ([]*models.Evaluation, error)
}

// LedgerRepository stores the hash-chained mutation log
type LedgerRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) error
	// Last returns ErrNotFound on an empty ledger
	Last(ctx context.Context, tx *gorm.DB) (*models.LedgerEntry, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	// List returns up to limit entries with seq >= fromSeq
	List(ctx context.Context, tx *gorm.DB, fromSeq uint64, limit int) ([]*models.LedgerEntry, error)
}
