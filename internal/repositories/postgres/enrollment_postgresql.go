package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/evaluation-registry/internal/cache"
	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewEnrollmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

// Mark inserts (course, student) unless present. An existing row keeps its
// original marking position.
func (e *EnrollmentPostgreSQL) Mark(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (bool, error) {
	result := e.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(enrollment)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark enrollment: %w", result.Error)
	}

	created := result.RowsAffected > 0
	if created {
		cache.InvalidateEnrollmentCache(ctx, e.cacheManager, enrollment.CourseID, enrollment.Student.String())
	}
	return created, nil
}

func (e *EnrollmentPostgreSQL) IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uint, student models.Address) (bool, error) {
	var count int64
	err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND student = ?", courseID, student).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

// GetCourseStudents returns the roster in marking order
func (e *EnrollmentPostgreSQL) GetCourseStudents(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Address, error) {
	fetch := func() ([]models.Address, error) {
		students := make([]models.Address, 0)
		err := e.getDB(tx).WithContext(ctx).
			Model(&models.Enrollment{}).
			Where("course_id = ?", courseID).
			Order("marked_seq ASC, ordinal ASC").
			Pluck("student", &students).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get course students: %w", err)
		}
		return students, nil
	}
	if tx != nil {
		return fetch()
	}

	students := make([]models.Address, 0)
	err := e.cacheManager.Enrollment.CacheOrExecute(ctx, fmt.Sprintf("course:%d", courseID), &students, cache.EnrollmentCacheConfig.TTL, func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// GetStudentCourses joins the student's enrollments to the catalog
func (e *EnrollmentPostgreSQL) GetStudentCourses(ctx context.Context, tx *gorm.DB, student models.Address) ([]*models.Course, error) {
	fetch := func() ([]*models.Course, error) {
		courses := make([]*models.Course, 0)
		err := e.getDB(tx).WithContext(ctx).
			Model(&models.Course{}).
			Joins("JOIN enrollments ON enrollments.course_id = courses.id").
			Where("enrollments.student = ?", student).
			Order("courses.id ASC").
			Find(&courses).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get student courses: %w", err)
		}
		return courses, nil
	}
	if tx != nil {
		return fetch()
	}

	courses := make([]*models.Course, 0)
	err := e.cacheManager.Enrollment.CacheOrExecute(ctx, "student:"+student.String(), &courses, cache.EnrollmentCacheConfig.TTL, func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (e *EnrollmentPostgreSQL) InvalidateAll(ctx context.Context) {
	cache.BatchInvalidate(ctx, e.cacheManager.Enrollment, []string{"course:*", "student:*"})
}
