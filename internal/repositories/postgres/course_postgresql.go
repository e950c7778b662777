package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/evaluation-registry/internal/cache"
	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// Create appends a course; the caller assigns the sequential id
func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.getDB(tx).WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID, course.Teacher.String())
	return nil
}

// Update overwrites name, credits and teacher; is_active is left alone
func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx).WithContext(ctx)

	var previous models.Course
	if err := db.Select("id", "teacher").Where("id = ?", course.ID).First(&previous).Error; err != nil {
		return wrapNotFound(err, "failed to load course %d", course.ID)
	}

	err := db.Model(&models.Course{}).
		Where("id = ?", course.ID).
		Updates(map[string]interface{}{
			"name":    course.Name,
			"credits": course.Credits,
			"teacher": course.Teacher,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID, previous.Teacher.String(), course.Teacher.String())
	return nil
}

// SetActive toggles a course without touching other fields
func (c *CoursePostgreSQL) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	db := c.getDB(tx).WithContext(ctx)

	var course models.Course
	if err := db.Select("id", "teacher").Where("id = ?", id).First(&course).Error; err != nil {
		return wrapNotFound(err, "failed to load course %d", id)
	}

	if err := db.Model(&models.Course{}).Where("id = ?", id).Update("is_active", active).Error; err != nil {
		return fmt.Errorf("failed to set course active flag: %w", err)
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id, course.Teacher.String())
	return nil
}

// GetByID retrieves a course by id, cached outside transactions
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	fetch := func() (*models.Course, error) {
		var course models.Course
		if err := c.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
			return nil, wrapNotFound(err, "failed to get course %d", id)
		}
		return &course, nil
	}
	if tx != nil {
		return fetch()
	}

	var course models.Course
	err := c.cacheManager.Course.CacheOrExecute(ctx, fmt.Sprintf("id:%d", id), &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns the full catalog ordered by id
func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Course, error) {
	fetch := func() ([]*models.Course, error) {
		courses := make([]*models.Course, 0)
		if err := c.getDB(tx).WithContext(ctx).Order("id ASC").Find(&courses).Error; err != nil {
			return nil, fmt.Errorf("failed to list courses: %w", err)
		}
		return courses, nil
	}
	if tx != nil {
		return fetch()
	}

	courses := make([]*models.Course, 0)
	err := c.cacheManager.Course.CacheOrExecute(ctx, "list", &courses, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// GetByTeacher returns the courses assigned to a teacher ordered by id
func (c *CoursePostgreSQL) GetByTeacher(ctx context.Context, tx *gorm.DB, teacher models.Address) ([]*models.Course, error) {
	fetch := func() ([]*models.Course, error) {
		courses := make([]*models.Course, 0)
		err := c.getDB(tx).WithContext(ctx).
			Where("teacher = ?", teacher).
			Order("id ASC").
			Find(&courses).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get teacher courses: %w", err)
		}
		return courses, nil
	}
	if tx != nil {
		return fetch()
	}

	courses := make([]*models.Course, 0)
	err := c.cacheManager.Course.CacheOrExecute(ctx, "teacher:"+teacher.String(), &courses, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *CoursePostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := c.getDB(tx).WithContext(ctx).Model(&models.Course{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return count, nil
}
