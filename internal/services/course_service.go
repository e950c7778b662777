package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"github.com/SAP-F-2025/evaluation-registry/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	gate      *Gate
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, gate *Gate, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		gate:      gate,
		logger:    logger,
		validator: validator,
	}
}

// ===== MUTATIONS =====

func (s *courseService) AddCourse(ctx context.Context, caller models.Address, req *CourseRequest) (*models.CourseCreatedResponse, error) {
	s.logger.Info("Adding course", "caller", caller, "name", req.Name)

	var course *models.Course
	entry, err := s.gate.Execute(ctx, models.OpAddCourse, caller, func(tx *gorm.DB, block Block) (interface{}, error) {
		if err := requireAdmin(ctx, s.repo, tx, caller); err != nil {
			return nil, err
		}
		teacher, err := s.validateCourseRequest(ctx, tx, req)
		if err != nil {
			return nil, err
		}

		next, err := s.repo.Course().Count(ctx, tx)
		if err != nil {
			return nil, err
		}
		course = &models.Course{
			ID:         uint(next),
			Name:       req.Name,
			Credits:    req.Credits,
			Teacher:    teacher,
			IsActive:   true,
			CreatedSeq: block.Seq,
		}
		if err := s.repo.Course().Create(ctx, tx, course); err != nil {
			return nil, err
		}
		return newCoursePayload(course), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course added", "course_id", course.ID, "seq", entry.Seq)
	return &models.CourseCreatedResponse{ID: course.ID, Seq: entry.Seq}, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, caller models.Address, id uint, req *CourseRequest) (*models.Course, error) {
	s.logger.Info("Updating course", "caller", caller, "course_id", id)

	var course *models.Course
	_, err := s.gate.Execute(ctx, models.OpUpdateCourse, caller, func(tx *gorm.DB, block Block) (interface{}, error) {
		if err := requireAdmin(ctx, s.repo, tx, caller); err != nil {
			return nil, err
		}
		current, err := loadCourse(ctx, s.repo, tx, id)
		if err != nil {
			return nil, err
		}
		teacher, err := s.validateCourseRequest(ctx, tx, req)
		if err != nil {
			return nil, err
		}

		current.Name = req.Name
		current.Credits = req.Credits
		current.Teacher = teacher
		if err := s.repo.Course().Update(ctx, tx, current); err != nil {
			return nil, err
		}
		course = current
		return newCoursePayload(course), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course updated", "course_id", id)
	return course, nil
}

func (s *courseService) SetCourseActive(ctx context.Context, caller models.Address, id uint, active bool) (*models.Course, error) {
	var course *models.Course
	_, err := s.gate.Execute(ctx, models.OpSetCourseActive, caller, func(tx *gorm.DB, block Block) (interface{}, error) {
		if err := requireAdmin(ctx, s.repo, tx, caller); err != nil {
			return nil, err
		}
		current, err := loadCourse(ctx, s.repo, tx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Course().SetActive(ctx, tx, id, active); err != nil {
			return nil, err
		}
		current.IsActive = active
		course = current
		return courseActivePayload{ID: id, Active: active}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course active flag set", "course_id", id, "active", active)
	return course, nil
}

// validateCourseRequest checks credits before the teacher and returns the
// normalized teacher address
func (s *courseService) validateCourseRequest(ctx context.Context, tx *gorm.DB, req *CourseRequest) (models.Address, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", invalidInput(err)
	}
	if errs := s.validator.GetBusinessValidator().ValidateCourseFields(req.Credits); len(errs) > 0 {
		return "", fmt.Errorf("%w: %w", ErrInvalidCredits, errs)
	}

	teacher := models.NormalizeAddress(req.Teacher)
	ok, err := s.repo.User().HasRole(ctx, tx, teacher, models.RoleTeacher)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidTeacher, teacher)
	}
	return teacher, nil
}

// ===== VIEWS =====

func (s *courseService) GetAllCourses(ctx context.Context) ([]*models.Course, error) {
	var courses []*models.Course
	err := s.gate.View(func() error {
		var err error
		courses, err = s.repo.Course().List(ctx, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *courseService) GetCourseDetail(ctx context.Context, id uint) (*models.Course, error) {
	var course *models.Course
	err := s.gate.View(func() error {
		var err error
		course, err = loadCourse(ctx, s.repo, nil, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) GetTeacherCourses(ctx context.Context, caller models.Address) ([]*models.Course, error) {
	var courses []*models.Course
	err := s.gate.View(func() error {
		if err := requireTeacher(ctx, s.repo, nil, caller); err != nil {
			return err
		}
		var err error
		courses, err = s.repo.Course().GetByTeacher(ctx, nil, caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}
