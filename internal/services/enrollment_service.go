package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"github.com/SAP-F-2025/evaluation-registry/internal/validator"
)

type enrollmentService struct {
	repo      repositories.Repository
	gate      *Gate
	logger    *slog.Logger
	validator *validator.Validator
}

func NewEnrollmentService(repo repositories.Repository, gate *Gate, logger *slog.Logger, validator *validator.Validator) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		gate:      gate,
		logger:    logger,
		validator: validator,
	}
}

// MarkStudentCourse is idempotent on state. A repeated mark still commits a
// ledger entry, recorded with created=false.
func (s *enrollmentService) MarkStudentCourse(ctx context.Context, caller models.Address, courseID uint, req *MarkStudentRequest) error {
	s.logger.Info("Marking student course", "caller", caller, "course_id", courseID, "student", req.Student)

	var created bool
	entry, err := s.gate.Execute(ctx, models.OpMarkStudentCourse, caller, func(tx *gorm.DB, block Block) (interface{}, error) {
		if err := requireAdmin(ctx, s.repo, tx, caller); err != nil {
			return nil, err
		}
		if _, err := loadCourse(ctx, s.repo, tx, courseID); err != nil {
			return nil, err
		}
		if err := s.validator.Validate(req); err != nil {
			return nil, invalidInput(err)
		}

		student := models.NormalizeAddress(req.Student)
		var err error
		created, err = s.repo.Enrollment().Mark(ctx, tx, &models.Enrollment{
			CourseID:  courseID,
			Student:   student,
			MarkedSeq: block.Seq,
		})
		if err != nil {
			return nil, err
		}
		return markStudentPayload{CourseID: courseID, Student: student, Created: created}, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Student course marked", "course_id", courseID, "created", created, "seq", entry.Seq)
	return nil
}

func (s *enrollmentService) GetCourseStudents(ctx context.Context, courseID uint) (*models.CourseStudentsResponse, error) {
	var students []models.Address
	err := s.gate.View(func() error {
		if _, err := loadCourse(ctx, s.repo, nil, courseID); err != nil {
			return err
		}
		var err error
		students, err = s.repo.Enrollment().GetCourseStudents(ctx, nil, courseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &models.CourseStudentsResponse{CourseID: courseID, Students: students}, nil
}

func (s *enrollmentService) GetStudentTakenCourses(ctx context.Context, caller models.Address) ([]*models.Course, error) {
	var courses []*models.Course
	err := s.gate.View(func() error {
		if err := requireStudent(ctx, s.repo, nil, caller, ErrUnauthorized); err != nil {
			return err
		}
		var err error
		courses, err = s.repo.Enrollment().GetStudentCourses(ctx, nil, caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}
