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

type evaluationService struct {
	repo      repositories.Repository
	gate      *Gate
	logger    *slog.Logger
	validator *validator.Validator
}

func NewEvaluationService(repo repositories.Repository, gate *Gate, logger *slog.Logger, validator *validator.Validator) EvaluationService {
	return &evaluationService{
		repo:      repo,
		gate:      gate,
		logger:    logger,
		validator: validator,
	}
}

// SubmitEvaluation checks student, course, enrollment, duplicate and score,
// in that order, then stores one row that both the course and the student
// list are read from.
func (s *evaluationService) SubmitEvaluation(ctx context.Context, caller models.Address, courseID uint, req *SubmitEvaluationRequest) (*models.Evaluation, error) {
	s.logger.Info("Submitting evaluation", "caller", caller, "course_id", courseID)

	var evaluation *models.Evaluation
	_, err := s.gate.Execute(ctx, models.OpSubmitEvaluation, caller, func(tx *gorm.DB, block Block) (interface{}, error) {
		if err := requireStudent(ctx, s.repo, tx, caller, ErrNotStudent); err != nil {
			return nil, err
		}
		if _, err := loadCourse(ctx, s.repo, tx, courseID); err != nil {
			return nil, err
		}

		enrolled, err := s.repo.Enrollment().IsEnrolled(ctx, tx, courseID, caller)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, fmt.Errorf("%w: course %d", ErrNotEnrolled, courseID)
		}

		exists, err := s.repo.Evaluation().Exists(ctx, tx, courseID, caller)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: course %d", ErrAlreadyEvaluated, courseID)
		}

		if errs := s.validator.GetBusinessValidator().ValidateScore(req.Score); len(errs) > 0 {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScore, errs)
		}

		evaluation = &models.Evaluation{
			LedgerSeq:   block.Seq,
			CourseID:    courseID,
			Student:     caller,
			Score:       req.Score,
			Comment:     req.Comment,
			IsAnonymous: req.IsAnonymous,
			Timestamp:   block.Time,
		}
		if err := s.repo.Evaluation().Create(ctx, tx, evaluation); err != nil {
			return nil, err
		}
		return evaluationPayload{
			CourseID:    courseID,
			Student:     caller,
			Score:       req.Score,
			Comment:     req.Comment,
			IsAnonymous: req.IsAnonymous,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Evaluation submitted", "course_id", courseID, "seq", evaluation.LedgerSeq)
	return evaluation, nil
}

// GetCourseEvaluations returns full records, student included even for
// anonymous entries. Clients redact anonymous authors before display.
func (s *evaluationService) GetCourseEvaluations(ctx context.Context, caller models.Address, courseID uint) ([]*models.Evaluation, error) {
	var evaluations []*models.Evaluation
	err := s.gate.View(func() error {
		course, err := loadCourse(ctx, s.repo, nil, courseID)
		if err != nil {
			return err
		}
		if err := s.canViewCourseEvaluations(ctx, caller, course); err != nil {
			return err
		}
		evaluations, err = s.repo.Evaluation().GetByCourse(ctx, nil, courseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (s *evaluationService) canViewCourseEvaluations(ctx context.Context, caller models.Address, course *models.Course) error {
	user, err := loadUser(ctx, s.repo, nil, caller)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: %s is not registered", ErrUnauthorized, caller)
	}

	switch user.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		if course.Teacher == caller {
			return nil
		}
	case models.RoleStudent:
	}
	return fmt.Errorf("%w: %s does not teach course %d", ErrUnauthorized, caller, course.ID)
}

func (s *evaluationService) GetStudentEvaluations(ctx context.Context, caller models.Address) ([]*models.Evaluation, error) {
	var evaluations []*models.Evaluation
	err := s.gate.View(func() error {
		if err := requireStudent(ctx, s.repo, nil, caller, ErrUnauthorized); err != nil {
			return err
		}
		var err error
		evaluations, err = s.repo.Evaluation().GetByStudent(ctx, nil, caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return evaluations, nil
}
