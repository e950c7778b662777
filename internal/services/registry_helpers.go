package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
)

// loadUser returns nil without error for an unknown address
func loadUser(ctx context.Context, repo repositories.Repository, tx *gorm.DB, address models.Address) (*models.User, error) {
	if address.IsZero() {
		return nil, nil
	}
	user, err := repo.User().GetByAddress(ctx, tx, address)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user %s: %w", address, err)
	}
	return user, nil
}

func requireAdmin(ctx context.Context, repo repositories.Repository, tx *gorm.DB, caller models.Address) error {
	user, err := loadUser(ctx, repo, tx, caller)
	if err != nil {
		return err
	}
	if user == nil || !user.Role.CanAdminister() {
		return fmt.Errorf("%w: %s is not the admin", ErrUnauthorized, caller)
	}
	return nil
}

func requireTeacher(ctx context.Context, repo repositories.Repository, tx *gorm.DB, caller models.Address) error {
	user, err := loadUser(ctx, repo, tx, caller)
	if err != nil {
		return err
	}
	if user == nil || !user.Role.CanTeach() {
		return fmt.Errorf("%w: %s is not a registered teacher", ErrUnauthorized, caller)
	}
	return nil
}

// requireStudent fails with denied, which differs between operations
func requireStudent(ctx context.Context, repo repositories.Repository, tx *gorm.DB, caller models.Address, denied error) error {
	user, err := loadUser(ctx, repo, tx, caller)
	if err != nil {
		return err
	}
	if user == nil || !user.Role.CanEvaluate() {
		return fmt.Errorf("%w: %s is not a registered student", denied, caller)
	}
	return nil
}

func loadCourse(ctx context.Context, repo repositories.Repository, tx *gorm.DB, id uint) (*models.Course, error) {
	course, err := repo.Course().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrCourseNotFound, id)
		}
		return nil, err
	}
	return course, nil
}
