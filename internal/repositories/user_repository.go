package repositories

import (
	"context"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"gorm.io/gorm"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Role   *models.Role // Restrict to one role
	Limit  int          // Page size, 0 for all
	Offset int          // Offset for pagination
}

// Every method takes an optional tx. Reads made with tx == nil may be served
// from cache; reads inside a transaction always hit the database.

// UserRepository stores registered users keyed by address
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateEmail(ctx context.Context, tx *gorm.DB, address models.Address, email string) error
	UpdatePasswordHash(ctx context.Context, tx *gorm.DB, address models.Address, hash models.PasswordHash) error

	GetByAddress(ctx context.Context, tx *gorm.DB, address models.Address) (*models.User, error)
	GetByLoginID(ctx context.Context, tx *gorm.DB, loginID string) (*models.User, error)

	// List returns users in registration order
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	ExistsByAddress(ctx context.Context, tx *gorm.DB, address models.Address) (bool, error)
	HasRole(ctx context.Context, tx *gorm.DB, address models.Address, role models.Role) (bool, error)
}
