package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/evaluation-registry/internal/cache"
	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(),
		cacheManager: cacheManager,
	}
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

// Create inserts a user; the login_id unique index backs the id -> address lookup
func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, user.Address.String())
	return nil
}

// UpdateEmail replaces a user's email
func (u *UserPostgreSQL) UpdateEmail(ctx context.Context, tx *gorm.DB, address models.Address, email string) error {
	return u.updateColumn(ctx, tx, address, "email", email)
}

// UpdatePasswordHash replaces a user's password digest
func (u *UserPostgreSQL) UpdatePasswordHash(ctx context.Context, tx *gorm.DB, address models.Address, hash models.PasswordHash) error {
	return u.updateColumn(ctx, tx, address, "password_hash", hash)
}

func (u *UserPostgreSQL) updateColumn(ctx context.Context, tx *gorm.DB, address models.Address, column string, value interface{}) error {
	result := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("address = ?", address).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", address, repositories.ErrNotFound)
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, address.String())
	return nil
}

// GetByAddress retrieves a user, cached outside transactions
func (u *UserPostgreSQL) GetByAddress(ctx context.Context, tx *gorm.DB, address models.Address) (*models.User, error) {
	fetch := func() (*models.User, error) {
		var user models.User
		if err := u.getDB(tx).WithContext(ctx).Where("address = ?", address).First(&user).Error; err != nil {
			return nil, wrapNotFound(err, "failed to get user %s", address)
		}
		return &user, nil
	}
	if tx != nil {
		return fetch()
	}

	// PasswordHash is not serialized, so cached records come back without it.
	// Credential checks run inside a transaction and never see the cache.
	var user models.User
	err := u.cacheManager.User.CacheOrExecute(ctx, "address:"+address.String(), &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByLoginID resolves the id -> address index
func (u *UserPostgreSQL) GetByLoginID(ctx context.Context, tx *gorm.DB, loginID string) (*models.User, error) {
	var user models.User
	err := u.getDB(tx).WithContext(ctx).Where("login_id = ?", loginID).First(&user).Error
	if err != nil {
		return nil, wrapNotFound(err, "failed to get user by login id")
	}
	return &user, nil
}

// List returns users in registration order
func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.helpers.ApplyUserFilters(u.getDB(tx).WithContext(ctx).Model(&models.User{}), filters)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []*models.User
	err := u.helpers.ApplyPagination(query, filters.Limit, filters.Offset).
		Order("registered_seq ASC").
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func (u *UserPostgreSQL) ExistsByAddress(ctx context.Context, tx *gorm.DB, address models.Address) (bool, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("address = ?", address).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) HasRole(ctx context.Context, tx *gorm.DB, address models.Address, role models.Role) (bool, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("address = ? AND role = ? AND is_registered = ?", address, role, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user role: %w", err)
	}
	return count > 0, nil
}
