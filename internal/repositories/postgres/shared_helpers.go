package postgres

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common query builders
type SharedHelpers struct{}

func NewSharedHelpers() *SharedHelpers {
	return &SharedHelpers{}
}

// ApplyUserFilters applies role and pagination filters to user queries
func (h *SharedHelpers) ApplyUserFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	return query
}

// ApplyPagination applies limit/offset when a limit is set
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// wrapNotFound turns gorm's not-found into the repository sentinel
func wrapNotFound(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", msg, repositories.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
