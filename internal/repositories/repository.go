package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates the registry's persistent stores
type Repository interface {
	// Identity
	User() UserRepository

	// Catalog and enrollment
	Course() CourseRepository
	Enrollment() EnrollmentRepository

	// Evaluations
	Evaluation() EvaluationRepository

	// Append-only mutation log
	Ledger() LedgerRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// ClearCache drops every cached projection
	ClearCache(ctx context.Context) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
