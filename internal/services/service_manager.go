package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/evaluation-registry/internal/events"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"github.com/SAP-F-2025/evaluation-registry/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Admin written by the genesis entry on an empty ledger
	Admin AdminAccount

	// InsecureAdminLoginBypass lets the admin log in as ADMIN without a password
	InsecureAdminLoginBypass bool

	// ImportExport enables spreadsheet enrollment import and ledger export
	ImportExport ServiceConfig
}

type ServiceConfig struct {
	Enabled bool
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	gate *Gate

	// Service instances
	accessService       AccessService
	courseService       CourseService
	enrollmentService   EnrollmentService
	evaluationService   EvaluationService
	ledgerService       LedgerService
	importExportService ImportExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, admin AdminAccount) ServiceManager {
	config := ServiceManagerConfig{
		Admin:        admin,
		ImportExport: ServiceConfig{Enabled: true},
	}
	return NewServiceManager(repo, publisher, logger, validator, config)
}

// Initialize builds the services and writes or checks the genesis entry
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.config.Validate(); err != nil {
		return err
	}

	sm.initializeServices()

	if err := sm.accessService.Bootstrap(ctx, sm.config.Admin); err != nil {
		return fmt.Errorf("failed to bootstrap registry: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() {
	sm.gate = NewGate(sm.repo, sm.publisher, sm.logger)

	sm.accessService = NewAccessService(sm.repo, sm.gate, sm.logger, sm.validator, sm.config.InsecureAdminLoginBypass)
	sm.logger.Info("Access service initialized")

	sm.courseService = NewCourseService(sm.repo, sm.gate, sm.logger, sm.validator)
	sm.logger.Info("Course service initialized")

	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.gate, sm.logger, sm.validator)
	sm.logger.Info("Enrollment service initialized")

	sm.evaluationService = NewEvaluationService(sm.repo, sm.gate, sm.logger, sm.validator)
	sm.logger.Info("Evaluation service initialized")

	sm.ledgerService = NewLedgerService(sm.repo, sm.gate, sm.logger)
	sm.logger.Info("Ledger service initialized")

	if sm.config.ImportExport.Enabled {
		sm.importExportService = NewImportExportService(sm.repo, sm.gate, sm.logger, sm.validator)
		sm.logger.Info("ImportExport service initialized")
	}
}

// Service getters
func (sm *serviceManager) Access() AccessService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.accessService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.courseService
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.enrollmentService
}

func (sm *serviceManager) Evaluation() EvaluationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.evaluationService
}

func (sm *serviceManager) Ledger() LedgerService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.ledgerService
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	// nil when disabled
	return sm.importExportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// Validate validates the service manager configuration
func (config *ServiceManagerConfig) Validate() error {
	var errors []string

	if config.Admin.Address.IsZero() {
		errors = append(errors, "admin address is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}
