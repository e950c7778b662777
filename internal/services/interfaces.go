package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"github.com/SAP-F-2025/evaluation-registry/internal/validator"
)

// ===== REQUEST DTOs =====

type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type UpdateEmailRequest = validator.UpdateEmailRequest
type ChangePasswordRequest = validator.ChangePasswordRequest
type CourseRequest = validator.CourseRequest
type SetCourseActiveRequest = validator.SetCourseActiveRequest
type MarkStudentRequest = validator.MarkStudentRequest
type SubmitEvaluationRequest = validator.SubmitEvaluationRequest

// AdminAccount describes the admin record written by the genesis entry
type AdminAccount struct {
	Address      models.Address
	LoginID      string
	Email        string
	PasswordHash string
}

// ===== SERVICE INTERFACES =====

// Every caller argument is the authenticated address of the request.

type AccessService interface {
	// Bootstrap writes the genesis entry on an empty ledger, or checks that
	// an existing ledger belongs to the configured admin
	Bootstrap(ctx context.Context, admin AdminAccount) error

	Register(ctx context.Context, caller models.Address, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, caller models.Address, req *LoginRequest) (*models.LoginResponse, error)
	UpdateProfile(ctx context.Context, caller models.Address, req *UpdateEmailRequest) (*models.User, error)
	ChangePassword(ctx context.Context, caller models.Address, req *ChangePasswordRequest) error

	GetCurrentUser(ctx context.Context, caller models.Address) (*models.User, error)
	GetAllUsers(ctx context.Context, caller models.Address, filters repositories.UserFilters) ([]*models.User, int64, error)
	GetUser(ctx context.Context, address models.Address) (*models.User, error)
}

type CourseService interface {
	AddCourse(ctx context.Context, caller models.Address, req *CourseRequest) (*models.CourseCreatedResponse, error)
	UpdateCourse(ctx context.Context, caller models.Address, id uint, req *CourseRequest) (*models.Course, error)
	SetCourseActive(ctx context.Context, caller models.Address, id uint, active bool) (*models.Course, error)

	GetAllCourses(ctx context.Context) ([]*models.Course, error)
	GetCourseDetail(ctx context.Context, id uint) (*models.Course, error)
	GetTeacherCourses(ctx context.Context, caller models.Address) ([]*models.Course, error)
}

type EnrollmentService interface {
	MarkStudentCourse(ctx context.Context, caller models.Address, courseID uint, req *MarkStudentRequest) error
	GetCourseStudents(ctx context.Context, courseID uint) (*models.CourseStudentsResponse, error)
	GetStudentTakenCourses(ctx context.Context, caller models.Address) ([]*models.Course, error)
}

type EvaluationService interface {
	SubmitEvaluation(ctx context.Context, caller models.Address, courseID uint, req *SubmitEvaluationRequest) (*models.Evaluation, error)
	GetCourseEvaluations(ctx context.Context, caller models.Address, courseID uint) ([]*models.Evaluation, error)
	GetStudentEvaluations(ctx context.Context, caller models.Address) ([]*models.Evaluation, error)
}

type LedgerService interface {
	GetLedger(ctx context.Context, caller models.Address, fromSeq uint64, limit int) ([]*models.LedgerEntry, error)
	VerifyLedger(ctx context.Context, caller models.Address) (*models.LedgerVerification, error)
}

type ImportExportService interface {
	// ImportEnrollments marks every (course_id, student) row of the first
	// sheet as one ledger entry, or none of them
	ImportEnrollments(ctx context.Context, caller models.Address, r io.Reader) (*models.ImportResult, error)
	ExportLedger(ctx context.Context, caller models.Address, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Access() AccessService
	Course() CourseService
	Enrollment() EnrollmentService
	Evaluation() EvaluationService
	Ledger() LedgerService
	// ImportExport returns nil when the service is disabled
	ImportExport() ImportExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
