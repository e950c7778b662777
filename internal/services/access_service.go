package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"github.com/SAP-F-2025/evaluation-registry/internal/validator"
)

// AdminBypassLoginID is the login id that skips the password check when the
// insecure bypass is enabled
const AdminBypassLoginID = "ADMIN"

type accessService struct {
	repo      repositories.Repository
	gate      *Gate
	logger    *slog.Logger
	validator *validator.Validator

	// insecureAdminBypass lets the admin address log in as ADMIN without a password
	insecureAdminBypass bool
}

func NewAccessService(repo repositories.Repository, gate *Gate, logger *slog.Logger, validator *validator.Validator, insecureAdminBypass bool) AccessService {
	if insecureAdminBypass {
		logger.Warn("Insecure admin login bypass is enabled; the admin address can log in without a password")
	}
	return &accessService{
		repo:                repo,
		gate:                gate,
		logger:              logger,
		validator:           validator,
		insecureAdminBypass: insecureAdminBypass,
	}
}

func (s *accessService) Bootstrap(ctx context.Context, admin AdminAccount) error {
	if admin.Address.IsZero() {
		return fmt.Errorf("admin address is required")
	}

	count, err := s.repo.Ledger().Count(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to count ledger entries: %w", err)
	}
	if count > 0 {
		return s.checkAdmin(ctx, admin.Address)
	}

	hash, err := s.adminPasswordHash(admin.PasswordHash)
	if err != nil {
		return err
	}

	// Cached projections from an earlier database do not describe this ledger
	if err := s.repo.ClearCache(ctx); err != nil {
		s.logger.Warn("Failed to clear cache before genesis", "error", err)
	}

	loginID := admin.LoginID
	if loginID == "" {
		loginID = AdminBypassLoginID
	}

	entry, err := s.gate.Execute(ctx, models.OpGenesis, admin.Address, func(tx *gorm.DB, block Block) (interface{}, error) {
		if block.Seq != 1 {
			return nil, fmt.Errorf("ledger already holds %d entries", block.Seq-1)
		}
		user := &models.User{
			Address:       admin.Address,
			LoginID:       loginID,
			Email:         admin.Email,
			PasswordHash:  hash,
			Role:          models.RoleAdmin,
			IsRegistered:  true,
			RegisteredSeq: block.Seq,
		}
		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			return nil, err
		}
		return genesisPayload{Admin: user.Address, ID: user.LoginID, Email: user.Email}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to write genesis entry: %w", err)
	}

	s.logger.Info("Registry genesis written", "admin", admin.Address, "hash", entry.Hash)
	return nil
}

// checkAdmin refuses to serve a ledger created for a different admin
func (s *accessService) checkAdmin(ctx context.Context, address models.Address) error {
	role := models.RoleAdmin
	admins, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{Role: &role})
	if err != nil {
		return fmt.Errorf("failed to load admin: %w", err)
	}
	if len(admins) != 1 {
		return fmt.Errorf("registry must hold exactly one admin, found %d", len(admins))
	}
	if admins[0].Address != address {
		return fmt.Errorf("registry admin is %s but %s is configured", admins[0].Address, address)
	}
	s.logger.Info("Registry ledger found", "admin", address)
	return nil
}

func (s *accessService) adminPasswordHash(raw string) (models.PasswordHash, error) {
	if raw != "" {
		hash, err := models.ParsePasswordHash(raw)
		if err != nil {
			return hash, fmt.Errorf("invalid admin password hash: %w", err)
		}
		return hash, nil
	}

	var hash models.PasswordHash
	if _, err := rand.Read(hash[:]); err != nil {
		return hash, fmt.Errorf("failed to generate admin password hash: %w", err)
	}
	s.logger.Warn("No admin password hash configured; admin password login is disabled until changePassword")
	return hash, nil
}

func (s *accessService) Register(ctx context.Context, caller models.Address, req *RegisterRequest) (*models.User, error) {
	s.logger.Info("Registering user", "caller", caller, "id", req.ID)

	if caller.IsZero() {
		return nil, fmt.Errorf("%w: caller address is required", ErrInvalidInput)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, invalidInput(err)
	}
	hash, err := models.ParsePasswordHash(req.PasswordHash)
	if err != nil {
		return nil, invalidInput(err)
	}

	var user *models.User
	_, err = s.gate.Execute(ctx, models.OpRegister, caller, func(tx *gorm.DB, block Block) (interface{}, error) {
		exists, err := s.repo.User().ExistsByAddress(ctx, tx, caller)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, caller)
		}

		bound, err := s.repo.User().GetByLoginID(ctx, tx, req.ID)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: %q belongs to %s", ErrDuplicateID, req.ID, bound.Address)
		case !repositories.IsNotFoundError(err):
			return nil, err
		}

		role, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRole, err)
		}
		if !role.SelfAssignable() {
			return nil, fmt.Errorf("%w: %s cannot be self-assigned", ErrInvalidRole, role)
		}

		user = &models.User{
			Address:       caller,
			LoginID:       req.ID,
			Email:         req.Email,
			PasswordHash:  hash,
			Role:          role,
			IsRegistered:  true,
			RegisteredSeq: block.Seq,
		}
		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			return nil, err
		}
		return registerPayload{Address: caller, ID: user.LoginID, Email: user.Email, Role: role}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "caller", caller, "role", user.Role, "seq", user.RegisteredSeq)
	return user, nil
}

// Login never fails on bad credentials; it reports Success false
func (s *accessService) Login(ctx context.Context, caller models.Address, req *LoginRequest) (*models.LoginResponse, error) {
	var resp *models.LoginResponse
	err := s.gate.View(func() error {
		if s.insecureAdminBypass && req.ID == AdminBypassLoginID {
			user, err := loadUser(ctx, s.repo, nil, caller)
			if err != nil {
				return err
			}
			if user != nil && user.Role.CanAdminister() {
				s.logger.Warn("Admin logged in through the insecure bypass", "caller", caller)
				resp = loginSuccess(user)
				return nil
			}
		}

		user, err := s.repo.User().GetByLoginID(ctx, nil, req.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				resp = &models.LoginResponse{Success: false}
				return nil
			}
			return err
		}

		hash, err := models.ParsePasswordHash(req.PasswordHash)
		if err != nil || !user.IsRegistered || !user.PasswordHash.Equal(hash) {
			resp = &models.LoginResponse{Success: false}
			return nil
		}
		resp = loginSuccess(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func loginSuccess(user *models.User) *models.LoginResponse {
	role := user.Role
	return &models.LoginResponse{Success: true, Address: user.Address, Role: &role}
}

func (s *accessService) UpdateProfile(ctx context.Context, caller models.Address, req *UpdateEmailRequest) (*models.User, error) {
	var user *models.User
	_, err := s.gate.Execute(ctx, models.OpUpdateUserProfile, caller, func(tx *gorm.DB, block Block) (interface{}, error) {
		current, err := loadUser(ctx, s.repo, tx, caller)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotRegistered, caller)
		}
		if err := s.validator.Validate(req); err != nil {
			return nil, invalidInput(err)
		}
		if err := s.repo.User().UpdateEmail(ctx, tx, caller, req.Email); err != nil {
			return nil, err
		}
		current.Email = req.Email
		user = current
		return updateProfilePayload{Address: caller, Email: req.Email}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User profile updated", "caller", caller)
	return user, nil
}

func (s *accessService) ChangePassword(ctx context.Context, caller models.Address, req *ChangePasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return invalidInput(err)
	}
	oldHash, err := models.ParsePasswordHash(req.OldPasswordHash)
	if err != nil {
		return invalidInput(err)
	}
	newHash, err := models.ParsePasswordHash(req.NewPasswordHash)
	if err != nil {
		return invalidInput(err)
	}

	_, err = s.gate.Execute(ctx, models.OpChangePassword, caller, func(tx *gorm.DB, block Block) (interface{}, error) {
		// read inside the transaction; cached records carry no digest
		user, err := loadUser(ctx, s.repo, tx, caller)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotRegistered, caller)
		}
		if !user.PasswordHash.Equal(oldHash) {
			return nil, ErrIncorrectPassword
		}
		if err := s.repo.User().UpdatePasswordHash(ctx, tx, caller, newHash); err != nil {
			return nil, err
		}
		return changePasswordPayload{Address: caller}, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Password changed", "caller", caller)
	return nil
}

func (s *accessService) GetCurrentUser(ctx context.Context, caller models.Address) (*models.User, error) {
	return s.GetUser(ctx, caller)
}

func (s *accessService) GetAllUsers(ctx context.Context, caller models.Address, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var (
		users []*models.User
		total int64
	)
	err := s.gate.View(func() error {
		if err := requireAdmin(ctx, s.repo, nil, caller); err != nil {
			return err
		}
		var err error
		users, total, err = s.repo.User().List(ctx, nil, filters)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *accessService) GetUser(ctx context.Context, address models.Address) (*models.User, error) {
	var user *models.User
	err := s.gate.View(func() error {
		var err error
		user, err = loadUser(ctx, s.repo, nil, address)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("%w: %s", ErrNotRegistered, address)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
