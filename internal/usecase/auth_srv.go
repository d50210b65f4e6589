package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"store-rating/internal/data/entity"
	"store-rating/internal/data/repository"
	"store-rating/internal/dto/request"
	"store-rating/internal/dto/response"
	"store-rating/internal/policy"
	"store-rating/pkg/apperr"
	"store-rating/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Me(ctx context.Context, principal policy.Principal) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, principal policy.Principal, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	ChangePassword(ctx context.Context, principal policy.Principal, req *request.ChangePasswordRequest) error

	// EnsureAdmin creates the configured bootstrap administrator when no
	// administrator exists yet.
	EnsureAdmin(ctx context.Context) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

var errInvalidCredentials = apperr.Unauthenticated("invalid credentials")

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	// 1. Validasi input
	if err := validate(req); err != nil {
		s.log.Warn("Register validation failed", zap.Error(err))
		return nil, err
	}

	role := entity.RoleUser
	if req.Role != "" {
		role = entity.Role(req.Role)
	}

	// 2. Buat user
	user, err := createAccount(ctx, s.repo.User, req.Name, req.Email, req.Password, req.Address, role)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			s.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		}
		return nil, err
	}

	// 3. Auto login setelah register
	resp, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))

	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		s.log.Error("Failed to find user by email", zap.Error(err))
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user == nil {
		s.log.Warn("User not found for login", zap.String("email", req.Email))
		return nil, errInvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}

	resp, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return resp, nil
}

func (s *authService) Me(ctx context.Context, principal policy.Principal) (*response.UserResponse, error) {
	user, err := s.ownProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) UpdateProfile(ctx context.Context, principal policy.Principal, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	user, err := s.ownProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	if err := validate(req); err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		user.Address = utils.OptionalString(req.Address)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := checkEmailFree(ctx, s.repo.User, email, user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}

	user.UpdatedAt = time.Now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Email already registered")
		}
		s.log.Error("Failed to update profile", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.log.Info("Profile updated", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, principal policy.Principal, req *request.ChangePasswordRequest) error {
	user, err := s.ownProfile(ctx, principal)
	if err != nil {
		return err
	}

	if err := validate(req); err != nil {
		return err
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperr.Validation("Current password is incorrect",
			map[string]string{"current_password": "Current password is incorrect"})
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hashed
	user.UpdatedAt = time.Now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to change password", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) EnsureAdmin(ctx context.Context) error {
	cfg := s.config.Admin
	if cfg.Email == "" {
		return nil
	}

	admins, err := s.repo.User.CountAll(ctx, repository.UserFilter{Role: entity.RoleAdmin})
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		s.log.Debug("Administrator already present, skipping bootstrap")
		return nil
	}

	if len(cfg.Password) < 6 {
		return errors.New("ADMIN_PASSWORD must be at least 6 characters")
	}

	user, err := createAccount(ctx, s.repo.User, cfg.Name, cfg.Email, cfg.Password, nil, entity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	s.log.Info("Bootstrap administrator created",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) ownProfile(ctx context.Context, principal policy.Principal) (*entity.User, error) {
	if principal == nil {
		return nil, apperr.Unauthenticated(policy.ReasonUnauthenticated)
	}
	id := principal.PrincipalID()
	if err := policy.Check(principal, policy.ActionManageOwnProfile, policy.Target{UserID: id}); err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", id.String()))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

func (s *authService) issueToken(user *entity.User) (*response.AuthResponse, error) {
	token, expiresAt, err := utils.GenerateToken(user.ID, string(user.Role), s.config.JWT)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &response.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      response.UserToResponse(user),
	}, nil
}
