package services

import (
	"context"
	"errors"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

// Signup creates a new account with the default user role. Role elevation is
// admin-only through UpdateUser.
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, NewValidationError("", "name, email, and password are required")
	}
	if len(req.Password) < 8 {
		return nil, NewValidationError("password", "must be at least 8 characters")
	}

	existing, _ := s.Repo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrDuplicate
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         string(auth.RoleUser),
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and issues a JWT. Accounts with 2FA enabled get
// a short-lived temp token instead; the real token is issued after the TOTP
// code verifies. Verified credentials are cached in Redis to skip bcrypt on
// repeat logins.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, *models.LoginStep1Response, error) {
	if req.Email == "" || req.Password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if _, ok := cache.GetCachedAuth(ctx, req.Email, req.Password); !ok {
		if !auth.VerifyPassword(user.PasswordHash, req.Password) {
			return nil, nil, ErrInvalidCredentials
		}
		cache.CacheAuth(ctx, req.Email, req.Password, int64(user.ID))
	}

	if !user.IsActive {
		return nil, nil, ErrForbidden
	}

	if user.TOTPEnabled {
		tempToken, err := s.JWTManager.GenerateTempToken(user)
		if err != nil {
			return nil, nil, err
		}
		return nil, &models.LoginStep1Response{
			Requires2FA: true,
			TempToken:   tempToken,
			Message:     "Enter the code from your authenticator app",
		}, nil
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.Repo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

// ListUsers is admin-only: the listing exposes compensation rates.
func (s *UserService) ListUsers(ctx context.Context, actor auth.Actor) ([]*models.User, error) {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx)
}

// ListWorkers returns active field workers for assignment and payroll pickers.
// Moderators need this, so it is gated below the full user listing.
func (s *UserService) ListWorkers(ctx context.Context, actor auth.Actor) ([]*models.User, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}
	return s.Repo.ListWorkers(ctx)
}

// CreateUser is the admin path that can set roles and compensation config.
func (s *UserService) CreateUser(ctx context.Context, actor auth.Actor, req *models.CreateUserRequest) (*models.User, error) {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, NewValidationError("", "name, email, and password are required")
	}
	if !auth.Valid(req.Role) && req.Role != "" {
		return nil, NewValidationError("role", "unknown role")
	}
	if req.PaymentType != "" && req.PaymentType != models.PaymentTypePerLine && req.PaymentType != models.PaymentTypeFixedMonthly {
		return nil, NewValidationError("payment_type", "must be per_line or fixed_monthly")
	}

	existing, _ := s.Repo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrDuplicate
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashedPassword,
		Role:         req.Role,
		IsActive:     true,
		PaymentType:  req.PaymentType,
		MonthlyRate:  req.MonthlyRate,
		PerLineRate:  req.PerLineRate,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actor auth.Actor, id int, req *models.UpdateUserRequest) (*models.User, error) {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Demoting the last active admin would lock everyone out
	if user.Role == string(auth.RoleAdmin) && req.Role != string(auth.RoleAdmin) {
		admins, err := s.Repo.CountActiveAdmins(ctx)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, ErrConflict
		}
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Phone = req.Phone
	user.Role = req.Role
	user.PaymentType = req.PaymentType
	user.MonthlyRate = req.MonthlyRate
	user.PerLineRate = req.PerLineRate

	if req.Password != "" {
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	} else {
		user.PasswordHash = ""
	}

	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

// ToggleActive suspends or reactivates an account. The last active admin
// cannot be suspended.
func (s *UserService) ToggleActive(ctx context.Context, actor auth.Actor, id int, isActive bool) error {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return err
	}

	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if !isActive && user.Role == string(auth.RoleAdmin) {
		admins, err := s.Repo.CountActiveAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrConflict
		}
	}

	return s.Repo.ToggleActiveStatus(ctx, id, isActive)
}

func (s *UserService) DeleteUser(ctx context.Context, actor auth.Actor, id int) error {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if actor.ID == id {
		return ErrConflict
	}
	return s.Repo.Delete(ctx, id)
}
