package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"time"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpIssuer        = "FieldOps"
	maxFailedAttempts = 5
	rateLimitWindow   = 15 * time.Minute
)

// ErrTooManyAttempts is returned when 2FA verification is rate limited.
var ErrTooManyAttempts = errors.New("too many failed attempts, try again later")

type TOTPService struct {
	userRepo   *repositories.UserRepository
	totpRepo   *repositories.TOTPRepository
	jwtManager *auth.JWTManager
}

func NewTOTPService(userRepo *repositories.UserRepository, totpRepo *repositories.TOTPRepository, jwtManager *auth.JWTManager) *TOTPService {
	return &TOTPService{
		userRepo:   userRepo,
		totpRepo:   totpRepo,
		jwtManager: jwtManager,
	}
}

// GenerateSetup creates a fresh TOTP secret and QR code for a user. The
// secret is stored immediately but 2FA stays off until the first code
// verifies.
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*models.TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		Issuer:      totpIssuer,
		AccountName: user.Email,
	}, nil
}

// VerifyAndEnable checks the first code against the stored secret and turns
// 2FA on.
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code, ipAddress string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return NewValidationError("", "2FA setup has not been started")
	}

	if err := s.checkRateLimit(ctx, userID); err != nil {
		return err
	}

	valid := totp.Validate(code, user.TOTPSecret)
	s.recordAttempt(ctx, userID, ipAddress, valid)
	if !valid {
		return ErrInvalidCredentials
	}

	return s.userRepo.EnableTOTP(ctx, userID)
}

// VerifyLogin completes a 2FA login: validates the temp token from step 1
// and the TOTP code, then issues the real session token.
func (s *TOTPService) VerifyLogin(ctx context.Context, tempToken, code, ipAddress string) (*models.AuthResponse, error) {
	claims, err := s.jwtManager.ValidateTempToken(tempToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.TOTPEnabled || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := s.checkRateLimit(ctx, user.ID); err != nil {
		return nil, err
	}

	valid := totp.Validate(code, user.TOTPSecret)
	s.recordAttempt(ctx, user.ID, ipAddress, valid)
	if !valid {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Disable turns 2FA off after re-verifying the password and a current code.
func (s *TOTPService) Disable(ctx context.Context, userID int, password, code, ipAddress string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled {
		return NewValidationError("", "2FA is not enabled")
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return ErrInvalidCredentials
	}

	if err := s.checkRateLimit(ctx, userID); err != nil {
		return err
	}

	valid := totp.Validate(code, user.TOTPSecret)
	s.recordAttempt(ctx, userID, ipAddress, valid)
	if !valid {
		return ErrInvalidCredentials
	}

	return s.userRepo.DisableTOTP(ctx, userID)
}

// Status reports whether 2FA is on for a user.
func (s *TOTPService) Status(ctx context.Context, userID int) (*models.User2FAStatus, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.User2FAStatus{
		Enabled:   user.TOTPEnabled,
		EnabledAt: user.TOTPVerifiedAt,
	}, nil
}

func (s *TOTPService) checkRateLimit(ctx context.Context, userID int) error {
	failures, err := s.totpRepo.CountRecentFailures(ctx, userID, rateLimitWindow)
	if err != nil {
		return err
	}
	if failures >= maxFailedAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

func (s *TOTPService) recordAttempt(ctx context.Context, userID int, ipAddress string, success bool) {
	// Attempt logging is best-effort
	_ = s.totpRepo.RecordAttempt(ctx, userID, ipAddress, success)
}
