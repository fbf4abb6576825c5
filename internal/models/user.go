package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         string    `json:"role"` // user, moderator or admin
	IsActive     bool      `json:"is_active"`

	// Worker compensation config. Only meaningful for field workers;
	// office accounts leave these at zero.
	PaymentType string  `json:"payment_type"` // per_line or fixed_monthly
	MonthlyRate float64 `json:"monthly_rate"`
	PerLineRate float64 `json:"per_line_rate"`

	TOTPEnabled    bool       `json:"totp_enabled"`
	TOTPSecret     string     `json:"-"`
	TOTPVerifiedAt *time.Time `json:"totp_verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	PaymentType string  `json:"payment_type"`
	MonthlyRate float64 `json:"monthly_rate"`
	PerLineRate float64 `json:"per_line_rate"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Password    string  `json:"password,omitempty"` // Optional
	Role        string  `json:"role"`
	PaymentType string  `json:"payment_type"`
	MonthlyRate float64 `json:"monthly_rate"`
	PerLineRate float64 `json:"per_line_rate"`
}
