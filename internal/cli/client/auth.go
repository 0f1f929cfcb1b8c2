package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/branchd-dev/storefront/internal/models"
)

// RegisterRequest represents the sign-up request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PendingUser is the unverified account the backend returns on registration. It is
// sent back verbatim with the verification code.
type PendingUser struct {
	Email            string          `json:"email"`
	Name             string          `json:"name"`
	Lastname         string          `json:"lastname"`
	Password         string          `json:"password"`
	VerificationCode string          `json:"verificationCode"`
	VerificationTime json.RawMessage `json:"verificationTime,omitempty"`
}

// VerifyEmailRequest represents the email verification request body
type VerifyEmailRequest struct {
	Email            string      `json:"email"`
	VerificationCode string      `json:"verificationCode"`
	TempUser         PendingUser `json:"tempUser"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the authenticated user and bearer token
type LoginResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// ResetCodeCheckRequest represents the reset code check request body
type ResetCodeCheckRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetCodeCheckResult carries the temporary token authorizing a password reset
type ResetCodeCheckResult struct {
	TemporaryToken string `json:"temporaryToken"`
	Message        string `json:"-"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	TemporaryToken string `json:"temporaryToken"`
	Password       string `json:"password"`
}

type updateRoleRequest struct {
	Role models.Role `json:"role"`
}

// Register creates a pending user and triggers the verification email
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Result[PendingUser], error) {
	var pending PendingUser
	msg, err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", req, &pending)
	if err != nil {
		return nil, err
	}
	return &Result[PendingUser]{Message: msg, Data: pending}, nil
}

// VerifyEmail confirms a pending user with the emailed code
func (c *Client) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (string, error) {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/verify-email", "", req, nil)
}

// Login authenticates the user and returns the user record and token
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var result LoginResult
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", req, &result); err != nil {
		return nil, err
	}
	if result.Token == "" || result.User.ID == "" {
		return nil, fmt.Errorf("login response is missing the token or user")
	}
	return &result, nil
}

// ForgetPassword asks the backend to email a reset code
func (c *Client) ForgetPassword(ctx context.Context, email string) (string, error) {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/forget-password", "", map[string]string{"email": email}, nil)
}

// ResetCodeCheck exchanges an emailed code for a temporary reset token
func (c *Client) ResetCodeCheck(ctx context.Context, req ResetCodeCheckRequest) (*ResetCodeCheckResult, error) {
	var result ResetCodeCheckResult
	msg, err := c.doJSON(ctx, http.MethodPost, "/api/auth/reset-code-check", "", req, &result)
	if err != nil {
		return nil, err
	}
	result.Message = msg
	return &result, nil
}

// ResetPassword sets a new password using the temporary token
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/reset-password", "", req, nil)
}

// Me returns the user the token belongs to
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/user/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all accounts (admin only)
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/user/list", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole changes the role of an account (admin only)
func (c *Client) UpdateUserRole(ctx context.Context, token, userID string, role models.Role) (string, error) {
	if role == models.RoleNone {
		return "", fmt.Errorf("role is required")
	}
	return c.doJSON(ctx, http.MethodPut, "/api/user/update-role/"+userID, token, updateRoleRequest{Role: role}, nil)
}
