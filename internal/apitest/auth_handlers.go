package apitest

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/branchd-dev/storefront/internal/auth"
	"github.com/branchd-dev/storefront/internal/models"
)

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Lastname string `json:"lastname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// PendingUser is the unverified account handed back to the client
type PendingUser struct {
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Lastname         string    `json:"lastname"`
	Password         string    `json:"password"`
	VerificationCode string    `json:"verificationCode"`
	VerificationTime time.Time `json:"verificationTime"`
}

// VerifyEmailRequest represents an email verification request
type VerifyEmailRequest struct {
	Email            string      `json:"email" binding:"required"`
	VerificationCode string      `json:"verificationCode" binding:"required"`
	TempUser         PendingUser `json:"tempUser"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgetPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetCodeCheckRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type resetPasswordRequest struct {
	TemporaryToken string `json:"temporaryToken" binding:"required"`
	Password       string `json:"password" binding:"required,min=6"`
}

type updateRoleRequest struct {
	Role models.Role `json:"role"`
}

func (s *Server) findByEmail(email string) *account {
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, email) {
			return acc
		}
	}
	return nil
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	s.mu.Lock()
	exists := s.findByEmail(req.Email) != nil
	code := s.code
	s.mu.Unlock()

	if exists {
		fail(c, http.StatusConflict, "User already exists")
		return
	}

	codeHash, err := auth.HashPassword(code)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	ok(c, "Verification code sent to your email", PendingUser{
		Email:            req.Email,
		Name:             req.Name,
		Lastname:         req.Lastname,
		Password:         passwordHash,
		VerificationCode: codeHash,
		VerificationTime: time.Now().UTC(),
	})
}

func (s *Server) verifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TempUser.Email != req.Email || auth.VerifyPassword(req.VerificationCode, req.TempUser.VerificationCode) != nil {
		fail(c, http.StatusBadRequest, "Invalid verification code")
		return
	}
	if time.Since(req.TempUser.VerificationTime) > 10*time.Minute {
		fail(c, http.StatusBadRequest, "Verification code expired")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(req.Email) != nil {
		fail(c, http.StatusConflict, "User already exists")
		return
	}
	s.addAccount(models.User{
		Name:     req.TempUser.Name,
		Lastname: req.TempUser.Lastname,
		Email:    req.TempUser.Email,
		Role:     models.RoleUser,
	}, req.TempUser.Password)

	ok(c, "Email verified", nil)
}

// addAccount stores a user. Callers hold mu.
func (s *Server) addAccount(user models.User, passwordHash string) models.User {
	user.ID = uuid.NewString()
	s.accounts[user.ID] = &account{user: user, passwordHash: passwordHash}
	return user
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	acc := s.findByEmail(req.Email)
	var (
		user models.User
		hash string
	)
	if acc != nil {
		user, hash = acc.user, acc.passwordHash
	}
	s.mu.Unlock()

	if acc == nil || auth.VerifyPassword(req.Password, hash) != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.issuer.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		fail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")
	ok(c, "Login successful", gin.H{"user": user, "token": token})
}

func (s *Server) forgetPassword(c *gin.Context) {
	var req forgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(req.Email) == nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	s.resetCodes[strings.ToLower(req.Email)] = s.code
	ok(c, "Reset code sent to your email", nil)
}

func (s *Server) resetCodeCheck(c *gin.Context) {
	var req resetCodeCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(req.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if code, found := s.resetCodes[email]; !found || code != req.Code {
		fail(c, http.StatusBadRequest, "Invalid reset code")
		return
	}
	delete(s.resetCodes, email)

	token := uuid.NewString()
	s.tempTokens[token] = email
	ok(c, "Reset code verified", gin.H{"temporaryToken": token})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, found := s.tempTokens[req.TemporaryToken]
	if !found {
		fail(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	acc := s.findByEmail(email)
	if acc == nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	delete(s.tempTokens, req.TemporaryToken)
	acc.passwordHash = hash
	ok(c, "Password updated", nil)
}

func (s *Server) me(c *gin.Context) {
	user, _ := currentUser(c)
	ok(c, "", user)
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	sortUsers(users)
	ok(c, "", users)
}

func (s *Server) updateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Role == models.RoleNone {
		fail(c, http.StatusBadRequest, "Invalid role")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, found := s.accounts[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	acc.user.Role = req.Role
	ok(c, "User role updated", acc.user)
}
