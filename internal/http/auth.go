package http

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/gofiber/fiber/v2"

	"chessvar/internal/core"
	"chessvar/internal/service"
	"chessvar/internal/storage"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{1,40}$`)
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=40"`
	Email    string `json:"email" validate:"omitempty,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"` // username or email
	Password   string `json:"password" validate:"required,max=128"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func badRequest(c *fiber.Ctx, msg, details string) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   msg,
		Code:    core.ErrInvalidRequest,
		Details: details,
	})
}

// bindAuthBody parses and validates an auth payload, returning the error
// message and details on failure
func bindAuthBody(c *fiber.Ctx, req any) (string, string, bool) {
	if err := c.BodyParser(req); err != nil {
		return "invalid request body", err.Error(), false
	}
	if details, ok := validateStruct(req); !ok {
		return "validation failed", details, false
	}
	return "", "", true
}

// RegisterHandler creates an account and returns a token for it
func (h *HTTPHandler) RegisterHandler(c *fiber.Ctx) error {
	var req RegisterRequest
	if msg, details, ok := bindAuthBody(c, &req); !ok {
		return badRequest(c, msg, details)
	}

	if !usernameRegex.MatchString(req.Username) {
		return badRequest(c, "invalid username format",
			"username must be 1-40 characters, alphanumeric and underscore only")
	}
	if req.Email != "" && !emailRegex.MatchString(req.Email) {
		return badRequest(c, "invalid email format", "email must be a valid email address")
	}
	if err := validatePassword(req.Password); err != nil {
		return badRequest(c, "weak password", err.Error())
	}

	// Stored lower-case for case-insensitive lookup
	req.Username = strings.ToLower(req.Username)
	req.Email = strings.ToLower(req.Email)

	user, err := h.svc.CreateUser(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, storage.ErrUserExists):
		return c.Status(fiber.StatusConflict).JSON(core.ErrorResponse{
			Error:   "user already exists",
			Code:    core.ErrInvalidRequest,
			Details: "username or email already taken",
		})
	case errors.Is(err, service.ErrStorageDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
			Error: "accounts require storage",
			Code:  core.ErrInternalError,
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to create user",
			Code:  core.ErrInternalError,
		})
	}

	return h.issueToken(c, user, fiber.StatusCreated)
}

// LoginHandler authenticates by username or email and returns a token
func (h *HTTPHandler) LoginHandler(c *fiber.Ctx) error {
	var req LoginRequest
	if msg, details, ok := bindAuthBody(c, &req); !ok {
		return badRequest(c, msg, details)
	}

	user, err := h.svc.AuthenticateUser(strings.ToLower(req.Identifier), req.Password)
	if err != nil {
		// Same answer for unknown users and wrong passwords
		return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
			Error: "invalid credentials",
			Code:  core.ErrUnauthorized,
		})
	}

	if err := h.svc.UpdateLastLogin(user.UserID); err != nil {
		log.Printf("Failed to update last login for %s: %v", user.UserID, err)
	}

	return h.issueToken(c, user, fiber.StatusOK)
}

func (h *HTTPHandler) issueToken(c *fiber.Ctx, user *service.User, status int) error {
	token, err := h.svc.GenerateUserToken(user.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to generate token",
			Code:  core.ErrInternalError,
		})
	}

	return c.Status(status).JSON(AuthResponse{
		Token:     token,
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(service.TokenTTL),
	})
}

// GetCurrentUserHandler returns the authenticated user
func (h *HTTPHandler) GetCurrentUserHandler(c *fiber.Ctx) error {
	user, err := h.svc.GetUserByID(userID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "user not found",
			Code:  core.ErrInvalidRequest,
		})
	}

	return c.JSON(UserResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// validatePassword requires at least one letter and one digit
func validatePassword(password string) error {
	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsNumber(r):
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return fmt.Errorf("password must contain at least one letter and one number")
	}
	return nil
}
