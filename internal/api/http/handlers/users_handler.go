package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-relay/internal/api/dto"
	"github.com/spec-kit/rental-relay/internal/domain"
	"github.com/spec-kit/rental-relay/internal/service"
	apperrors "github.com/spec-kit/rental-relay/pkg/util"
)

// UsersHandler exposes auth endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.CountryCode == "" || req.NationalNumber == "" {
		return apperrors.NewValidationError("name, email, password, country_code, phone_number required", nil)
	}

	user, token, exp, err := h.auth.RegisterUser(c.Context(), service.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		CountryCode:    req.CountryCode,
		NationalNumber: req.NationalNumber,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userSummary(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.LoginUser(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userSummary(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

func userSummary(user *domain.User) dto.UserSummary {
	return dto.UserSummary{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		AreaCode:    user.AreaCode,
	}
}
