package handlers

import (
	"errors"

	"vendorapi/internal/middleware"
	"vendorapi/internal/models"
	"vendorapi/internal/repositories"
	"vendorapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RegisterRequest represents the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    middleware.NewValidator(),
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", middleware.ValidateBody[RegisterRequest](h.validate), h.HandleRegister)
	authRoutes.Post("/login", middleware.ValidateBody[LoginRequest](h.validate), h.HandleLogin)
}

// HandleRegister creates an operator account.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	req := middleware.Body[RegisterRequest](c)
	user := &models.User{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	}

	if err := h.authService.Register(c.UserContext(), user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return respond(c, fiber.StatusConflict, statusFail, "Email already registered.")
		}
		h.log.Error().Stack().Err(err).Msg("registering user failed")
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  statusSuccess,
		"message": "Account successfully registered.",
		"user":    user,
	})
}

// HandleLogin exchanges credentials for a bearer token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	req := middleware.Body[LoginRequest](c)

	token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return respond(c, fiber.StatusUnauthorized, statusFail, "Invalid email or password.")
		}
		h.log.Error().Stack().Err(err).Msg("login failed")
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  statusSuccess,
		"message": "Login successful.",
		"token":   token,
	})
}
