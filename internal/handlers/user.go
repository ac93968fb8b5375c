package handlers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hexsmith/hexsmith/backend/internal/models"
	"github.com/hexsmith/hexsmith/backend/internal/repositories"
	"github.com/hexsmith/hexsmith/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const otpLifetime = 10 * time.Minute

// UserHandler handles profile and password-reset HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
	mailer         services.OTPMailer
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, mailer services.OTPMailer) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		mailer:         mailer,
	}
}

// RegisterUserRoutes registers the authenticated profile route
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/user", h.GetProfile)
}

// RegisterPasswordRoutes registers the public password-reset routes
func (h *UserHandler) RegisterPasswordRoutes(g *echo.Group) {
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)
}

// GetProfile returns the current user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user profile")
	}
	return c.JSON(http.StatusOK, user)
}

// ForgotPassword generates a 4-digit OTP, stores it with an expiry and emails it
func (h *UserHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	otp := 1000 + rand.Intn(9000)
	if err := h.mailer.SendOTP(user.Email, otp); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("failed to send OTP email")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send OTP via email")
	}

	expires := time.Now().Add(otpLifetime)
	user.ResetPasswordOtp = otp
	user.ResetPasswordExpires = &expires
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent successfully"})
}

// ResetPassword validates the OTP and sets a new password
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if user.ResetPasswordOtp == 0 || user.ResetPasswordOtp != req.Otp {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid OTP")
	}
	if user.ResetPasswordExpires == nil || user.ResetPasswordExpires.Before(time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "OTP expired")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user.Password = string(hashedPassword)
	user.ResetPasswordOtp = 0
	user.ResetPasswordExpires = nil
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully"})
}
