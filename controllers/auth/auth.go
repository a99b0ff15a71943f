package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"cylinder-booking/constants"
	"cylinder-booking/logger"
	userModel "cylinder-booking/models/user"
	verificationModel "cylinder-booking/models/verification"
	"cylinder-booking/services/mailer"
	verificationService "cylinder-booking/services/verification"
	"cylinder-booking/types"
	authTypes "cylinder-booking/types/auth"
	"cylinder-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthController struct {
	db             *gorm.DB
	loggerInstance *logger.AsyncLogger
	verifySvc      *verificationService.Service
}

func NewAuthController(db *gorm.DB, asyncLogger *logger.AsyncLogger, m mailer.Mailer) *AuthController {
	return &AuthController{
		db:             db,
		loggerInstance: asyncLogger,
		verifySvc:      verificationService.NewService(db, m),
	}
}

// Helper function to set secure cookies based on environment
func (h *AuthController) setSecureCookie(c *fiber.Ctx, name, value string, maxAge int) {
	isProduction := os.Getenv("APP_ENV") == "production"

	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   isProduction, // Only secure in production (HTTPS)
		SameSite: "Strict",
		MaxAge:   maxAge,
		Path:     "/",
	})
}

func defaultYearlyQuota() int {
	if v := os.Getenv("DEFAULT_YEARLY_QUOTA"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 12
}

// Register creates a new customer account and emails a verification code.
func (h *AuthController) Register(c *fiber.Ctx) error {
	var req authTypes.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	// Reject duplicate email or phone up front.
	var existing userModel.User
	err := h.db.Where("email = ? OR phone = ?", req.Email, req.Phone).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "An account with this email or phone already exists",
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Database error while checking existing user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	newUser := userModel.User{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		PasswordHash:   hash,
		Role:           constants.RoleUser,
		Address:        req.Address,
		RemainingQuota: defaultYearlyQuota(),
		QuotaYear:      time.Now().Year(),
	}
	if req.City != "" {
		newUser.City = &req.City
	}
	if req.Pincode != "" {
		newUser.Pincode = &req.Pincode
	}

	if err := h.db.Create(&newUser).Error; err != nil {
		logger.Error("Failed to create user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	// Verification email is best effort; account creation stands regardless.
	if _, err := h.verifySvc.SendCode(newUser.Email, verificationModel.PurposeEmailVerify); err != nil {
		logger.Error("Failed to send verification code", err)
	}

	logger.Success(fmt.Sprintf("User registered: %s", newUser.Email))

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Account created. Check your email for a verification code.",
		Data:    newUser,
	})
}

// Login checks credentials and issues the access token cookie.
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	var u userModel.User
	if err := h.db.Where("email = ?", req.Email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid email or password",
			})
		}
		logger.Error("Failed to find user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	token, err := utils.GenerateToken(&u)
	if err != nil {
		logger.Error("Failed to sign token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create session",
		})
	}

	h.setSecureCookie(c, "access", token, 24*60*60)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   token,
		Data:    u,
	})
}

// LogOut clears the access cookie.
func (h *AuthController) LogOut(c *fiber.Ctx) error {
	h.setSecureCookie(c, "access", "", -1)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Logged out",
	})
}

// VerifyEmail checks the emailed code and marks the account verified.
func (h *AuthController) VerifyEmail(c *fiber.Ctx) error {
	var req authTypes.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ok, err := h.verifySvc.VerifyCode(req.Email, req.Code, verificationModel.PurposeEmailVerify)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, verificationService.ErrBlocked) {
			status = fiber.StatusTooManyRequests
		}
		return c.Status(status).JSON(types.ApiResponse{
			Status:  status,
			Message: err.Error(),
		})
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid or expired code",
		})
	}

	if err := h.db.Model(&userModel.User{}).Where("email = ?", req.Email).
		Update("email_verified", true).Error; err != nil {
		logger.Error("Failed to mark email verified", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update account",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Email verified successfully",
	})
}

// ForgotPassword emails a password reset code.
func (h *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req authTypes.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	var u userModel.User
	if err := h.db.Where("email = ?", req.Email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "No account found for this email",
			})
		}
		logger.Error("Failed to find user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	if _, err := h.verifySvc.SendCode(u.Email, verificationModel.PurposePasswordReset); err != nil {
		if errors.Is(err, verificationService.ErrBlocked) {
			return c.Status(fiber.StatusTooManyRequests).JSON(types.ApiResponse{
				Status:  fiber.StatusTooManyRequests,
				Message: err.Error(),
			})
		}
		logger.Error("Failed to send reset code", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to send reset code",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Password reset code sent",
	})
}

// ResetPassword checks the emailed code and replaces the password hash.
func (h *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req authTypes.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ok, err := h.verifySvc.VerifyCode(req.Email, req.Code, verificationModel.PurposePasswordReset)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, verificationService.ErrBlocked) {
			status = fiber.StatusTooManyRequests
		}
		return c.Status(status).JSON(types.ApiResponse{
			Status:  status,
			Message: err.Error(),
		})
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid or expired code",
		})
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to reset password",
		})
	}

	if err := h.db.Model(&userModel.User{}).Where("email = ?", req.Email).
		Update("password_hash", hash).Error; err != nil {
		logger.Error("Failed to update password", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to reset password",
		})
	}

	logger.Success(fmt.Sprintf("Password reset for %s", req.Email))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Password reset successfully",
	})
}
