package verification

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"cylinder-booking/logger"
	verificationModel "cylinder-booking/models/verification"
	"cylinder-booking/services/mailer"

	"gorm.io/gorm"
)

// ErrBlocked is returned when code requests or attempts are blocked after
// too many failures.
var ErrBlocked = errors.New("verification is blocked due to too many failed attempts")

// Service issues and checks email verification codes.
type Service struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
}

func NewService(db *gorm.DB, m mailer.Mailer) *Service {
	return &Service{DB: db, Mailer: m}
}

// GenerateCode generates a random 6-digit code.
func (s *Service) GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendCode creates and emails a verification code for the given address. An
// existing unexpired code is returned as-is instead of issuing a new one.
func (s *Service) SendCode(email string, purpose verificationModel.Purpose) (*verificationModel.Verification, error) {
	existing, err := s.activeCode(email, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing code: %w", err)
	}

	if existing != nil {
		if existing.IsCurrentlyBlocked() {
			return nil, ErrBlocked
		}
		if existing.IsValid() {
			return existing, nil
		}
	}

	code, err := s.GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	// Invalidate any previous unused codes for this address and purpose.
	err = s.DB.Model(&verificationModel.Verification{}).
		Where("email = ? AND purpose = ? AND is_used = false", email, purpose).
		Update("is_used", true).Error
	if err != nil {
		return nil, fmt.Errorf("failed to invalidate existing codes: %w", err)
	}

	record := &verificationModel.Verification{
		Email:      email,
		Code:       code,
		Purpose:    purpose,
		IsUsed:     false,
		RetryCount: 0,
		MaxRetries: 3,
		ExpiresAt:  time.Now().Add(15 * time.Minute),
	}

	if err := s.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create verification record: %w", err)
	}

	subject := "Your verification code"
	if purpose == verificationModel.PurposePasswordReset {
		subject = "Your password reset code"
	}
	body := fmt.Sprintf("Your code is %s. It expires in 15 minutes.", code)

	// Email delivery is best effort; the code is stored regardless.
	if err := s.Mailer.Send(email, subject, body); err != nil {
		logger.Error(fmt.Sprintf("Failed to send verification email to %s", email), err)
	}

	return record, nil
}

// VerifyCode checks a submitted code, counting failed attempts and blocking
// after MaxRetries.
func (s *Service) VerifyCode(email, code string, purpose verificationModel.Purpose) (bool, error) {
	var record verificationModel.Verification

	err := s.DB.Where("email = ? AND purpose = ? AND is_used = false", email, purpose).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil // No code issued
		}
		return false, fmt.Errorf("failed to find verification record: %w", err)
	}

	if record.IsCurrentlyBlocked() {
		return false, ErrBlocked
	}

	if record.IsExpired() {
		return false, fmt.Errorf("verification code has expired")
	}

	if record.Code != code {
		record.IncrementRetry()
		if err := s.DB.Save(&record).Error; err != nil {
			return false, fmt.Errorf("failed to update retry count: %w", err)
		}

		remaining := record.MaxRetries - record.RetryCount
		if remaining <= 0 {
			return false, fmt.Errorf("invalid code. Maximum attempts exceeded")
		}
		return false, fmt.Errorf("invalid code. %d attempts remaining", remaining)
	}

	record.IsUsed = true
	if err := s.DB.Save(&record).Error; err != nil {
		return false, fmt.Errorf("failed to mark code as used: %w", err)
	}

	return true, nil
}

func (s *Service) activeCode(email string, purpose verificationModel.Purpose) (*verificationModel.Verification, error) {
	var record verificationModel.Verification

	err := s.DB.Where("email = ? AND purpose = ?", email, purpose).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// CleanupExpired removes expired verification records.
func (s *Service) CleanupExpired() error {
	return s.DB.Where("expires_at < ?", time.Now()).Delete(&verificationModel.Verification{}).Error
}
