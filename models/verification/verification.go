package verification

import (
	"time"
)

// Verification is a short-lived email code used for email verification and
// password resets, with retry accounting and a temporary block window after
// too many failed attempts.
type Verification struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Code          string     `gorm:"type:varchar(6);not null" json:"code"`
	Purpose       Purpose    `gorm:"type:varchar(50);not null" json:"purpose"`
	IsUsed        bool       `gorm:"default:false" json:"is_used"`
	RetryCount    int        `gorm:"default:0" json:"retry_count"`
	MaxRetries    int        `gorm:"default:3" json:"max_retries"`
	IsBlocked     bool       `gorm:"default:false" json:"is_blocked"`
	BlockedUntil  *time.Time `gorm:"index" json:"blocked_until,omitempty"`
	LastAttemptAt *time.Time `gorm:"index" json:"last_attempt_at,omitempty"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Purpose represents what the verification code is for.
type Purpose string

const (
	PurposeEmailVerify   Purpose = "email_verification"
	PurposePasswordReset Purpose = "password_reset"
)

// IsExpired checks if the code has expired
func (v *Verification) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}

// IsValid checks if the code is usable (not used, expired or blocked)
func (v *Verification) IsValid() bool {
	return !v.IsUsed && !v.IsExpired() && !v.IsBlocked
}

// IsCurrentlyBlocked checks if the code is blocked due to failed attempts
func (v *Verification) IsCurrentlyBlocked() bool {
	if !v.IsBlocked {
		return false
	}

	// If BlockedUntil is nil, it's permanently blocked
	if v.BlockedUntil == nil {
		return true
	}

	return !time.Now().After(*v.BlockedUntil)
}

// CanRetry checks if another attempt is allowed
func (v *Verification) CanRetry() bool {
	return !v.IsUsed && !v.IsExpired() && !v.IsCurrentlyBlocked() && v.RetryCount < v.MaxRetries
}

// IncrementRetry increments the retry count and blocks if max retries exceeded
func (v *Verification) IncrementRetry() {
	now := time.Now()
	v.RetryCount++
	v.LastAttemptAt = &now

	if v.RetryCount >= v.MaxRetries {
		v.IsBlocked = true
		// Block for 15 minutes after max retries
		blockUntil := now.Add(15 * time.Minute)
		v.BlockedUntil = &blockUntil
	}
}

// Reset resets the retry state (used when unblocking)
func (v *Verification) Reset() {
	v.RetryCount = 0
	v.IsBlocked = false
	v.BlockedUntil = nil
	v.LastAttemptAt = nil
}
