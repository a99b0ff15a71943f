package inventory

import (
	"time"
)

// AdjustmentReason is the reason code attached to a stock ledger entry.
type AdjustmentReason string

const (
	AdjustmentReasonReceive    AdjustmentReason = "RECEIVE"
	AdjustmentReasonIssue      AdjustmentReason = "ISSUE"
	AdjustmentReasonDamage     AdjustmentReason = "DAMAGE"
	AdjustmentReasonAudit      AdjustmentReason = "AUDIT"
	AdjustmentReasonCorrection AdjustmentReason = "CORRECTION"
)

func (ar AdjustmentReason) String() string {
	return string(ar)
}

func (ar AdjustmentReason) IsValid() bool {
	switch ar {
	case AdjustmentReasonReceive, AdjustmentReasonIssue, AdjustmentReasonDamage,
		AdjustmentReasonAudit, AdjustmentReasonCorrection:
		return true
	default:
		return false
	}
}

// CylinderStock is the running inventory total. A single row is maintained;
// every change to it has a matching StockAdjustment ledger entry.
type CylinderStock struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Total     int       `gorm:"not null;default:0" json:"total"`
	Available int       `gorm:"not null;default:0" json:"available"`
	Issued    int       `gorm:"not null;default:0" json:"issued"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CylinderBatch records a delivery of cylinders from a supplier.
type CylinderBatch struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchRef   string    `gorm:"type:varchar(64);not null;unique" json:"batch_ref"`
	Supplier   string    `gorm:"type:varchar(255);not null" json:"supplier"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	ReceivedAt time.Time `gorm:"not null" json:"received_at"`
	CreatedBy  string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// StockAdjustment is an append-only ledger entry recording a delta applied
// to the available stock, with its reason code.
type StockAdjustment struct {
	ID     uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Delta  int              `gorm:"not null" json:"delta"`
	Reason AdjustmentReason `gorm:"type:varchar(20);not null;index" json:"reason"`
	Note   *string          `gorm:"type:text" json:"note,omitempty"`

	// BatchID links RECEIVE entries back to their batch.
	BatchID *uint `gorm:"index" json:"batch_id,omitempty"`

	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
