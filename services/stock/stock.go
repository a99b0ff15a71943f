package stock

import (
	"errors"

	inventoryModel "cylinder-booking/models/inventory"

	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when an adjustment would drive the
// available total negative.
var ErrInsufficientStock = errors.New("adjustment would make available stock negative")

// Apply records a stock change: a ledger entry plus a guarded update of the
// running totals, inside the caller's transaction. The guard on available
// rejects the whole change when stock would go negative.
func Apply(tx *gorm.DB, delta int, reason inventoryModel.AdjustmentReason, note *string, batchID *uint, createdBy string) error {
	updates := map[string]interface{}{
		"available": gorm.Expr("available + ?", delta),
	}

	switch reason {
	case inventoryModel.AdjustmentReasonIssue:
		// Issued cylinders leave the available pool but stay in the total.
		updates["issued"] = gorm.Expr("issued - ?", delta)
	default:
		updates["total"] = gorm.Expr("total + ?", delta)
	}

	res := tx.Model(&inventoryModel.CylinderStock{}).
		Where("id = ? AND available + ? >= 0", 1, delta).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}

	entry := inventoryModel.StockAdjustment{
		Delta:     delta,
		Reason:    reason,
		Note:      note,
		BatchID:   batchID,
		CreatedBy: createdBy,
	}

	return tx.Create(&entry).Error
}
