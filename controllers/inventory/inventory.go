package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cylinder-booking/logger"
	inventoryModel "cylinder-booking/models/inventory"
	"cylinder-booking/services/stock"
	"cylinder-booking/types"
	inventoryTypes "cylinder-booking/types/inventory"
	"cylinder-booking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryController struct {
	db             *gorm.DB
	loggerInstance *logger.AsyncLogger
}

func NewInventoryController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *InventoryController {
	return &InventoryController{db: db, loggerInstance: asyncLogger}
}

func (h *InventoryController) logAPIRequest(c *fiber.Ctx) {
	if h.loggerInstance == nil {
		return
	}
	h.loggerInstance.Log(utils.CreateSanitizedLogEntry(c))
}

func newBatchRef() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("BATCH-%d-%s", time.Now().Year(), id[:8])
}

// GetStock returns the running stock totals.
func (h *InventoryController) GetStock(c *fiber.Ctx) error {
	var s inventoryModel.CylinderStock
	if err := h.db.First(&s, 1).Error; err != nil {
		logger.Error("Failed to load stock", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Stock retrieved successfully",
		Data:    s,
	})
}

// ReceiveBatch records a supplier delivery: a batch row plus a RECEIVE ledger
// entry bumping the stock totals, in one transaction.
func (h *InventoryController) ReceiveBatch(c *fiber.Ctx) error {
	defer h.logAPIRequest(c)

	var req inventoryTypes.BatchReceiveRequest
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

	admin, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	receivedAt := time.Now()
	if req.ReceivedDate != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.ReceivedDate)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid received date, expected YYYY-MM-DD",
			})
		}
		receivedAt = parsed
	}

	batch := inventoryModel.CylinderBatch{
		BatchRef:   newBatchRef(),
		Supplier:   req.Supplier,
		Quantity:   req.Quantity,
		ReceivedAt: receivedAt,
		CreatedBy:  admin.Email,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}

		note := fmt.Sprintf("Batch %s from %s", batch.BatchRef, batch.Supplier)
		return stock.Apply(tx, req.Quantity, inventoryModel.AdjustmentReasonReceive,
			&note, &batch.ID, admin.Email)
	})
	if err != nil {
		logger.Error("Failed to receive batch", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to receive batch",
		})
	}

	logger.Success(fmt.Sprintf("Batch %s received: %d cylinder(s)", batch.BatchRef, batch.Quantity))

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Batch received successfully",
		Data:    batch,
	})
}

// Adjust applies a manual stock correction with a reason code. Adjustments
// that would take available stock negative are rejected.
func (h *InventoryController) Adjust(c *fiber.Ctx) error {
	defer h.logAPIRequest(c)

	var req inventoryTypes.AdjustRequest
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

	admin, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	var note *string
	if req.Note != "" {
		note = &req.Note
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		return stock.Apply(tx, req.Delta, inventoryModel.AdjustmentReason(req.Reason),
			note, nil, admin.Email)
	})
	if err != nil {
		if errors.Is(err, stock.ErrInsufficientStock) {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: err.Error(),
			})
		}
		logger.Error("Failed to adjust stock", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to adjust stock",
		})
	}

	var s inventoryModel.CylinderStock
	if err := h.db.First(&s, 1).Error; err != nil {
		logger.Error("Failed to reload stock", err)
	}

	logger.Success(fmt.Sprintf("Stock adjusted by %d (%s) by %s", req.Delta, req.Reason, admin.Email))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Stock adjusted successfully",
		Data:    s,
	})
}

// ListAdjustments returns the stock ledger, newest first, with an optional
// reason filter.
func (h *InventoryController) ListAdjustments(c *fiber.Ctx) error {
	page, limit, offset := utils.ParsePagination(c)

	query := h.db.Model(&inventoryModel.StockAdjustment{})
	if reason := c.Query("reason"); reason != "" {
		if !inventoryModel.AdjustmentReason(reason).IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid reason filter",
			})
		}
		query = query.Where("reason = ?", reason)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count adjustments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var entries []inventoryModel.StockAdjustment
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		logger.Error("Failed to list adjustments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Adjustments retrieved successfully",
		Data: fiber.Map{
			"adjustments": entries,
			"pagination": types.Pagination{
				Page:       page,
				Limit:      limit,
				Total:      total,
				TotalPages: utils.TotalPages(total, limit),
			},
		},
	})
}

// ListBatches returns received supplier batches, newest first.
func (h *InventoryController) ListBatches(c *fiber.Ctx) error {
	page, limit, offset := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&inventoryModel.CylinderBatch{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count batches", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var batches []inventoryModel.CylinderBatch
	err := h.db.Order("received_at DESC").Offset(offset).Limit(limit).Find(&batches).Error
	if err != nil {
		logger.Error("Failed to list batches", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Batches retrieved successfully",
		Data: fiber.Map{
			"batches": batches,
			"pagination": types.Pagination{
				Page:       page,
				Limit:      limit,
				Total:      total,
				TotalPages: utils.TotalPages(total, limit),
			},
		},
	})
}
