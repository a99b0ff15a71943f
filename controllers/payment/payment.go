package payment

import (
	"errors"
	"fmt"

	"cylinder-booking/logger"
	bookingModel "cylinder-booking/models/booking"
	paymentModel "cylinder-booking/models/payment"
	"cylinder-booking/services/booking_event"
	"cylinder-booking/services/mailer"
	"cylinder-booking/services/upi"
	"cylinder-booking/types"
	paymentTypes "cylinder-booking/types/payment"
	"cylinder-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaymentController struct {
	db             *gorm.DB
	loggerInstance *logger.AsyncLogger
	mailer         mailer.Mailer
}

func NewPaymentController(db *gorm.DB, asyncLogger *logger.AsyncLogger, m mailer.Mailer) *PaymentController {
	return &PaymentController{db: db, loggerInstance: asyncLogger, mailer: m}
}

func (h *PaymentController) logAPIRequest(c *fiber.Ctx) {
	if h.loggerInstance == nil {
		return
	}
	h.loggerInstance.Log(utils.CreateSanitizedLogEntry(c))
}

// latestPayment returns the current payment attempt for a booking.
func latestPayment(db *gorm.DB, bookingID uint) (*paymentModel.Payment, error) {
	var p paymentModel.Payment
	err := db.Where("booking_id = ?", bookingID).Order("created_at DESC").First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetLink regenerates the UPI deep link for the user's own booking while its
// payment is still pending.
func (h *PaymentController) GetLink(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}

	userID, err := utils.UserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	var b bookingModel.Booking
	err = h.db.Where("id = ? AND user_id = ?", bookingID, userID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
			})
		}
		logger.Error("Failed to load booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if b.PaymentMethod != bookingModel.PaymentMethodUPI {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Booking is not paid via UPI",
		})
	}

	p, err := latestPayment(h.db, b.ID)
	if err != nil {
		logger.Error("Failed to load payment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if p.Status != paymentModel.PaymentStatusPending {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Payment is already %s", p.Status),
		})
	}

	link, err := upi.PaymentLinkFromEnv(b.BookingRef, p.Amount,
		fmt.Sprintf("Cylinder booking %s", b.BookingRef))
	if err != nil {
		logger.Error("Failed to build UPI link", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "UPI payments are not configured",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Payment link generated",
		Data: fiber.Map{
			"payment":  p,
			"upi_link": link,
		},
	})
}

// SubmitUPI records the UPI transaction reference the customer paid with.
// The payment stays PENDING until an admin confirms it.
func (h *PaymentController) SubmitUPI(c *fiber.Ctx) error {
	defer h.logAPIRequest(c)

	var req paymentTypes.SubmitUPIRequest
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

	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	var b bookingModel.Booking
	err = h.db.Where("id = ? AND user_id = ?", req.BookingID, u.ID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
			})
		}
		logger.Error("Failed to load booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if b.PaymentMethod != bookingModel.PaymentMethodUPI {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Booking is not paid via UPI",
		})
	}

	p, err := latestPayment(h.db, b.ID)
	if err != nil {
		logger.Error("Failed to load payment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if p.Status != paymentModel.PaymentStatusPending {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Payment is already %s", p.Status),
		})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&paymentModel.Payment{}).Where("id = ?", p.ID).
			Update("upi_transaction_id", req.UPITransactionID).Error; err != nil {
			return err
		}
		return booking_event.Snapshot(tx, &b, "payment_submitted", u.Email)
	})
	if err != nil {
		logger.Error("Failed to record UPI transaction", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to record UPI transaction",
		})
	}

	logger.Success(fmt.Sprintf("UPI txn submitted for booking %s", b.BookingRef))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "UPI transaction submitted for review",
	})
}

// ListPendingReviews returns UPI payments awaiting admin review (transaction
// reference submitted, still PENDING).
func (h *PaymentController) ListPendingReviews(c *fiber.Ctx) error {
	page, limit, offset := utils.ParsePagination(c)

	query := h.db.Model(&paymentModel.Payment{}).
		Where("status = ? AND method = ? AND upi_transaction_id IS NOT NULL",
			paymentModel.PaymentStatusPending, bookingModel.PaymentMethodUPI)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count payments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var payments []paymentModel.Payment
	err := query.Preload("Booking").Preload("Booking.User").
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&payments).Error
	if err != nil {
		logger.Error("Failed to list payments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Pending payments retrieved successfully",
		Data: fiber.Map{
			"payments": payments,
			"pagination": types.Pagination{
				Page:       page,
				Limit:      limit,
				Total:      total,
				TotalPages: utils.TotalPages(total, limit),
			},
		},
	})
}

// Review confirms or rejects a pending UPI payment. A rejection voids the
// attempt and opens a fresh pending payment so the customer can retry.
func (h *PaymentController) Review(c *fiber.Ctx) error {
	defer h.logAPIRequest(c)

	var req paymentTypes.ReviewRequest
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

	var p paymentModel.Payment
	err = h.db.Preload("Booking").Preload("Booking.User").First(&p, req.PaymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Payment not found",
			})
		}
		logger.Error("Failed to load payment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if !p.Reviewable() {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Only pending UPI payments can be reviewed",
		})
	}

	newStatus := paymentModel.PaymentStatusSuccess
	eventType := "payment_confirmed"
	if req.Action == paymentTypes.ReviewActionReject {
		newStatus = paymentModel.PaymentStatusFailed
		eventType = "payment_rejected"
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&paymentModel.Payment{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"status":      newStatus,
			"reviewed_by": admin.Email,
		}).Error; err != nil {
			return err
		}

		if newStatus == paymentModel.PaymentStatusFailed {
			retry := paymentModel.Payment{
				BookingID: p.BookingID,
				Amount:    p.Amount,
				Method:    p.Method,
				Status:    paymentModel.PaymentStatusPending,
			}
			if err := tx.Create(&retry).Error; err != nil {
				return err
			}
		}

		return booking_event.Snapshot(tx, &p.Booking, eventType, admin.Email)
	})
	if err != nil {
		logger.Error("Failed to review payment", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to review payment",
		})
	}

	subject := "Payment confirmed: " + p.Booking.BookingRef
	body := fmt.Sprintf("Your UPI payment of Rs. %.2f for booking %s has been confirmed.",
		p.Amount, p.Booking.BookingRef)
	if newStatus == paymentModel.PaymentStatusFailed {
		subject = "Payment rejected: " + p.Booking.BookingRef
		body = fmt.Sprintf("Your UPI payment for booking %s could not be verified. Please pay again and resubmit the transaction reference.",
			p.Booking.BookingRef)
		if req.Note != "" {
			body += " Reason: " + req.Note
		}
	}
	if err := h.mailer.Send(p.Booking.User.Email, subject, body); err != nil {
		logger.Error("Failed to send payment review email", err)
	}

	logger.Success(fmt.Sprintf("Payment %d on booking %s marked %s by %s",
		p.ID, p.Booking.BookingRef, newStatus, admin.Email))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: fmt.Sprintf("Payment %s", newStatus),
	})
}
