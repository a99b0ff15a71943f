package booking

import (
	"errors"
	"fmt"
	"time"

	"cylinder-booking/logger"
	bookingModel "cylinder-booking/models/booking"
	paymentModel "cylinder-booking/models/payment"
	userModel "cylinder-booking/models/user"
	"cylinder-booking/services/booking_event"
	"cylinder-booking/types"
	bookingTypes "cylinder-booking/types/booking"
	"cylinder-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListAll returns all bookings for administrators with optional status,
// payment method, user and date-range filters.
func (h *BookingController) ListAll(c *fiber.Ctx) error {
	page, limit, offset := utils.ParsePagination(c)

	query := h.db.Model(&bookingModel.Booking{})

	if status := c.Query("status"); status != "" {
		if !bookingModel.BookingStatus(status).IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid status filter",
			})
		}
		query = query.Where("status = ?", status)
	}
	if method := c.Query("payment_method"); method != "" {
		if !bookingModel.PaymentMethod(method).IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid payment method filter",
			})
		}
		query = query.Where("payment_method = ?", method)
	}
	if userID := c.QueryInt("user_id", 0); userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid from date, expected YYYY-MM-DD",
			})
		}
		query = query.Where("requested_at >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid to date, expected YYYY-MM-DD",
			})
		}
		query = query.Where("requested_at < ?", t.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var bookings []bookingModel.Booking
	err := query.Preload("User").Preload("AddressInfo").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&bookings).Error
	if err != nil {
		logger.Error("Failed to list bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Bookings retrieved successfully",
		Data: fiber.Map{
			"bookings": bookings,
			"pagination": types.Pagination{
				Page:       page,
				Limit:      limit,
				Total:      total,
				TotalPages: utils.TotalPages(total, limit),
			},
		},
	})
}

// Approve moves a PENDING booking to APPROVED and sets the expected delivery
// date (defaults to 48 hours out when the admin does not pick one).
func (h *BookingController) Approve(c *fiber.Ctx) error {
	defer h.logAPIRequest(c)

	var req bookingTypes.BookingApproveRequest
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

	var b bookingModel.Booking
	err = h.db.Preload("User").First(&b, req.BookingID).Error
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

	if !b.Status.CanApprove() {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Booking in status %s cannot be approved", b.Status),
		})
	}

	expected := time.Now().Add(48 * time.Hour)
	if req.ExpectedDeliveryDate != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.ExpectedDeliveryDate)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid expected delivery date, expected YYYY-MM-DD",
			})
		}
		expected = parsed
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		b.Status = bookingModel.BookingStatusApproved
		b.ExpectedDeliveryAt = &expected
		b.UpdatedBy = admin.Email
		if err := tx.Model(&bookingModel.Booking{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
			"status":               b.Status,
			"expected_delivery_at": b.ExpectedDeliveryAt,
			"updated_by":           b.UpdatedBy,
		}).Error; err != nil {
			return err
		}

		return booking_event.Snapshot(tx, &b, "approved", admin.Email)
	})
	if err != nil {
		logger.Error("Failed to approve booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to approve booking",
		})
	}

	if err := h.mailer.Send(b.User.Email, "Booking approved: "+b.BookingRef,
		fmt.Sprintf("Your booking %s has been approved. Expected delivery by %s.",
			b.BookingRef, expected.Format("02 Jan 2006"))); err != nil {
		logger.Error("Failed to send approval email", err)
	}

	logger.Success(fmt.Sprintf("Booking %s approved by %s", b.BookingRef, admin.Email))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking approved successfully",
		Data:    b,
	})
}

// AdminCancel cancels any PENDING or APPROVED booking on behalf of the
// agency, restoring the customer's quota and voiding the open payment.
func (h *BookingController) AdminCancel(c *fiber.Ctx) error {
	defer h.logAPIRequest(c)

	var req bookingTypes.BookingCancelRequest
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

	var b bookingModel.Booking
	err = h.db.Preload("User").First(&b, req.BookingID).Error
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

	if !b.Status.CanCancel() {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Booking in status %s cannot be cancelled", b.Status),
		})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		b.Status = bookingModel.BookingStatusCancelled
		b.UpdatedBy = admin.Email
		if err := tx.Model(&bookingModel.Booking{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
			"status":     b.Status,
			"updated_by": b.UpdatedBy,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&userModel.User{}).Where("id = ?", b.UserID).
			Update("remaining_quota", gorm.Expr("remaining_quota + ?", b.Quantity)).Error; err != nil {
			return err
		}

		if err := tx.Model(&paymentModel.Payment{}).
			Where("booking_id = ? AND status = ?", b.ID, paymentModel.PaymentStatusPending).
			Update("status", paymentModel.PaymentStatusCancelled).Error; err != nil {
			return err
		}

		return booking_event.Snapshot(tx, &b, "cancelled", admin.Email)
	})
	if err != nil {
		logger.Error("Failed to cancel booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to cancel booking",
		})
	}

	if err := h.mailer.Send(b.User.Email, "Booking cancelled: "+b.BookingRef,
		fmt.Sprintf("Your booking %s was cancelled by the agency and %d cylinder(s) were returned to your quota.",
			b.BookingRef, b.Quantity)); err != nil {
		logger.Error("Failed to send cancellation email", err)
	}

	logger.Success(fmt.Sprintf("Booking %s cancelled by admin %s", b.BookingRef, admin.Email))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking cancelled successfully",
		Data:    b,
	})
}
