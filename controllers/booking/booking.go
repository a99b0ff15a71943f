package booking

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cylinder-booking/logger"
	bookingModel "cylinder-booking/models/booking"
	paymentModel "cylinder-booking/models/payment"
	userModel "cylinder-booking/models/user"
	"cylinder-booking/services/booking_event"
	"cylinder-booking/services/mailer"
	"cylinder-booking/services/upi"
	"cylinder-booking/types"
	bookingTypes "cylinder-booking/types/booking"
	"cylinder-booking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errQuotaExceeded = errors.New("remaining quota is not enough for this booking")

type BookingController struct {
	db             *gorm.DB
	loggerInstance *logger.AsyncLogger
	mailer         mailer.Mailer
}

func NewBookingController(db *gorm.DB, asyncLogger *logger.AsyncLogger, m mailer.Mailer) *BookingController {
	return &BookingController{db: db, loggerInstance: asyncLogger, mailer: m}
}

func (h *BookingController) logAPIRequest(c *fiber.Ctx) {
	if h.loggerInstance == nil {
		return
	}
	h.loggerInstance.Log(utils.CreateSanitizedLogEntry(c))
}

func cylinderPrice() float64 {
	if v := os.Getenv("CYLINDER_PRICE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 850
}

func newBookingRef() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("GB-%d-%s", time.Now().Year(), id[:8])
}

// Create places a booking against the user's yearly quota. The quota
// decrement, address snapshot, booking row, pending payment and audit event
// are committed in one transaction; the quota check is a guarded update so
// concurrent bookings cannot overdraw it.
func (h *BookingController) Create(c *fiber.Ctx) error {
	defer h.logAPIRequest(c)

	var req bookingTypes.BookingCreateRequest
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

	amount := float64(req.Quantity) * cylinderPrice()

	var created bookingModel.Booking
	var pay paymentModel.Payment

	err = h.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userModel.User{}).
			Where("id = ? AND remaining_quota >= ?", u.ID, req.Quantity).
			Update("remaining_quota", gorm.Expr("remaining_quota - ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errQuotaExceeded
		}

		addr := req.ToAddress()
		if err := tx.Create(&addr).Error; err != nil {
			return err
		}

		created = bookingModel.Booking{
			BookingRef:    newBookingRef(),
			UserID:        u.ID,
			AddressID:     addr.ID,
			Status:        bookingModel.BookingStatusPending,
			PaymentMethod: bookingModel.PaymentMethod(req.PaymentMethod),
			Quantity:      req.Quantity,
			RequestedAt:   time.Now(),
			CreatedBy:     u.Email,
		}
		if req.ReceiverName != "" {
			created.ReceiverName = &req.ReceiverName
		}
		if req.ReceiverPhone != "" {
			created.ReceiverPhone = &req.ReceiverPhone
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		pay = paymentModel.Payment{
			BookingID: created.ID,
			Amount:    amount,
			Method:    created.PaymentMethod,
			Status:    paymentModel.PaymentStatusPending,
		}
		if err := tx.Create(&pay).Error; err != nil {
			return err
		}

		return booking_event.Snapshot(tx, &created, "created", u.Email)
	})
	if err != nil {
		if errors.Is(err, errQuotaExceeded) {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: fmt.Sprintf("Quota exceeded: only %d cylinder(s) remaining this year", u.RemainingQuota),
			})
		}
		logger.Error("Failed to create booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create booking",
		})
	}

	data := fiber.Map{
		"booking": created,
		"payment": pay,
	}

	emailBody := fmt.Sprintf(
		"Your booking %s for %d cylinder(s) has been placed. Amount due: Rs. %.2f.",
		created.BookingRef, created.Quantity, amount)

	if created.PaymentMethod == bookingModel.PaymentMethodUPI {
		link, linkErr := upi.PaymentLinkFromEnv(created.BookingRef, amount,
			fmt.Sprintf("Cylinder booking %s", created.BookingRef))
		if linkErr != nil {
			logger.Warning("UPI link unavailable: " + linkErr.Error())
		} else {
			data["upi_link"] = link
			emailBody += " Pay via UPI: " + link
		}
	}

	if err := h.mailer.Send(u.Email, "Booking placed: "+created.BookingRef, emailBody); err != nil {
		logger.Error("Failed to send booking confirmation email", err)
	}

	logger.Success(fmt.Sprintf("Booking %s created by %s", created.BookingRef, u.Email))

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Booking created successfully",
		Data:    data,
	})
}

// ListMine returns the authenticated user's bookings, newest first.
func (h *BookingController) ListMine(c *fiber.Ctx) error {
	userID, err := utils.UserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	page, limit, offset := utils.ParsePagination(c)

	query := h.db.Model(&bookingModel.Booking{}).Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		if !bookingModel.BookingStatus(status).IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid status filter",
			})
		}
		query = query.Where("status = ?", status)
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
	err = query.Preload("AddressInfo").
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

// GetOne returns a single booking with its payments and audit trail. Users
// may only read their own bookings.
func (h *BookingController) GetOne(c *fiber.Ctx) error {
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
	err = h.db.Preload("User").Preload("AddressInfo").
		Where("id = ? AND user_id = ?", bookingID, userID).
		First(&b).Error
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

	var payments []paymentModel.Payment
	if err := h.db.Where("booking_id = ?", b.ID).Order("created_at DESC").Find(&payments).Error; err != nil {
		logger.Error("Failed to load payments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var events []bookingModel.BookingEvent
	if err := h.db.Where("booking_id = ?", b.ID).Order("created_at ASC").Find(&events).Error; err != nil {
		logger.Error("Failed to load booking events", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking retrieved successfully",
		Data: fiber.Map{
			"booking":  b,
			"payments": payments,
			"events":   events,
		},
	})
}

// Cancel cancels one of the user's own bookings while it is still PENDING or
// APPROVED, restoring the quota and voiding any open payment.
func (h *BookingController) Cancel(c *fiber.Ctx) error {
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

	if !b.Status.CanCancel() {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Booking in status %s cannot be cancelled", b.Status),
		})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		b.Status = bookingModel.BookingStatusCancelled
		b.UpdatedBy = u.Email
		if err := tx.Model(&bookingModel.Booking{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
			"status":     b.Status,
			"updated_by": b.UpdatedBy,
		}).Error; err != nil {
			return err
		}

		// Cancelled bookings give the quota back.
		if err := tx.Model(&userModel.User{}).Where("id = ?", u.ID).
			Update("remaining_quota", gorm.Expr("remaining_quota + ?", b.Quantity)).Error; err != nil {
			return err
		}

		if err := tx.Model(&paymentModel.Payment{}).
			Where("booking_id = ? AND status = ?", b.ID, paymentModel.PaymentStatusPending).
			Update("status", paymentModel.PaymentStatusCancelled).Error; err != nil {
			return err
		}

		return booking_event.Snapshot(tx, &b, "cancelled", u.Email)
	})
	if err != nil {
		logger.Error("Failed to cancel booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to cancel booking",
		})
	}

	if err := h.mailer.Send(u.Email, "Booking cancelled: "+b.BookingRef,
		fmt.Sprintf("Your booking %s has been cancelled and %d cylinder(s) were returned to your quota.",
			b.BookingRef, b.Quantity)); err != nil {
		logger.Error("Failed to send cancellation email", err)
	}

	logger.Success(fmt.Sprintf("Booking %s cancelled by %s", b.BookingRef, u.Email))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking cancelled successfully",
		Data:    b,
	})
}
