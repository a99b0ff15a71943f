package analytics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"cylinder-booking/logger"
	bookingModel "cylinder-booking/models/booking"
	deliveryModel "cylinder-booking/models/delivery"
	inventoryModel "cylinder-booking/models/inventory"
	paymentModel "cylinder-booking/models/payment"
	"cylinder-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	db *gorm.DB
}

func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{db: db}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type partnerDeliveries struct {
	PartnerID   uint   `json:"partner_id"`
	PartnerName string `json:"partner_name"`
	Delivered   int64  `json:"delivered"`
}

// dateRange parses optional from/to query params into a half-open interval.
// The to date is inclusive (extended to the next midnight).
func dateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if v := c.Query("from"); v != "" {
		t, parseErr := time.Parse("2006-01-02", v)
		if parseErr != nil {
			return nil, nil, fmt.Errorf("invalid from date, expected YYYY-MM-DD")
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, parseErr := time.Parse("2006-01-02", v)
		if parseErr != nil {
			return nil, nil, fmt.Errorf("invalid to date, expected YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	return from, to, nil
}

func applyRange(q *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where(column+" >= ?", *from)
	}
	if to != nil {
		q = q.Where(column+" < ?", *to)
	}
	return q
}

// Summary returns the admin dashboard numbers: booking status breakdown,
// revenue, month-to-date activity, per-partner delivery counts and the
// stock snapshot.
func (h *AnalyticsController) Summary(c *fiber.Ctx) error {
	var byStatus []statusCount
	err := h.db.Model(&bookingModel.Booking{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		logger.Error("Failed to count bookings by status", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var collected, pending float64
	err = h.db.Model(&paymentModel.Payment{}).
		Where("status = ?", paymentModel.PaymentStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&collected).Error
	if err != nil {
		logger.Error("Failed to sum collected payments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}
	err = h.db.Model(&paymentModel.Payment{}).
		Where("status = ?", paymentModel.PaymentStatusPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&pending).Error
	if err != nil {
		logger.Error("Failed to sum pending payments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	monthStart := now.BeginningOfMonth()

	var monthBookings int64
	err = h.db.Model(&bookingModel.Booking{}).
		Where("created_at >= ?", monthStart).
		Count(&monthBookings).Error
	if err != nil {
		logger.Error("Failed to count month bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var monthDelivered int64
	err = h.db.Model(&bookingModel.Booking{}).
		Where("status = ? AND delivered_at >= ?", bookingModel.BookingStatusDelivered, monthStart).
		Count(&monthDelivered).Error
	if err != nil {
		logger.Error("Failed to count month deliveries", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var monthRevenue float64
	err = h.db.Model(&paymentModel.Payment{}).
		Where("status = ? AND updated_at >= ?", paymentModel.PaymentStatusSuccess, monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&monthRevenue).Error
	if err != nil {
		logger.Error("Failed to sum month revenue", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var byPartner []partnerDeliveries
	err = h.db.Table("delivery_assignments").
		Select("delivery_assignments.partner_id, delivery_partners.name AS partner_name, COUNT(*) AS delivered").
		Joins("JOIN delivery_partners ON delivery_partners.id = delivery_assignments.partner_id").
		Where("delivery_assignments.status = ?", deliveryModel.AssignmentStatusDelivered).
		Group("delivery_assignments.partner_id, delivery_partners.name").
		Order("delivered DESC").
		Scan(&byPartner).Error
	if err != nil {
		logger.Error("Failed to count partner deliveries", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var stock inventoryModel.CylinderStock
	if err := h.db.First(&stock, 1).Error; err != nil {
		logger.Error("Failed to load stock", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Summary retrieved successfully",
		Data: fiber.Map{
			"bookings_by_status": byStatus,
			"revenue": fiber.Map{
				"collected": collected,
				"pending":   pending,
			},
			"month_to_date": fiber.Map{
				"bookings":  monthBookings,
				"delivered": monthDelivered,
				"revenue":   monthRevenue,
			},
			"deliveries_by_partner": byPartner,
			"stock":                 stock,
		},
	})
}

// ExportBookingsCSV streams all bookings in the requested date range as a
// CSV download.
func (h *AnalyticsController) ExportBookingsCSV(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	query := applyRange(h.db.Model(&bookingModel.Booking{}), "bookings.created_at", from, to)

	var bookings []bookingModel.Booking
	err = query.Preload("User").Preload("AddressInfo").
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		logger.Error("Failed to load bookings for export", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"booking_ref", "customer_name", "customer_email", "customer_phone",
		"status", "payment_method", "quantity", "city", "pincode",
		"requested_at", "expected_delivery_at", "delivered_at",
	}
	if err := w.Write(header); err != nil {
		logger.Error("Failed to write CSV header", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to build export",
		})
	}

	formatTime := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(time.RFC3339)
	}

	for _, b := range bookings {
		record := []string{
			b.BookingRef,
			b.User.Name,
			b.User.Email,
			b.User.Phone,
			b.Status.String(),
			b.PaymentMethod.String(),
			strconv.Itoa(b.Quantity),
			b.AddressInfo.City,
			b.AddressInfo.Pincode,
			b.RequestedAt.Format(time.RFC3339),
			formatTime(b.ExpectedDeliveryAt),
			formatTime(b.DeliveredAt),
		}
		if err := w.Write(record); err != nil {
			logger.Error("Failed to write CSV record", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to build export",
			})
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		logger.Error("Failed to flush CSV", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to build export",
		})
	}

	filename := fmt.Sprintf("bookings-%s.csv", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	return c.Send(buf.Bytes())
}

// ExportPaymentsCSV streams all payments in the requested date range as a
// CSV download.
func (h *AnalyticsController) ExportPaymentsCSV(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	query := applyRange(h.db.Model(&paymentModel.Payment{}), "payments.created_at", from, to)

	var payments []paymentModel.Payment
	err = query.Preload("Booking").Preload("Booking.User").
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		logger.Error("Failed to load payments for export", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"payment_id", "booking_ref", "customer_email", "amount",
		"method", "status", "upi_transaction_id", "reviewed_by", "created_at",
	}
	if err := w.Write(header); err != nil {
		logger.Error("Failed to write CSV header", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to build export",
		})
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	for _, p := range payments {
		record := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Booking.BookingRef,
			p.Booking.User.Email,
			fmt.Sprintf("%.2f", p.Amount),
			p.Method.String(),
			p.Status.String(),
			deref(p.UPITransactionID),
			deref(p.ReviewedBy),
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			logger.Error("Failed to write CSV record", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to build export",
			})
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		logger.Error("Failed to flush CSV", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to build export",
		})
	}

	filename := fmt.Sprintf("payments-%s.csv", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	return c.Send(buf.Bytes())
}

// ExportDeliveriesCSV streams delivery assignments in the requested date
// range as a CSV download.
func (h *AnalyticsController) ExportDeliveriesCSV(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	query := applyRange(h.db.Model(&deliveryModel.DeliveryAssignment{}), "delivery_assignments.created_at", from, to)

	var assignments []deliveryModel.DeliveryAssignment
	err = query.Preload("Partner").Preload("Booking").Preload("Booking.User").
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		logger.Error("Failed to load assignments for export", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"assignment_id", "booking_ref", "customer_email", "partner_name",
		"partner_phone", "status", "active", "assigned_by",
		"assigned_at", "picked_up_at", "delivered_at",
	}
	if err := w.Write(header); err != nil {
		logger.Error("Failed to write CSV header", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to build export",
		})
	}

	formatTime := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(time.RFC3339)
	}

	for _, a := range assignments {
		record := []string{
			strconv.FormatUint(uint64(a.ID), 10),
			a.Booking.BookingRef,
			a.Booking.User.Email,
			a.Partner.Name,
			a.Partner.Phone,
			a.Status.String(),
			strconv.FormatBool(a.Active),
			a.AssignedBy,
			a.CreatedAt.Format(time.RFC3339),
			formatTime(a.PickedUpAt),
			formatTime(a.DeliveredAt),
		}
		if err := w.Write(record); err != nil {
			logger.Error("Failed to write CSV record", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to build export",
			})
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		logger.Error("Failed to flush CSV", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to build export",
		})
	}

	filename := fmt.Sprintf("deliveries-%s.csv", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	return c.Send(buf.Bytes())
}
