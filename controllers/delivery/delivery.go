package delivery

import (
	"errors"
	"fmt"
	"time"

	"cylinder-booking/logger"
	bookingModel "cylinder-booking/models/booking"
	deliveryModel "cylinder-booking/models/delivery"
	inventoryModel "cylinder-booking/models/inventory"
	paymentModel "cylinder-booking/models/payment"
	"cylinder-booking/services/booking_event"
	"cylinder-booking/services/invoice"
	"cylinder-booking/services/mailer"
	"cylinder-booking/services/stock"
	"cylinder-booking/types"
	deliveryTypes "cylinder-booking/types/delivery"
	"cylinder-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DeliveryController struct {
	db             *gorm.DB
	loggerInstance *logger.AsyncLogger
	mailer         mailer.Mailer
}

func NewDeliveryController(db *gorm.DB, asyncLogger *logger.AsyncLogger, m mailer.Mailer) *DeliveryController {
	return &DeliveryController{db: db, loggerInstance: asyncLogger, mailer: m}
}

// sendResponseWithLog sends the JSON response and queues the request log in
// one place so every delivery endpoint is audited.
func (h *DeliveryController) sendResponseWithLog(c *fiber.Ctx, status int, message string, data interface{}) error {
	err := c.Status(status).JSON(types.ApiResponse{
		Status:  status,
		Message: message,
		Data:    data,
	})

	if h.loggerInstance != nil {
		h.loggerInstance.Log(utils.CreateSanitizedLogEntry(c))
	}

	return err
}

// CreatePartner adds a delivery partner to the roster.
func (h *DeliveryController) CreatePartner(c *fiber.Ctx) error {
	var req deliveryTypes.PartnerCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := req.Validate(); err != nil {
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	partner := deliveryModel.DeliveryPartner{
		Name:   req.Name,
		Phone:  req.Phone,
		Active: true,
	}
	if req.VehicleNo != "" {
		partner.VehicleNo = &req.VehicleNo
	}

	if err := h.db.Create(&partner).Error; err != nil {
		logger.Error("Failed to create delivery partner", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Failed to create delivery partner", nil)
	}

	return h.sendResponseWithLog(c, fiber.StatusCreated, "Delivery partner created successfully", partner)
}

// ListPartners returns the partner roster; pass active=true to hide retired
// partners.
func (h *DeliveryController) ListPartners(c *fiber.Ctx) error {
	query := h.db.Model(&deliveryModel.DeliveryPartner{})
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var partners []deliveryModel.DeliveryPartner
	if err := query.Order("name ASC").Find(&partners).Error; err != nil {
		logger.Error("Failed to list delivery partners", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Database error", nil)
	}

	return h.sendResponseWithLog(c, fiber.StatusOK, "Delivery partners retrieved successfully", partners)
}

// UpdatePartner edits roster details or toggles a partner active flag.
func (h *DeliveryController) UpdatePartner(c *fiber.Ctx) error {
	var req deliveryTypes.PartnerUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := req.Validate(); err != nil {
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var partner deliveryModel.DeliveryPartner
	if err := h.db.First(&partner, req.PartnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.sendResponseWithLog(c, fiber.StatusNotFound, "Delivery partner not found", nil)
		}
		logger.Error("Failed to load delivery partner", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Database error", nil)
	}

	if req.Name != "" {
		partner.Name = req.Name
	}
	if req.Phone != "" {
		partner.Phone = req.Phone
	}
	if req.VehicleNo != "" {
		partner.VehicleNo = &req.VehicleNo
	}
	if req.Active != nil {
		partner.Active = *req.Active
	}

	if err := h.db.Save(&partner).Error; err != nil {
		logger.Error("Failed to update delivery partner", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Failed to update delivery partner", nil)
	}

	return h.sendResponseWithLog(c, fiber.StatusOK, "Delivery partner updated successfully", partner)
}

// Assign attaches an active partner to an APPROVED booking. One active
// assignment is allowed per booking.
func (h *DeliveryController) Assign(c *fiber.Ctx) error {
	var req deliveryTypes.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := req.Validate(); err != nil {
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	admin, err := utils.CurrentUser(c)
	if err != nil {
		return h.sendResponseWithLog(c, fiber.StatusUnauthorized, err.Error(), nil)
	}

	var b bookingModel.Booking
	if err := h.db.Preload("User").First(&b, req.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.sendResponseWithLog(c, fiber.StatusNotFound, "Booking not found", nil)
		}
		logger.Error("Failed to load booking", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Database error", nil)
	}

	if !b.Status.CanAssignPartner() {
		return h.sendResponseWithLog(c, fiber.StatusBadRequest,
			fmt.Sprintf("Booking in status %s cannot be assigned", b.Status), nil)
	}

	var partner deliveryModel.DeliveryPartner
	if err := h.db.First(&partner, req.PartnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.sendResponseWithLog(c, fiber.StatusNotFound, "Delivery partner not found", nil)
		}
		logger.Error("Failed to load delivery partner", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Database error", nil)
	}

	if !partner.Active {
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, "Delivery partner is not active", nil)
	}

	var activeCount int64
	err = h.db.Model(&deliveryModel.DeliveryAssignment{}).
		Where("booking_id = ? AND active = ?", b.ID, true).
		Count(&activeCount).Error
	if err != nil {
		logger.Error("Failed to check existing assignments", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Database error", nil)
	}
	if activeCount > 0 {
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, "Booking already has an active assignment", nil)
	}

	assignment := deliveryModel.DeliveryAssignment{
		BookingID:  b.ID,
		PartnerID:  partner.ID,
		Status:     deliveryModel.AssignmentStatusAssigned,
		Active:     true,
		AssignedBy: admin.Email,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return booking_event.Snapshot(tx, &b, "partner_assigned", admin.Email)
	})
	if err != nil {
		logger.Error("Failed to assign delivery partner", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Failed to assign delivery partner", nil)
	}

	if err := h.mailer.Send(b.User.Email, "Delivery partner assigned: "+b.BookingRef,
		fmt.Sprintf("%s (%s) will deliver your booking %s.", partner.Name, partner.Phone, b.BookingRef)); err != nil {
		logger.Error("Failed to send assignment email", err)
	}

	logger.Success(fmt.Sprintf("Partner %s assigned to booking %s", partner.Name, b.BookingRef))

	return h.sendResponseWithLog(c, fiber.StatusCreated, "Delivery partner assigned successfully", assignment)
}

// ListAssignments returns assignments with optional partner, status and
// active filters.
func (h *DeliveryController) ListAssignments(c *fiber.Ctx) error {
	page, limit, offset := utils.ParsePagination(c)

	query := h.db.Model(&deliveryModel.DeliveryAssignment{})
	if partnerID := c.QueryInt("partner_id", 0); partnerID > 0 {
		query = query.Where("partner_id = ?", partnerID)
	}
	if status := c.Query("status"); status != "" {
		if !deliveryModel.AssignmentStatus(status).IsValid() {
			return h.sendResponseWithLog(c, fiber.StatusBadRequest, "Invalid status filter", nil)
		}
		query = query.Where("status = ?", status)
	}
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count assignments", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Database error", nil)
	}

	var assignments []deliveryModel.DeliveryAssignment
	err := query.Preload("Partner").Preload("Booking").Preload("Booking.User").Preload("Booking.AddressInfo").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&assignments).Error
	if err != nil {
		logger.Error("Failed to list assignments", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Database error", nil)
	}

	return h.sendResponseWithLog(c, fiber.StatusOK, "Assignments retrieved successfully", fiber.Map{
		"assignments": assignments,
		"pagination": types.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: utils.TotalPages(total, limit),
		},
	})
}

// UpdateStatus advances an assignment through its lifecycle and keeps the
// booking status in sync. DELIVERED settles COD payments, issues stock and
// emails the invoice; FAILED releases the booking for reassignment.
func (h *DeliveryController) UpdateStatus(c *fiber.Ctx) error {
	var req deliveryTypes.AssignmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := req.Validate(); err != nil {
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	admin, err := utils.CurrentUser(c)
	if err != nil {
		return h.sendResponseWithLog(c, fiber.StatusUnauthorized, err.Error(), nil)
	}

	var assignment deliveryModel.DeliveryAssignment
	err = h.db.Preload("Booking").Preload("Booking.User").Preload("Booking.AddressInfo").Preload("Partner").
		First(&assignment, req.AssignmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.sendResponseWithLog(c, fiber.StatusNotFound, "Assignment not found", nil)
		}
		logger.Error("Failed to load assignment", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Database error", nil)
	}

	if !assignment.Active {
		return h.sendResponseWithLog(c, fiber.StatusBadRequest, "Assignment is no longer active", nil)
	}

	next := deliveryModel.AssignmentStatus(req.Status)
	if !assignment.Status.CanTransitionTo(next) {
		return h.sendResponseWithLog(c, fiber.StatusBadRequest,
			fmt.Sprintf("Cannot move assignment from %s to %s", assignment.Status, next), nil)
	}

	now := time.Now()
	b := assignment.Booking

	err = h.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": next}
		if req.Note != "" {
			updates["note"] = req.Note
		}
		switch next {
		case deliveryModel.AssignmentStatusPickedUp:
			updates["picked_up_at"] = now
		case deliveryModel.AssignmentStatusDelivered:
			updates["delivered_at"] = now
		case deliveryModel.AssignmentStatusFailed:
			// Deactivate so the booking can be reassigned.
			updates["active"] = false
		}
		if err := tx.Model(&deliveryModel.DeliveryAssignment{}).
			Where("id = ?", assignment.ID).Updates(updates).Error; err != nil {
			return err
		}

		if bookingStatus, ok := next.BookingStatus(); ok {
			bookingUpdates := map[string]interface{}{
				"status":     bookingStatus,
				"updated_by": admin.Email,
			}
			if next == deliveryModel.AssignmentStatusDelivered {
				bookingUpdates["delivered_at"] = now
			}
			if err := tx.Model(&bookingModel.Booking{}).
				Where("id = ?", b.ID).Updates(bookingUpdates).Error; err != nil {
				return err
			}
			b.Status = bookingStatus
		}

		if next == deliveryModel.AssignmentStatusDelivered {
			// COD settles at the door.
			if b.PaymentMethod == bookingModel.PaymentMethodCOD {
				if err := tx.Model(&paymentModel.Payment{}).
					Where("booking_id = ? AND status = ?", b.ID, paymentModel.PaymentStatusPending).
					Updates(map[string]interface{}{
						"status":      paymentModel.PaymentStatusSuccess,
						"reviewed_by": admin.Email,
					}).Error; err != nil {
					return err
				}
			}

			note := fmt.Sprintf("Issued for booking %s", b.BookingRef)
			err := stock.Apply(tx, -b.Quantity, inventoryModel.AdjustmentReasonIssue, &note, nil, admin.Email)
			if err != nil {
				if !errors.Is(err, stock.ErrInsufficientStock) {
					return err
				}
				// Inventory drift is recorded but never blocks a real delivery.
				logger.Warning(fmt.Sprintf("Stock below delivered quantity for booking %s", b.BookingRef))
			}
		}

		return booking_event.Snapshot(tx, &b, "delivery_status_changed", admin.Email)
	})
	if err != nil {
		logger.Error("Failed to update assignment status", err)
		return h.sendResponseWithLog(c, fiber.StatusInternalServerError, "Failed to update assignment status", nil)
	}

	switch next {
	case deliveryModel.AssignmentStatusOutForDelivery:
		if err := h.mailer.Send(b.User.Email, "Out for delivery: "+b.BookingRef,
			fmt.Sprintf("Your booking %s is out for delivery with %s (%s).",
				b.BookingRef, assignment.Partner.Name, assignment.Partner.Phone)); err != nil {
			logger.Error("Failed to send out-for-delivery email", err)
		}
	case deliveryModel.AssignmentStatusDelivered:
		h.sendInvoiceEmail(&b, now)
	case deliveryModel.AssignmentStatusFailed:
		if err := h.mailer.Send(b.User.Email, "Delivery attempt failed: "+b.BookingRef,
			fmt.Sprintf("The delivery attempt for booking %s failed. We will reassign it shortly.",
				b.BookingRef)); err != nil {
			logger.Error("Failed to send delivery-failed email", err)
		}
	}

	logger.Success(fmt.Sprintf("Assignment %d on booking %s moved to %s", assignment.ID, b.BookingRef, next))

	return h.sendResponseWithLog(c, fiber.StatusOK, "Assignment status updated successfully", fiber.Map{
		"assignment_status": next,
		"booking_status":    b.Status,
	})
}

// sendInvoiceEmail renders the delivery invoice PDF and mails it to the
// customer. Failures are logged, never surfaced.
func (h *DeliveryController) sendInvoiceEmail(b *bookingModel.Booking, deliveredAt time.Time) {
	b.DeliveredAt = &deliveredAt

	var p paymentModel.Payment
	err := h.db.Where("booking_id = ?", b.ID).Order("created_at DESC").First(&p).Error
	if err != nil {
		logger.Error("Failed to load payment for invoice", err)
		return
	}

	pdf, err := invoice.Build(b, &p)
	if err != nil {
		logger.Error("Failed to render invoice", err)
		return
	}

	err = h.mailer.Send(b.User.Email, "Delivered: "+b.BookingRef,
		fmt.Sprintf("Your booking %s has been delivered. The invoice is attached.", b.BookingRef),
		mailer.Attachment{Filename: "invoice-" + b.BookingRef + ".pdf", Content: pdf})
	if err != nil {
		logger.Error("Failed to send invoice email", err)
	}
}
