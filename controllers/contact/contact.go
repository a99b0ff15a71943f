package contact

import (
	"errors"
	"fmt"

	"cylinder-booking/constants"
	"cylinder-booking/logger"
	contactModel "cylinder-booking/models/contact"
	"cylinder-booking/services/mailer"
	"cylinder-booking/types"
	contactTypes "cylinder-booking/types/contact"
	"cylinder-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ContactController struct {
	db     *gorm.DB
	mailer mailer.Mailer
}

func NewContactController(db *gorm.DB, m mailer.Mailer) *ContactController {
	return &ContactController{db: db, mailer: m}
}

// Create opens a support ticket for the authenticated user.
func (h *ContactController) Create(c *fiber.Ctx) error {
	var req contactTypes.ContactCreateRequest
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

	userID, err := utils.UserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	ticket := contactModel.Contact{
		UserID:  userID,
		Subject: req.Subject,
		Message: req.Message,
		Status:  contactModel.ContactStatusNew,
	}

	if err := h.db.Create(&ticket).Error; err != nil {
		logger.Error("Failed to create contact ticket", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create ticket",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Ticket created successfully",
		Data:    ticket,
	})
}

// ListMine returns the user's own tickets with their reply threads.
func (h *ContactController) ListMine(c *fiber.Ctx) error {
	userID, err := utils.UserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	var tickets []contactModel.Contact
	err = h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&tickets).Error
	if err != nil {
		logger.Error("Failed to list tickets", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Tickets retrieved successfully",
		Data:    tickets,
	})
}

// GetOne returns a ticket with its reply thread. Users see only their own
// tickets; admins see all.
func (h *ContactController) GetOne(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid ticket id",
		})
	}

	u, err := utils.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	query := h.db.Preload("User").Where("id = ?", ticketID)
	if u.Role != constants.RoleAdmin {
		query = query.Where("user_id = ?", u.ID)
	}

	var ticket contactModel.Contact
	if err := query.First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Ticket not found",
			})
		}
		logger.Error("Failed to load ticket", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var replies []contactModel.ContactReply
	if err := h.db.Where("contact_id = ?", ticket.ID).Order("created_at ASC").Find(&replies).Error; err != nil {
		logger.Error("Failed to load replies", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Ticket retrieved successfully",
		Data: fiber.Map{
			"ticket":  ticket,
			"replies": replies,
		},
	})
}

// ListAll returns all tickets for administrators with an optional status
// filter.
func (h *ContactController) ListAll(c *fiber.Ctx) error {
	page, limit, offset := utils.ParsePagination(c)

	query := h.db.Model(&contactModel.Contact{})
	if status := c.Query("status"); status != "" {
		if !contactModel.ContactStatus(status).IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid status filter",
			})
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count tickets", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	var tickets []contactModel.Contact
	err := query.Preload("User").Order("created_at DESC").Offset(offset).Limit(limit).Find(&tickets).Error
	if err != nil {
		logger.Error("Failed to list tickets", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Tickets retrieved successfully",
		Data: fiber.Map{
			"tickets": tickets,
			"pagination": types.Pagination{
				Page:       page,
				Limit:      limit,
				Total:      total,
				TotalPages: utils.TotalPages(total, limit),
			},
		},
	})
}

// Reply posts an admin reply on a ticket, emails the customer, and moves the
// ticket to OPEN (or RESOLVED when requested).
func (h *ContactController) Reply(c *fiber.Ctx) error {
	var req contactTypes.ContactReplyRequest
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

	var ticket contactModel.Contact
	if err := h.db.Preload("User").First(&ticket, req.ContactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Ticket not found",
			})
		}
		logger.Error("Failed to load ticket", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	newStatus := contactModel.ContactStatusOpen
	if req.Resolve {
		newStatus = contactModel.ContactStatusResolved
	}

	reply := contactModel.ContactReply{
		ContactID: ticket.ID,
		Message:   req.Message,
		RepliedBy: admin.Email,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		return tx.Model(&contactModel.Contact{}).
			Where("id = ?", ticket.ID).
			Update("status", newStatus).Error
	})
	if err != nil {
		logger.Error("Failed to save reply", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to save reply",
		})
	}

	if err := h.mailer.Send(ticket.User.Email, "Re: "+ticket.Subject, req.Message); err != nil {
		logger.Error("Failed to send reply email", err)
	}

	logger.Success(fmt.Sprintf("Reply posted on ticket %d by %s", ticket.ID, admin.Email))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Reply posted successfully",
		Data:    reply,
	})
}

// UpdateStatus sets a ticket status directly (e.g. archiving).
func (h *ContactController) UpdateStatus(c *fiber.Ctx) error {
	var req contactTypes.ContactStatusRequest
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

	res := h.db.Model(&contactModel.Contact{}).
		Where("id = ?", req.ContactID).
		Update("status", contactModel.ContactStatus(req.Status))
	if res.Error != nil {
		logger.Error("Failed to update ticket status", res.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to update ticket status",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Ticket not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Ticket status updated successfully",
	})
}
