package server

import (
	"time"

	"cylinder-booking/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ServerController struct {
	db        *gorm.DB
	startedAt time.Time
}

func NewServerController(db *gorm.DB) *ServerController {
	return &ServerController{db: db, startedAt: time.Now()}
}

// Health reports database reachability and process uptime.
func (h *ServerController) Health(c *fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(types.ApiResponse{
			Status:  fiber.StatusServiceUnavailable,
			Message: "Database unreachable",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    fiber.Map{"uptime": time.Since(h.startedAt).String()},
	})
}
