package controller

import (
	"strconv"

	"catalog-assist-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type IOpsController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GetLogs(ctx *fiber.Ctx) error
}

type opsController struct {
	logger logger.ILogger
}

func NewOpsController(log logger.ILogger) IOpsController {
	return &opsController{logger: log}
}

func (c *opsController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/ops", auth)
	h.Get("/logs", c.GetLogs)
}

func (c *opsController) GetLogs(ctx *fiber.Ctx) error {
	level := ctx.Query("level")
	limit, _ := strconv.Atoi(ctx.Query("limit", "100"))
	offset, _ := strconv.Atoi(ctx.Query("offset", "0"))

	logs, err := c.logger.GetLogs(level, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    logs,
	})
}
