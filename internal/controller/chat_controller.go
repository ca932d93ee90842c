package controller

import (
	"errors"

	"catalog-assist-be/internal/dto"
	"catalog-assist-be/internal/service"
	"catalog-assist-be/pkg/intent"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	CreateSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	SelectOption(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
	Restart(ctx *fiber.Ctx) error
	Transcript(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
}

type chatController struct {
	chat     service.IChatService
	corpus   service.ICorpusService
	validate *validator.Validate
}

func NewChatController(chat service.IChatService, corpus service.ICorpusService, validate *validator.Validate) IChatController {
	return &chatController{chat: chat, corpus: corpus, validate: validate}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/chat", auth)
	h.Post("/sessions", c.CreateSession)
	h.Post("/message", c.SendMessage)
	h.Post("/selections", c.SelectOption)
	h.Post("/analyze", c.Analyze)
	h.Post("/restart", c.Restart)
	h.Get("/transcript/:session_id", c.Transcript)
	h.Post("/reindex", c.Reindex)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.chat.CreateSession(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    201,
		"data":    res,
	})
}

func (c *chatController) SelectOption(ctx *fiber.Ctx) error {
	var req dto.SelectOptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	userId, _ := ctx.Locals("user_id").(string)

	res, err := c.chat.SelectOption(ctx.Context(), userId, &req)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    res,
	})
}

func (c *chatController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	res, err := c.chat.Analyze(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, intent.ErrMalformedOutput) {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"success": false,
				"code":    422,
				"message": "could not extract intent from the message",
			})
		}
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    res,
	})
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	userId, _ := ctx.Locals("user_id").(string)

	res, err := c.chat.SendMessage(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    res,
	})
}

func (c *chatController) Restart(ctx *fiber.Ctx) error {
	var req dto.RestartRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	res, err := c.chat.Restart(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    res,
	})
}

func (c *chatController) Transcript(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("session_id")
	if sessionId == "" {
		return badRequest(ctx, "session_id is required")
	}

	res, err := c.chat.Transcript(ctx.Context(), sessionId)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"code":    404,
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    res,
	})
}

// Reindex rebuilds the pgvector product corpus from the product files.
func (c *chatController) Reindex(ctx *fiber.Ctx) error {
	rows, err := c.corpus.Reindex(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    fiber.Map{"rows": rows},
	})
}
