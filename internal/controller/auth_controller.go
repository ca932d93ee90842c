package controller

import (
	"catalog-assist-be/internal/dto"
	"catalog-assist-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	VerifyEmail(ctx *fiber.Ctx) error
	ForgotPassword(ctx *fiber.Ctx) error
	ResetPassword(ctx *fiber.Ctx) error
}

type authController struct {
	service  service.IAuthService
	validate *validator.Validate
}

func NewAuthController(service service.IAuthService, validate *validator.Validate) IAuthController {
	return &authController{service: service, validate: validate}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/verify-email", c.VerifyEmail)
	h.Post("/login", c.Login)
	h.Post("/forgot-password", c.ForgotPassword)
	h.Post("/reset-password", c.ResetPassword)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	res, err := c.service.Register(ctx.Context(), &req)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "User registered successfully. Check your inbox for the verification code.",
		"data":    res,
	})
}

func (c *authController) VerifyEmail(ctx *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := c.service.VerifyEmail(ctx.Context(), &req); err != nil {
		return badRequest(ctx, err.Error())
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Email verified",
	})
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	res, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"code":    401,
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    res,
	})
}

func (c *authController) ForgotPassword(ctx *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := c.service.ForgotPassword(ctx.Context(), &req); err != nil {
		return badRequest(ctx, err.Error())
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "If the address is registered, a reset link has been sent",
	})
}

func (c *authController) ResetPassword(ctx *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(req); err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := c.service.ResetPassword(ctx.Context(), &req); err != nil {
		return badRequest(ctx, err.Error())
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Password updated",
	})
}

func badRequest(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"code":    400,
		"message": message,
	})
}
