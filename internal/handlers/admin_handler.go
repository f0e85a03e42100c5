package handlers

import (
	"log/slog"
	"net/http"

	"travelsure/internal/models"
	"travelsure/internal/services"
	"travelsure/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (ah *AdminHandler) Register(app *fiber.App) {
	adminGroup := app.Group("/insurance/api/v1/admin")
	adminGroup.Put("/expiry-window", ah.SetExpiryWindow)
	adminGroup.Put("/functions-config", ah.SetFunctionsConfig)
	adminGroup.Post("/pool/fund", ah.FundPool)
}

func (ah *AdminHandler) FundPool(c fiber.Ctx) error {
	var req models.FundPoolRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	caller := c.Get("X-User-ID")
	if err := ah.adminService.FundPool(c.Context(), caller, req.Amount); err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"amount": req.Amount}))
}

func (ah *AdminHandler) SetExpiryWindow(c fiber.Ctx) error {
	var req models.SetExpiryWindowRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	caller := c.Get("X-User-ID")
	if err := ah.adminService.SetExpiryWindow(caller, req.Seconds); err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"expiry_window_seconds": req.Seconds}))
}

func (ah *AdminHandler) SetFunctionsConfig(c fiber.Ctx) error {
	var req models.SetFunctionsConfigRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	caller := c.Get("X-User-ID")
	err := ah.adminService.SetFunctionsConfig(caller, req.CorrelationNamespace, req.ResponseBudget, req.VerifierNetworkID)
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(req))
}
