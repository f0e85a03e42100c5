package handlers

import (
	"log/slog"
	"net/http"

	"travelsure/internal/models"
	"travelsure/internal/services"
	"travelsure/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type TierHandler struct {
	tierService *services.TierService
}

func NewTierHandler(tierService *services.TierService) *TierHandler {
	return &TierHandler{tierService: tierService}
}

func (th *TierHandler) Register(app *fiber.App) {
	tierGroup := app.Group("/insurance/api/v1/tiers")
	tierGroup.Get("/:tier", th.GetTierConfig)
	tierGroup.Get("/:tier/quote", th.Quote)
	tierGroup.Put("/:tier", th.SetTierConfig)
}

func (th *TierHandler) GetTierConfig(c fiber.Ctx) error {
	cfg, err := th.tierService.GetTierConfig(c.Context(), models.Tier(c.Params("tier")))
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(cfg))
}

func (th *TierHandler) Quote(c fiber.Ctx) error {
	pricing, err := th.tierService.Quote(c.Context(), models.Tier(c.Params("tier")))
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(pricing))
}

func (th *TierHandler) SetTierConfig(c fiber.Ctx) error {
	var req models.SetTierConfigRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	caller := c.Get("X-User-ID")
	cfg, err := th.tierService.SetTierConfig(c.Context(), caller, models.Tier(c.Params("tier")), req)
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(cfg))
}
