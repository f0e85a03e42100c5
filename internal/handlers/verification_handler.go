package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"travelsure/internal/models"
	"travelsure/internal/services"
	"travelsure/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// VerificationHandler receives callbacks from an out-of-process verifier
// dispatch and exposes the operator claim-settlement endpoint. The callback
// route is restricted by API key: only the trusted dispatch mechanism may
// resolve pending requests.
type VerificationHandler struct {
	verificationService *services.VerificationService
	apiKey              string
}

func NewVerificationHandler(verificationService *services.VerificationService, apiKey string) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService, apiKey: apiKey}
}

func (vh *VerificationHandler) Register(app *fiber.App) {
	app.Post("/insurance/internal/v1/verification/callback", vh.Callback)
	app.Post("/insurance/api/v1/policies/:id/settle", vh.SettleClaim)
}

func (vh *VerificationHandler) Callback(c fiber.Ctx) error {
	if vh.apiKey == "" || c.Get("X-API-Key") != vh.apiKey {
		return c.Status(http.StatusForbidden).JSON(utils.CreateErrorResponse("FORBIDDEN", "Invalid API key"))
	}

	var req models.VerificationCallbackRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	if req.RequestID == "" {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Missing request id"))
	}

	var err error
	if req.Error != "" {
		err = vh.verificationService.OnVerificationError(c.Context(), req.RequestID, req.Error)
	} else {
		err = vh.verificationService.OnVerificationResult(c.Context(), models.VerificationResult{
			RequestID:    req.RequestID,
			Occurred:     req.Occurred,
			DelayMinutes: req.DelayMinutes,
		})
	}
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"request_id": req.RequestID}))
}

func (vh *VerificationHandler) SettleClaim(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Policy id must be an integer"))
	}

	caller := c.Get("X-User-ID")
	if err := vh.verificationService.SettleClaim(c.Context(), caller, id); err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"policy_id": id, "status": models.PolicyPaidOut}))
}
