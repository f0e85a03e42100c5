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

type PolicyHandler struct {
	policyService       *services.PolicyService
	verificationService *services.VerificationService
	expirationService   *services.ExpirationService
}

func NewPolicyHandler(policyService *services.PolicyService, verificationService *services.VerificationService, expirationService *services.ExpirationService) *PolicyHandler {
	return &PolicyHandler{
		policyService:       policyService,
		verificationService: verificationService,
		expirationService:   expirationService,
	}
}

func (ph *PolicyHandler) Register(app *fiber.App) {
	policyGroup := app.Group("/insurance/api/v1/policies")
	policyGroup.Post("/", ph.BuyPolicy)
	policyGroup.Get("/:id", ph.GetPolicy)
	policyGroup.Post("/:id/verify", ph.RequestVerification)
	policyGroup.Post("/:id/expire", ph.ExpirePolicy)

	holderGroup := app.Group("/insurance/api/v1/holders/:holder/policies")
	holderGroup.Get("/count", ph.PolicyCount)
	holderGroup.Get("/:index", ph.PolicyIDByIndex)
}

func (ph *PolicyHandler) BuyPolicy(c fiber.Ctx) error {
	var req models.BuyPolicyRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	holder := c.Get("X-User-ID")
	if holder == "" {
		return c.Status(http.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHENTICATED", "Missing user identity"))
	}

	id, err := ph.policyService.BuyPolicy(c.Context(), holder, req)
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(fiber.Map{"policy_id": id}))
}

func (ph *PolicyHandler) GetPolicy(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Policy id must be an integer"))
	}

	policy, err := ph.policyService.Policies(c.Context(), id)
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(policy))
}

func (ph *PolicyHandler) RequestVerification(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Policy id must be an integer"))
	}

	caller := c.Get("X-User-ID")
	if caller == "" {
		return c.Status(http.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHENTICATED", "Missing user identity"))
	}

	requestID, err := ph.verificationService.RequestVerification(c.Context(), caller, id)
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusAccepted).JSON(utils.CreateSuccessResponse(fiber.Map{"request_id": requestID}))
}

// ExpirePolicy is deliberately unauthenticated: anyone may sweep a policy
// whose window has lapsed.
func (ph *PolicyHandler) ExpirePolicy(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Policy id must be an integer"))
	}

	if err := ph.expirationService.Expire(c.Context(), id); err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"policy_id": id, "status": models.PolicyExpired}))
}

func (ph *PolicyHandler) PolicyCount(c fiber.Ctx) error {
	count, err := ph.policyService.PolicyCountOf(c.Context(), c.Params("holder"))
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"count": count}))
}

func (ph *PolicyHandler) PolicyIDByIndex(c fiber.Ctx) error {
	index, err := strconv.ParseInt(c.Params("index"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_INDEX", "Index must be an integer"))
	}

	id, err := ph.policyService.PolicyIDOfOwnerByIndex(c.Context(), c.Params("holder"), index)
	if err != nil {
		status, code := statusAndCode(err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"policy_id": id}))
}
