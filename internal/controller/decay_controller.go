package controller

import (
	"strconv"

	"insightops-be/internal/dto"
	"insightops-be/internal/pkg/serverutils"
	"insightops-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDecayController interface {
	RegisterRoutes(r fiber.Router)
	Analyze(ctx *fiber.Ctx) error
	Batch(ctx *fiber.Ctx) error
	Reports(ctx *fiber.Ctx) error
	LatestReport(ctx *fiber.Ctx) error
	Review(ctx *fiber.Ctx) error
	Summary(ctx *fiber.Ctx) error
}

type decayController struct {
	decayService service.IDecayService
}

func NewDecayController(decayService service.IDecayService) IDecayController {
	return &decayController{
		decayService: decayService,
	}
}

func (c *decayController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/decay/v1")
	h.Post("analyze", c.Analyze)
	h.Post("batch", c.Batch)
	h.Get("reports", c.Reports)
	h.Get("reports/:docId", c.LatestReport)
	h.Put("reports/:id/review", c.Review)
	h.Get("summary", c.Summary)
}

// analyzedBy identifies who triggered the analysis. Requests carry it in a
// header until an auth layer exists.
func analyzedBy(ctx *fiber.Ctx) string {
	if actor := ctx.Get("X-Actor"); actor != "" {
		return actor
	}
	return "system"
}

func (c *decayController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.decayService.AnalyzeDocument(ctx.Context(), &req, analyzedBy(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success analyze document", res))
}

func (c *decayController) Batch(ctx *fiber.Ctx) error {
	var req dto.BatchAnalyzeRequest
	// Empty body means "scan everything"
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	res, err := c.decayService.BatchAnalyze(ctx.Context(), &req, analyzedBy(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success batch analyze", res))
}

func (c *decayController) Reports(ctx *fiber.Ctx) error {
	req := dto.ListReportsRequest{
		RiskLevel:    ctx.Query("risk_level"),
		ReviewStatus: ctx.Query("review_status"),
	}

	if raw := ctx.Query("document_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return serverutils.NewBadRequest("invalid document_id")
		}
		req.DocumentId = &id
	}
	if raw := ctx.Query("decay_detected"); raw != "" {
		detected := raw == "true"
		req.DecayDetected = &detected
	}
	req.Limit, _ = strconv.Atoi(ctx.Query("limit", "50"))
	req.Offset, _ = strconv.Atoi(ctx.Query("offset", "0"))

	res, err := c.decayService.Reports(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list decay reports", res))
}

func (c *decayController) LatestReport(ctx *fiber.Ctx) error {
	docId, err := uuid.Parse(ctx.Params("docId"))
	if err != nil {
		return serverutils.NewBadRequest("invalid document id")
	}

	res, err := c.decayService.LatestReport(ctx.Context(), docId)
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NewNotFound("no decay report found for this document")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get decay report", res))
}

func (c *decayController) Review(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequest("invalid report id")
	}

	var req dto.ReviewReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id
	if req.ReviewedBy == "" {
		req.ReviewedBy = analyzedBy(ctx)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.decayService.Review(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Review status updated", res))
}

func (c *decayController) Summary(ctx *fiber.Ctx) error {
	var workspaceId *uuid.UUID
	if raw := ctx.Query("workspace_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return serverutils.NewBadRequest("invalid workspace_id")
		}
		workspaceId = &id
	}

	res, err := c.decayService.Summary(ctx.Context(), workspaceId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get decay summary", res))
}
