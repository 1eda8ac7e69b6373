package controller

import (
	"strconv"

	"insightops-be/internal/dto"
	"insightops-be/internal/pkg/serverutils"
	"insightops-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInsightController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type insightController struct {
	insightService service.IInsightService
}

func NewInsightController(insightService service.IInsightService) IInsightController {
	return &insightController{
		insightService: insightService,
	}
}

func (c *insightController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/insight/v1")
	h.Post("ask", c.Ask)
	h.Get("search", c.Search)
}

func (c *insightController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.insightService.AskQuestion(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *insightController) Search(ctx *fiber.Ctx) error {
	workspaceId, err := uuid.Parse(ctx.Query("workspace_id"))
	if err != nil {
		return serverutils.NewBadRequest("workspace_id is required")
	}

	query := ctx.Query("q")
	topK, _ := strconv.Atoi(ctx.Query("top_k", "5"))

	res, err := c.insightService.SearchDocuments(ctx.Context(), workspaceId, query, topK)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search documents", res))
}
