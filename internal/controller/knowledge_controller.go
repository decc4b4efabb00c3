package controller

import (
	"strconv"

	"clinidoc-be/internal/pkg/serverutils"
	"clinidoc-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge/v1")
	h.Get("search", c.Search)
}

func (c *knowledgeController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing query parameter 'q'")
	}

	// "k" is the canonical parameter; "limit" is accepted as an alias.
	limit := ctx.QueryInt("k", ctx.QueryInt("limit", 0))
	threshold, _ := strconv.ParseFloat(ctx.Query("threshold", "0"), 64)

	res, err := c.knowledgeService.Search(ctx.Context(), query, limit, threshold)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}
