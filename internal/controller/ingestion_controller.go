package controller

import (
	"clinidoc-be/internal/dto"
	"clinidoc-be/internal/pkg/serverutils"
	"clinidoc-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IIngestionController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Pause(ctx *fiber.Ctx) error
	Resume(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type ingestionController struct {
	ingestionService service.IIngestionService
}

func NewIngestionController(ingestionService service.IIngestionService) IIngestionController {
	return &ingestionController{
		ingestionService: ingestionService,
	}
}

func (c *ingestionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingestion/v1")
	h.Post("", c.Start)
	h.Get(":id", c.Status)
	h.Post(":id/pause", c.Pause)
	h.Post(":id/resume", c.Resume)
	h.Post(":id/cancel", c.Cancel)
}

func (c *ingestionController) Start(ctx *fiber.Ctx) error {
	var req dto.StartIngestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestionService.Start(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Ingestion started", res))
}

func (c *ingestionController) Status(ctx *fiber.Ctx) error {
	id, err := c.jobID(ctx)
	if err != nil {
		return err
	}

	res, err := c.ingestionService.Status(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Ingestion status", res))
}

func (c *ingestionController) Pause(ctx *fiber.Ctx) error {
	id, err := c.jobID(ctx)
	if err != nil {
		return err
	}

	if err := c.ingestionService.Pause(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Pause requested", nil))
}

func (c *ingestionController) Resume(ctx *fiber.Ctx) error {
	id, err := c.jobID(ctx)
	if err != nil {
		return err
	}

	if err := c.ingestionService.Resume(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Resume requested", nil))
}

func (c *ingestionController) Cancel(ctx *fiber.Ctx) error {
	id, err := c.jobID(ctx)
	if err != nil {
		return err
	}

	if err := c.ingestionService.Cancel(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Cancel requested", nil))
}

func (c *ingestionController) jobID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid job ID")
	}
	return id, nil
}
