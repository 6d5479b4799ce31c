package controller

import (
	"time"

	"stewardship-be/internal/dto"
	"stewardship-be/internal/entity"
	"stewardship-be/internal/pkg/serverutils"
	"stewardship-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRecurringController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ListByMember(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	RunDueBatch(ctx *fiber.Ctx) error
}

type recurringController struct {
	pledges service.IRecurringDonationService
}

func NewRecurringController(pledges service.IRecurringDonationService) IRecurringController {
	return &recurringController{pledges: pledges}
}

func (c *recurringController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/recurring/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Get("member/:memberId", c.ListByMember)
	h.Put(":id", c.Update)
	h.Post(":id/cancel", c.Cancel)

	// Manual trigger for the scheduled run, for ops use.
	h.Post("run", c.RunDueBatch)
}

func (c *recurringController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateRecurringDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	pledge, err := c.pledges.Create(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create recurring donation", toRecurringResponse(pledge)))
}

func (c *recurringController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid pledge id")
	}

	pledge, err := c.pledges.Get(ctx.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show recurring donation", toRecurringResponse(pledge)))
}

func (c *recurringController) ListByMember(ctx *fiber.Ctx) error {
	memberId, err := uuid.Parse(ctx.Params("memberId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid member id")
	}

	pledgeList, err := c.pledges.ListByMember(ctx.Context(), memberId)
	if err != nil {
		return mapServiceError(err)
	}

	res := make([]dto.RecurringDonationResponse, 0, len(pledgeList))
	for _, p := range pledgeList {
		res = append(res, toRecurringResponse(p))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list recurring donations", res))
}

func (c *recurringController) Update(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid pledge id")
	}

	var req dto.UpdateRecurringDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	pledge, err := c.pledges.Update(ctx.Context(), id, &req)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update recurring donation", toRecurringResponse(pledge)))
}

func (c *recurringController) Cancel(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid pledge id")
	}

	var req dto.CancelRecurringDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.pledges.Cancel(ctx.Context(), id, req.Reason); err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success cancel recurring donation", nil))
}

func (c *recurringController) RunDueBatch(ctx *fiber.Ctx) error {
	summary, err := c.pledges.ProcessDueBatch(ctx.Context(), time.Now())
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success run due batch", summary))
}

func toRecurringResponse(p *entity.RecurringDonation) dto.RecurringDonationResponse {
	return dto.RecurringDonationResponse{
		Id:            p.Id,
		MemberId:      p.MemberId,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		Frequency:     string(p.Frequency),
		NextDueDate:   p.NextDueDate,
		EndDate:       p.EndDate,
		IsActive:      p.IsActive,
		PaymentMethod: p.PaymentMethod,
	}
}
