package controller

import (
	"stewardship-be/internal/dto"
	"stewardship-be/internal/entity"
	"stewardship-be/internal/pkg/serverutils"
	"stewardship-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReceiptController interface {
	RegisterRoutes(r fiber.Router)
	IssueForDonation(ctx *fiber.Ctx) error
	IssueAnnual(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Void(ctx *fiber.Ctx) error
}

type receiptController struct {
	receipts service.ITaxReceiptService
}

func NewReceiptController(receipts service.ITaxReceiptService) IReceiptController {
	return &receiptController{receipts: receipts}
}

func (c *receiptController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/receipt/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("donation/:donationId", c.IssueForDonation)
	h.Post("annual", c.IssueAnnual)
	h.Get(":id", c.Show)
	h.Post(":id/void", c.Void)
}

func (c *receiptController) IssueForDonation(ctx *fiber.Ctx) error {
	donationId, err := uuid.Parse(ctx.Params("donationId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid donation id")
	}

	receipt, err := c.receipts.IssueForDonation(ctx.Context(), donationId)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success issue receipt", toReceiptResponse(receipt)))
}

func (c *receiptController) IssueAnnual(ctx *fiber.Ctx) error {
	var req dto.IssueAnnualReceiptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	receipt, err := c.receipts.IssueAnnual(ctx.Context(), req.MemberId, req.TaxYear)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success issue annual receipt", toReceiptResponse(receipt)))
}

func (c *receiptController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid receipt id")
	}

	receipt, err := c.receipts.GetReceipt(ctx.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show receipt", toReceiptResponse(receipt)))
}

func (c *receiptController) Void(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid receipt id")
	}

	var req dto.VoidReceiptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.receipts.Void(ctx.Context(), id, req.Reason); err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success void receipt", nil))
}

func toReceiptResponse(r *entity.TaxReceipt) dto.ReceiptResponse {
	return dto.ReceiptResponse{
		Id:            r.Id,
		MemberId:      r.MemberId,
		DonationId:    r.DonationId,
		IsAnnual:      r.IsAnnual,
		AmountCents:   r.AmountCents,
		Currency:      r.Currency,
		ReceiptNumber: r.ReceiptNumber,
		TaxYear:       r.TaxYear,
		IssueDate:     r.IssueDate,
		Status:        string(r.Status),
		FilePath:      r.FilePath,
	}
}
