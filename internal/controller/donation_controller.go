package controller

import (
	"errors"

	"stewardship-be/internal/dto"
	"stewardship-be/internal/entity"
	"stewardship-be/internal/gateway"
	"stewardship-be/internal/pkg/serverutils"
	"stewardship-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDonationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Refund(ctx *fiber.Ctx) error
	HandleNotification(ctx *fiber.Ctx) error
}

type donationController struct {
	payments service.IPaymentService
}

func NewDonationController(payments service.IPaymentService) IDonationController {
	return &donationController{payments: payments}
}

func (c *donationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/donation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Post(":id/refund", c.Refund)

	// Processor webhooks authenticate with signatures, not JWT.
	r.Post("/payment/:gateway/notification", c.HandleNotification)
}

func (c *donationController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	outcome, err := c.payments.CreateAndCharge(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create donation", outcome))
}

func (c *donationController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid donation id")
	}

	donation, err := c.payments.GetDonation(ctx.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show donation", toDonationResponse(donation)))
}

func (c *donationController) Refund(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid donation id")
	}

	var req dto.RefundDonationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.payments.RefundDonation(ctx.Context(), id, req.AmountCents, req.Reason); err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success refund donation", nil))
}

// HandleNotification receives processor callbacks. Replays return 200 so
// the processor stops retrying; verification failures return 403 and
// touch nothing.
func (c *donationController) HandleNotification(ctx *fiber.Ctx) error {
	gatewayName := ctx.Params("gateway")
	signature := ctx.Get("x-callback-token")

	err := c.payments.ApplyCallback(ctx.Context(), gatewayName, ctx.Body(), signature)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("OK", nil))
}

func toDonationResponse(d *entity.Donation) dto.DonationResponse {
	return dto.DonationResponse{
		Id:                   d.Id,
		MemberId:             d.MemberId,
		AmountCents:          d.AmountCents,
		Currency:             d.Currency,
		DonationDate:         d.DonationDate,
		PaymentStatus:        string(d.PaymentStatus),
		GatewayName:          d.GatewayName,
		GatewayTransactionId: d.GatewayTransactionId,
		TaxReceiptId:         d.TaxReceiptId,
	}
}

// mapServiceError translates business outcomes into HTTP statuses.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrDonationNotFound),
		errors.Is(err, service.ErrPledgeNotFound),
		errors.Is(err, service.ErrReceiptNotFound),
		errors.Is(err, service.ErrMemberNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyCharged):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrIneligibleForRefund),
		errors.Is(err, service.ErrIneligibleForReceipt):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, gateway.ErrUnsupportedGateway):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrVerificationFailed):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	var gatewayErr *gateway.GatewayError
	if errors.As(err, &gatewayErr) {
		return fiber.NewError(fiber.StatusBadGateway, "payment processor error")
	}
	return err
}
