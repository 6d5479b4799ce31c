package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"stewardship-be/internal/dto"
	"stewardship-be/internal/entity"
	"stewardship-be/internal/gateway"
	"stewardship-be/internal/pkg/logger"
	"stewardship-be/internal/repository/specification"
	"stewardship-be/internal/repository/unitofwork"
	"stewardship-be/pkg/events"

	"github.com/google/uuid"
)

// ReceiptIssuer is the slice of the receipt service the payment flow
// needs after a donation completes.
type ReceiptIssuer interface {
	IssueForDonation(ctx context.Context, donationId uuid.UUID) (*entity.TaxReceipt, error)
}

type IPaymentService interface {
	CreateAndCharge(ctx context.Context, req *dto.CreateDonationRequest) (*dto.ChargeOutcome, error)
	ChargeDonation(ctx context.Context, donationId uuid.UUID, gatewayName string, chargeCtx *dto.ChargeContext) (*dto.ChargeOutcome, error)
	RefundDonation(ctx context.Context, donationId uuid.UUID, amountCents *int64, reason string) error
	ApplyCallback(ctx context.Context, gatewayName string, rawPayload []byte, signatureHeader string) error
	GetDonation(ctx context.Context, donationId uuid.UUID) (*entity.Donation, error)
}

type paymentService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateways       *gateway.Selector
	directory      IMemberDirectory
	publisher      IEventPublisher
	receipts       ReceiptIssuer
	log            logger.ILogger
	defaultGateway string
	chargeTimeout  time.Duration
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	gateways *gateway.Selector,
	directory IMemberDirectory,
	publisher IEventPublisher,
	log logger.ILogger,
	defaultGateway string,
	chargeTimeout time.Duration,
) *paymentService {
	return &paymentService{
		uowFactory:     uowFactory,
		gateways:       gateways,
		directory:      directory,
		publisher:      publisher,
		log:            log,
		defaultGateway: defaultGateway,
		chargeTimeout:  chargeTimeout,
	}
}

// SetReceiptIssuer breaks the construction cycle between the payment and
// receipt services; the container wires it right after both exist.
func (s *paymentService) SetReceiptIssuer(issuer ReceiptIssuer) {
	s.receipts = issuer
}

func (s *paymentService) CreateAndCharge(ctx context.Context, req *dto.CreateDonationRequest) (*dto.ChargeOutcome, error) {
	gatewayName := req.GatewayName
	if gatewayName == "" {
		gatewayName = s.defaultGateway
	}
	if _, err := s.gateways.Select(gatewayName); err != nil {
		return nil, err
	}

	donation := &entity.Donation{
		Id:            uuid.New(),
		MemberId:      req.MemberId,
		AmountCents:   req.AmountCents,
		Currency:      req.Currency,
		CategoryId:    req.CategoryId,
		ProjectId:     req.ProjectId,
		CampaignId:    req.CampaignId,
		DonationDate:  time.Now(),
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: entity.PaymentStatusPending,
		GatewayName:   gatewayName,
	}

	chargeCtx := &dto.ChargeContext{
		PaymentMethod: req.PaymentMethod,
		PaymentToken:  req.PaymentToken,
	}
	if req.MemberId != nil {
		member, err := s.directory.Lookup(ctx, *req.MemberId)
		if err != nil {
			return nil, err
		}
		if member != nil {
			chargeCtx.CustomerName = member.FullName
			chargeCtx.CustomerEmail = member.Email
			if member.GatewayCustomerId != nil {
				chargeCtx.CustomerId = *member.GatewayCustomerId
			}
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DonationRepository().Create(ctx, donation); err != nil {
		return nil, err
	}

	return s.ChargeDonation(ctx, donation.Id, gatewayName, chargeCtx)
}

// ChargeDonation sends one charge to the processor and records the
// outcome. A donation that already carries a processor transaction id is
// never charged again, whatever the prior outcome was.
func (s *paymentService) ChargeDonation(ctx context.Context, donationId uuid.UUID, gatewayName string, chargeCtx *dto.ChargeContext) (*dto.ChargeOutcome, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByID{ID: donationId})
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, ErrDonationNotFound
	}
	if donation.Charged() || donation.PaymentStatus != entity.PaymentStatusPending {
		return nil, ErrAlreadyCharged
	}

	g, err := s.gateways.Select(gatewayName)
	if err != nil {
		return nil, err
	}

	chargeReq := &gateway.ChargeRequest{
		OrderId:       donation.Id.String(),
		AmountCents:   donation.AmountCents,
		Currency:      donation.Currency,
		Description:   "Donation " + donation.Id.String(),
		PaymentMethod: chargeCtx.PaymentMethod,
		CustomerName:  chargeCtx.CustomerName,
		CustomerEmail: chargeCtx.CustomerEmail,
		CustomerId:    chargeCtx.CustomerId,
		PaymentToken:  chargeCtx.PaymentToken,
	}

	gctx, cancel := context.WithTimeout(ctx, s.chargeTimeout)
	defer cancel()
	result, chargeErr := g.Charge(gctx, chargeReq)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Re-check under the transaction, holding the row; a concurrent
	// charge may have won.
	donation, err = uow.DonationRepository().FindOne(ctx, specification.ByID{ID: donationId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, ErrDonationNotFound
	}
	if donation.Charged() || donation.PaymentStatus != entity.PaymentStatusPending {
		return nil, ErrAlreadyCharged
	}

	if chargeErr != nil {
		donation.PaymentStatus = entity.PaymentStatusFailed
		if err := uow.DonationRepository().Update(ctx, donation); err != nil {
			return nil, err
		}
		ledgerRow := &entity.PaymentTransaction{
			Id:          uuid.New(),
			DonationId:  donation.Id,
			GatewayName: gatewayName,
			AmountCents: donation.AmountCents,
			Currency:    donation.Currency,
			Status:      "failed",
			Type:        entity.TransactionTypePayment,
			RawResponse: []byte(`{"error":` + jsonString(chargeErr.Error()) + `}`),
		}
		if err := uow.PaymentTransactionRepository().Create(ctx, ledgerRow); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}

		s.log.Warn("PaymentService", "Charge failed", map[string]interface{}{
			"donation_id": donation.Id.String(),
			"gateway":     gatewayName,
			"error":       chargeErr.Error(),
		})
		s.publishDonationEvent(ctx, events.TypeDonationFailed, donation)
		return nil, chargeErr
	}

	donation.GatewayName = gatewayName
	donation.GatewayTransactionId = &result.TransactionId
	switch result.Status {
	case gateway.ChargeStatusSucceeded:
		donation.PaymentStatus = entity.PaymentStatusCompleted
	case gateway.ChargeStatusFailed:
		donation.PaymentStatus = entity.PaymentStatusFailed
	default:
		// Pending settles later via callback.
	}
	if err := uow.DonationRepository().Update(ctx, donation); err != nil {
		return nil, err
	}

	ledgerRow := &entity.PaymentTransaction{
		Id:                   uuid.New(),
		DonationId:           donation.Id,
		GatewayTransactionId: result.TransactionId,
		GatewayName:          gatewayName,
		AmountCents:          donation.AmountCents,
		Currency:             donation.Currency,
		Status:               string(result.Status),
		Type:                 entity.TransactionTypePayment,
		RawResponse:          result.Raw,
	}
	if err := uow.PaymentTransactionRepository().Create(ctx, ledgerRow); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if donation.PaymentStatus == entity.PaymentStatusCompleted {
		s.afterDonationCompleted(ctx, donation)
	}
	if donation.PaymentStatus == entity.PaymentStatusFailed {
		s.publishDonationEvent(ctx, events.TypeDonationFailed, donation)
		return nil, &gateway.GatewayError{Code: string(result.Status), Message: "charge declined"}
	}

	return &dto.ChargeOutcome{
		DonationId:    donation.Id,
		PaymentStatus: string(donation.PaymentStatus),
		TransactionId: result.TransactionId,
	}, nil
}

// RefundDonation reverses a completed donation at the processor and in
// the ledger. If the processor call fails, the donation is unchanged.
func (s *paymentService) RefundDonation(ctx context.Context, donationId uuid.UUID, amountCents *int64, reason string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByID{ID: donationId})
	if err != nil {
		return err
	}
	if donation == nil {
		return ErrDonationNotFound
	}
	if donation.PaymentStatus != entity.PaymentStatusCompleted || !donation.Charged() {
		return ErrIneligibleForRefund
	}

	amount := donation.AmountCents
	if amountCents != nil {
		if *amountCents <= 0 || *amountCents > donation.AmountCents {
			return ErrIneligibleForRefund
		}
		amount = *amountCents
	}
	fullRefund := amount == donation.AmountCents

	g, err := s.gateways.Select(donation.GatewayName)
	if err != nil {
		return err
	}

	gctx, cancel := context.WithTimeout(ctx, s.chargeTimeout)
	defer cancel()
	result, err := g.Refund(gctx, *donation.GatewayTransactionId, amount, reason)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// Partial refunds stay completed; only a full refund moves the
	// donation to refunded.
	if fullRefund {
		donation.PaymentStatus = entity.PaymentStatusRefunded
		if err := uow.DonationRepository().Update(ctx, donation); err != nil {
			return err
		}
	}

	ledgerRow := &entity.PaymentTransaction{
		Id:                   uuid.New(),
		DonationId:           donation.Id,
		GatewayTransactionId: result.RefundId,
		GatewayName:          donation.GatewayName,
		AmountCents:          amount,
		Currency:             donation.Currency,
		Status:               result.Status,
		Type:                 entity.TransactionTypeRefund,
		RawResponse:          result.Raw,
	}
	if err := uow.PaymentTransactionRepository().Create(ctx, ledgerRow); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("PaymentService", "Donation refunded", map[string]interface{}{
		"donation_id":  donation.Id.String(),
		"amount_cents": amount,
		"full_refund":  fullRefund,
	})
	s.publishRefundEvent(ctx, donation, amount)
	return nil
}

// ApplyCallback processes one processor notification. Delivery is
// at-least-once, so replays of an already-applied notification commit
// nothing and return success.
func (s *paymentService) ApplyCallback(ctx context.Context, gatewayName string, rawPayload []byte, signatureHeader string) error {
	g, err := s.gateways.Select(gatewayName)
	if err != nil {
		return err
	}

	if !g.VerifyCallback(rawPayload, signatureHeader) {
		s.log.Warn("PaymentService", "Callback rejected: verification failed", map[string]interface{}{
			"gateway": gatewayName,
		})
		return ErrVerificationFailed
	}

	event, err := g.ParseCallback(rawPayload)
	if err != nil {
		return err
	}
	if event.Type == gateway.EventIgnored {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	donation, err := s.findCallbackDonation(ctx, uow, event)
	if err != nil {
		return err
	}
	if donation == nil {
		s.log.Warn("PaymentService", "Callback for unknown donation", map[string]interface{}{
			"gateway":        gatewayName,
			"transaction_id": event.TransactionId,
			"order_id":       event.OrderId,
		})
		return ErrDonationNotFound
	}

	// Refund notifications reconcile against the ledger instead of
	// transitioning blindly; most of them echo refunds this side started.
	if event.Type == gateway.EventRefundSucceeded || event.Type == gateway.EventRefundPartial {
		return s.applyRefundCallback(ctx, uow, gatewayName, donation, event, rawPayload)
	}

	target := entity.PaymentStatusCompleted
	if event.Type == gateway.EventPaymentFailed {
		target = entity.PaymentStatusFailed
	}

	// Replay of an already-applied notification: no-op, acknowledge.
	if donation.PaymentStatus == target {
		return uow.Commit()
	}
	if !donation.PaymentStatus.CanTransitionTo(target) {
		s.log.Warn("PaymentService", "Callback dropped: invalid status transition", map[string]interface{}{
			"donation_id": donation.Id.String(),
			"from":        string(donation.PaymentStatus),
			"to":          string(target),
		})
		return uow.Commit()
	}

	donation.PaymentStatus = target
	if event.TransactionId != "" && !donation.Charged() {
		donation.GatewayTransactionId = &event.TransactionId
	}
	if err := uow.DonationRepository().Update(ctx, donation); err != nil {
		return err
	}

	ledgerRow := &entity.PaymentTransaction{
		Id:                   uuid.New(),
		DonationId:           donation.Id,
		GatewayTransactionId: event.TransactionId,
		GatewayName:          gatewayName,
		AmountCents:          donation.AmountCents,
		Currency:             donation.Currency,
		Status:               event.RawStatus,
		Type:                 entity.TransactionTypePayment,
		RawResponse:          rawPayload,
	}
	if err := uow.PaymentTransactionRepository().Create(ctx, ledgerRow); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if target == entity.PaymentStatusCompleted {
		s.afterDonationCompleted(ctx, donation)
	} else {
		s.publishDonationEvent(ctx, events.TypeDonationFailed, donation)
	}
	return nil
}

// applyRefundCallback reconciles a refund notification against the
// refund ledger. The processor reports the cumulative refunded amount;
// only the part the ledger does not already cover is recorded, so an
// echo of a locally-initiated refund commits nothing. The donation moves
// to refunded only once the ledger covers the full amount.
func (s *paymentService) applyRefundCallback(ctx context.Context, uow unitofwork.UnitOfWork, gatewayName string, donation *entity.Donation, event *gateway.CallbackEvent, rawPayload []byte) error {
	if donation.PaymentStatus != entity.PaymentStatusCompleted && donation.PaymentStatus != entity.PaymentStatusRefunded {
		s.log.Warn("PaymentService", "Refund callback dropped: donation was never completed", map[string]interface{}{
			"donation_id": donation.Id.String(),
			"status":      string(donation.PaymentStatus),
		})
		return uow.Commit()
	}

	rows, err := uow.PaymentTransactionRepository().FindAll(ctx,
		specification.Filter("donation_id", donation.Id),
		specification.Filter("type", string(entity.TransactionTypeRefund)),
	)
	if err != nil {
		return err
	}
	var ledgerRefunded int64
	for _, row := range rows {
		ledgerRefunded += row.AmountCents
	}

	reported := event.RefundedCents
	if reported == 0 && event.Type == gateway.EventRefundSucceeded {
		// A full-refund notification without an amount means everything
		// came back.
		reported = donation.AmountCents
	}
	if reported > donation.AmountCents {
		reported = donation.AmountCents
	}

	delta := reported - ledgerRefunded
	if delta > 0 {
		ledgerRow := &entity.PaymentTransaction{
			Id:                   uuid.New(),
			DonationId:           donation.Id,
			GatewayTransactionId: event.TransactionId,
			GatewayName:          gatewayName,
			AmountCents:          delta,
			Currency:             donation.Currency,
			Status:               event.RawStatus,
			Type:                 entity.TransactionTypeRefund,
			RawResponse:          rawPayload,
		}
		if err := uow.PaymentTransactionRepository().Create(ctx, ledgerRow); err != nil {
			return err
		}
		ledgerRefunded += delta
	}

	if ledgerRefunded >= donation.AmountCents && donation.PaymentStatus.CanTransitionTo(entity.PaymentStatusRefunded) {
		donation.PaymentStatus = entity.PaymentStatusRefunded
		if err := uow.DonationRepository().Update(ctx, donation); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}
	if delta > 0 {
		s.publishRefundEvent(ctx, donation, delta)
	}
	return nil
}

func (s *paymentService) GetDonation(ctx context.Context, donationId uuid.UUID) (*entity.Donation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByID{ID: donationId})
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, ErrDonationNotFound
	}
	return donation, nil
}

// findCallbackDonation resolves by processor transaction id first, then
// falls back to the echoed order id, which is the donation id. The row
// is locked so concurrent deliveries serialize on the status guard.
func (s *paymentService) findCallbackDonation(ctx context.Context, uow unitofwork.UnitOfWork, event *gateway.CallbackEvent) (*entity.Donation, error) {
	if event.TransactionId != "" {
		donation, err := uow.DonationRepository().FindOne(ctx,
			specification.ByGatewayTransactionId{TransactionId: event.TransactionId},
			specification.ForUpdate{})
		if err != nil || donation != nil {
			return donation, err
		}
	}
	if orderId, err := uuid.Parse(event.OrderId); err == nil {
		return uow.DonationRepository().FindOne(ctx, specification.ByID{ID: orderId}, specification.ForUpdate{})
	}
	return nil, nil
}

// afterDonationCompleted runs post-commit side effects. Both are
// best-effort: the committed status change is the source of truth.
func (s *paymentService) afterDonationCompleted(ctx context.Context, donation *entity.Donation) {
	s.publishDonationEvent(ctx, events.TypeDonationCompleted, donation)

	if s.receipts == nil || donation.MemberId == nil {
		return
	}
	if _, err := s.receipts.IssueForDonation(ctx, donation.Id); err != nil && !errors.Is(err, ErrIneligibleForReceipt) {
		s.log.Error("PaymentService", "Receipt issuance failed", map[string]interface{}{
			"donation_id": donation.Id.String(),
			"error":       err.Error(),
		})
	}
}

func (s *paymentService) publishDonationEvent(ctx context.Context, eventType string, donation *entity.Donation) {
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"donation_id":  donation.Id,
			"member_id":    donation.MemberId,
			"amount_cents": donation.AmountCents,
			"currency":     donation.Currency,
			"category_id":  donation.CategoryId,
			"project_id":   donation.ProjectId,
			"campaign_id":  donation.CampaignId,
		},
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("PaymentService", "Event publish failed", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

func (s *paymentService) publishRefundEvent(ctx context.Context, donation *entity.Donation, amountCents int64) {
	evt := events.BaseEvent{
		Type: events.TypeDonationRefunded,
		Data: map[string]interface{}{
			"donation_id":  donation.Id,
			"member_id":    donation.MemberId,
			"amount_cents": amountCents,
			"currency":     donation.Currency,
			"category_id":  donation.CategoryId,
			"project_id":   donation.ProjectId,
			"campaign_id":  donation.CampaignId,
		},
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("PaymentService", "Event publish failed", map[string]interface{}{
			"event_type": events.TypeDonationRefunded,
			"error":      err.Error(),
		})
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
