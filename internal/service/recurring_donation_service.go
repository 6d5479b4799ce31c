package service

import (
	"context"
	"errors"
	"fmt"
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

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ProcessOutcome is the per-pledge result of one scheduled cycle.
type ProcessOutcome struct {
	Status     OutcomeStatus
	Reason     string
	DonationId *uuid.UUID
}

type IRecurringDonationService interface {
	Create(ctx context.Context, req *dto.CreateRecurringDonationRequest) (*entity.RecurringDonation, error)
	Update(ctx context.Context, pledgeId uuid.UUID, req *dto.UpdateRecurringDonationRequest) (*entity.RecurringDonation, error)
	Cancel(ctx context.Context, pledgeId uuid.UUID, reason string) error
	Get(ctx context.Context, pledgeId uuid.UUID) (*entity.RecurringDonation, error)
	ListByMember(ctx context.Context, memberId uuid.UUID) ([]*entity.RecurringDonation, error)
	ProcessDueBatch(ctx context.Context, now time.Time) (*dto.BatchSummary, error)
}

type recurringDonationService struct {
	uowFactory     unitofwork.RepositoryFactory
	payments       IPaymentService
	gateways       *gateway.Selector
	directory      IMemberDirectory
	publisher      IEventPublisher
	log            logger.ILogger
	defaultGateway string
}

func NewRecurringDonationService(
	uowFactory unitofwork.RepositoryFactory,
	payments IPaymentService,
	gateways *gateway.Selector,
	directory IMemberDirectory,
	publisher IEventPublisher,
	log logger.ILogger,
	defaultGateway string,
) *recurringDonationService {
	return &recurringDonationService{
		uowFactory:     uowFactory,
		payments:       payments,
		gateways:       gateways,
		directory:      directory,
		publisher:      publisher,
		log:            log,
		defaultGateway: defaultGateway,
	}
}

// ComputeNextDueDate returns the next charge date after from. Month-based
// advances land on the same day of month, clamped to the last day when
// the target month is shorter (Jan 31 monthly gives Feb 28).
func ComputeNextDueDate(from time.Time, frequency entity.Frequency) time.Time {
	switch frequency {
	case entity.FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case entity.FrequencyQuarterly:
		return addMonthsClamped(from, 3)
	case entity.FrequencyYearly:
		return addMonthsClamped(from, 12)
	default:
		return addMonthsClamped(from, 1)
	}
}

func addMonthsClamped(from time.Time, months int) time.Time {
	year, month, day := from.Date()
	hour, min, sec := from.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, from.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, min, sec, from.Nanosecond(), from.Location())
}

func (s *recurringDonationService) Create(ctx context.Context, req *dto.CreateRecurringDonationRequest) (*entity.RecurringDonation, error) {
	frequency := entity.Frequency(req.Frequency)
	if !frequency.Valid() {
		return nil, fmt.Errorf("invalid frequency %q", req.Frequency)
	}

	member, err := s.directory.Lookup(ctx, req.MemberId)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	gatewayName := req.GatewayName
	if gatewayName == "" {
		gatewayName = s.defaultGateway
	}
	if _, err := s.gateways.Select(gatewayName); err != nil {
		return nil, err
	}

	pledge := &entity.RecurringDonation{
		Id:                uuid.New(),
		MemberId:          req.MemberId,
		AmountCents:       req.AmountCents,
		Currency:          req.Currency,
		CategoryId:        req.CategoryId,
		ProjectId:         req.ProjectId,
		CampaignId:        req.CampaignId,
		Frequency:         frequency,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		NextDueDate:       req.StartDate,
		IsActive:          true,
		PaymentMethod:     req.PaymentMethod,
		GatewayName:       gatewayName,
		GatewayCustomerId: member.GatewayCustomerId,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.RecurringDonationRepository().Create(ctx, pledge); err != nil {
		return nil, err
	}
	return pledge, nil
}

// Update applies amount, frequency and payment method changes. A new
// frequency recomputes the next due date from today so the cadence
// restarts immediately. Charges are always initiated locally with the
// pledge's current amount, so nothing is pushed to the processor.
func (s *recurringDonationService) Update(ctx context.Context, pledgeId uuid.UUID, req *dto.UpdateRecurringDonationRequest) (*entity.RecurringDonation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pledge, err := uow.RecurringDonationRepository().FindOne(ctx, specification.ByID{ID: pledgeId})
	if err != nil {
		return nil, err
	}
	if pledge == nil {
		return nil, ErrPledgeNotFound
	}

	if req.AmountCents != nil {
		pledge.AmountCents = *req.AmountCents
	}
	if req.PaymentMethod != nil {
		pledge.PaymentMethod = *req.PaymentMethod
	}
	if req.Frequency != nil && entity.Frequency(*req.Frequency) != pledge.Frequency {
		pledge.Frequency = entity.Frequency(*req.Frequency)
		pledge.NextDueDate = ComputeNextDueDate(time.Now(), pledge.Frequency)
	}

	if err := uow.RecurringDonationRepository().Update(ctx, pledge); err != nil {
		return nil, err
	}
	return pledge, nil
}

// Cancel deactivates a pledge. The processor-side cancellation is
// best-effort: the pledge is deactivated locally even when the processor
// call fails, and the failure is kept in the audit note.
func (s *recurringDonationService) Cancel(ctx context.Context, pledgeId uuid.UUID, reason string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pledge, err := uow.RecurringDonationRepository().FindOne(ctx, specification.ByID{ID: pledgeId})
	if err != nil {
		return err
	}
	if pledge == nil {
		return ErrPledgeNotFound
	}
	if !pledge.IsActive {
		return nil
	}

	note := fmt.Sprintf("[%s] canceled: %s", time.Now().Format(time.RFC3339), reason)
	if pledge.GatewaySubscriptionId != nil {
		if g, err := s.gateways.Select(pledge.GatewayName); err == nil {
			if err := g.CancelSubscription(ctx, *pledge.GatewaySubscriptionId); err != nil {
				s.log.Warn("RecurringDonationService", "Processor-side cancel failed", map[string]interface{}{
					"pledge_id": pledge.Id.String(),
					"error":     err.Error(),
				})
				note += fmt.Sprintf(" (processor cancel failed: %s)", err.Error())
			}
		}
	}

	pledge.IsActive = false
	if pledge.Notes != "" {
		pledge.Notes += "\n"
	}
	pledge.Notes += note

	if err := uow.RecurringDonationRepository().Update(ctx, pledge); err != nil {
		return err
	}

	evt := events.BaseEvent{
		Type: events.TypePledgeCanceled,
		Data: map[string]interface{}{
			"pledge_id": pledge.Id,
			"member_id": pledge.MemberId,
			"reason":    reason,
		},
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("RecurringDonationService", "Event publish failed", map[string]interface{}{
			"event_type": events.TypePledgeCanceled,
			"error":      err.Error(),
		})
	}
	return nil
}

func (s *recurringDonationService) Get(ctx context.Context, pledgeId uuid.UUID) (*entity.RecurringDonation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	pledge, err := uow.RecurringDonationRepository().FindOne(ctx, specification.ByID{ID: pledgeId})
	if err != nil {
		return nil, err
	}
	if pledge == nil {
		return nil, ErrPledgeNotFound
	}
	return pledge, nil
}

func (s *recurringDonationService) ListByMember(ctx context.Context, memberId uuid.UUID) ([]*entity.RecurringDonation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.RecurringDonationRepository().FindAll(ctx,
		specification.MemberOwnedBy{MemberID: memberId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

// ProcessDueBatch charges every due pledge once. Pledges are isolated:
// one failing or panicking pledge never aborts the rest of the batch.
// Context cancellation stops picking up new pledges.
func (s *recurringDonationService) ProcessDueBatch(ctx context.Context, now time.Time) (*dto.BatchSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	due, err := uow.RecurringDonationRepository().FindAll(ctx,
		specification.DuePledges{Now: now},
		specification.OrderBy{Field: "next_due_date", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	summary := &dto.BatchSummary{Total: len(due), RanAt: now}
	for _, pledge := range due {
		if ctx.Err() != nil {
			s.log.Warn("RecurringDonationService", "Batch interrupted", map[string]interface{}{
				"processed": summary.Success + summary.Failed + summary.Skipped,
				"total":     summary.Total,
			})
			break
		}

		outcome := s.processSafely(ctx, pledge, now)
		switch outcome.Status {
		case OutcomeSuccess:
			summary.Success++
		case OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	s.log.Info("RecurringDonationService", "Due batch processed", map[string]interface{}{
		"total":   summary.Total,
		"success": summary.Success,
		"failed":  summary.Failed,
		"skipped": summary.Skipped,
	})
	return summary, nil
}

func (s *recurringDonationService) processSafely(ctx context.Context, pledge *entity.RecurringDonation, now time.Time) (outcome ProcessOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("RecurringDonationService", "Panic while processing pledge", map[string]interface{}{
				"pledge_id": pledge.Id.String(),
				"panic":     fmt.Sprintf("%v", r),
			})
			outcome = ProcessOutcome{Status: OutcomeFailed, Reason: "panic"}
		}
	}()
	return s.processOne(ctx, pledge, now)
}

// processOne runs one scheduled charge. Success advances the next due
// date from now; failure leaves it untouched so the next cycle retries.
func (s *recurringDonationService) processOne(ctx context.Context, pledge *entity.RecurringDonation, now time.Time) ProcessOutcome {
	if !pledge.IsActive {
		return ProcessOutcome{Status: OutcomeSkipped, Reason: "inactive"}
	}
	if pledge.Expired(now) {
		if err := s.deactivate(ctx, pledge, "end date reached"); err != nil {
			s.log.Error("RecurringDonationService", "Failed to deactivate expired pledge", map[string]interface{}{
				"pledge_id": pledge.Id.String(),
				"error":     err.Error(),
			})
		}
		return ProcessOutcome{Status: OutcomeSkipped, Reason: "expired"}
	}

	chargeCtx := &dto.ChargeContext{PaymentMethod: pledge.PaymentMethod}
	if pledge.GatewayCustomerId != nil {
		chargeCtx.CustomerId = *pledge.GatewayCustomerId
	}
	member, err := s.directory.Lookup(ctx, pledge.MemberId)
	if err == nil && member != nil {
		chargeCtx.CustomerName = member.FullName
		chargeCtx.CustomerEmail = member.Email
		if chargeCtx.CustomerId == "" && member.GatewayCustomerId != nil {
			chargeCtx.CustomerId = *member.GatewayCustomerId
		}
	}

	donation := &entity.Donation{
		Id:                  uuid.New(),
		MemberId:            &pledge.MemberId,
		AmountCents:         pledge.AmountCents,
		Currency:            pledge.Currency,
		CategoryId:          pledge.CategoryId,
		ProjectId:           pledge.ProjectId,
		CampaignId:          pledge.CampaignId,
		DonationDate:        now,
		PaymentMethod:       pledge.PaymentMethod,
		PaymentStatus:       entity.PaymentStatusPending,
		GatewayName:         pledge.GatewayName,
		RecurringDonationId: &pledge.Id,
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DonationRepository().Create(ctx, donation); err != nil {
		return ProcessOutcome{Status: OutcomeFailed, Reason: err.Error()}
	}

	outcome, err := s.payments.ChargeDonation(ctx, donation.Id, pledge.GatewayName, chargeCtx)
	if err != nil {
		if errors.Is(err, ErrAlreadyCharged) {
			return ProcessOutcome{Status: OutcomeSkipped, Reason: "already charged"}
		}
		return ProcessOutcome{Status: OutcomeFailed, Reason: err.Error(), DonationId: &donation.Id}
	}

	// The charge reached the processor (completed or pending): advance
	// the schedule so the pledge is not charged again this cycle.
	pledge.LastDonationId = &donation.Id
	pledge.NextDueDate = ComputeNextDueDate(now, pledge.Frequency)
	if err := uow.RecurringDonationRepository().Update(ctx, pledge); err != nil {
		s.log.Error("RecurringDonationService", "Failed to advance pledge schedule", map[string]interface{}{
			"pledge_id": pledge.Id.String(),
			"error":     err.Error(),
		})
		return ProcessOutcome{Status: OutcomeFailed, Reason: err.Error(), DonationId: &donation.Id}
	}

	return ProcessOutcome{Status: OutcomeSuccess, DonationId: &outcome.DonationId}
}

func (s *recurringDonationService) deactivate(ctx context.Context, pledge *entity.RecurringDonation, reason string) error {
	pledge.IsActive = false
	if pledge.Notes != "" {
		pledge.Notes += "\n"
	}
	pledge.Notes += fmt.Sprintf("[%s] deactivated: %s", time.Now().Format(time.RFC3339), reason)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.RecurringDonationRepository().Update(ctx, pledge)
}
