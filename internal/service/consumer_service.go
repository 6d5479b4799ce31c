package service

import (
	"context"
	"encoding/json"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/pkg/logger"
	"stewardship-be/internal/pkg/mailer"
	"stewardship-be/internal/repository/specification"
	"stewardship-be/internal/repository/unitofwork"
	"stewardship-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// IConsumerService drains the giving event topic and runs the follow-up
// work that must not sit on the payment path: designation roll-ups and
// donor email.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topic      string
	uowFactory unitofwork.RepositoryFactory
	directory  IMemberDirectory
	mailer     mailer.IEmailService
	log        logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topic string,
	uowFactory unitofwork.RepositoryFactory,
	directory IMemberDirectory,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topic:      topic,
		uowFactory: uowFactory,
		directory:  directory,
		mailer:     emailService,
		log:        log,
	}
}

type donationEventData struct {
	DonationId  uuid.UUID  `json:"donation_id"`
	MemberId    *uuid.UUID `json:"member_id"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	CategoryId  *uuid.UUID `json:"category_id"`
	ProjectId   *uuid.UUID `json:"project_id"`
	CampaignId  *uuid.UUID `json:"campaign_id"`
}

type receiptEventData struct {
	ReceiptId     uuid.UUID `json:"receipt_id"`
	MemberId      uuid.UUID `json:"member_id"`
	ReceiptNumber string    `json:"receipt_number"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
}

func (s *consumerService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topic)
	if err != nil {
		return err
	}

	s.log.Info("ConsumerService", "Consuming giving events", map[string]interface{}{
		"topic": s.topic,
	})
	for msg := range messages {
		if err := s.handle(ctx, msg.Payload); err != nil {
			s.log.Error("ConsumerService", "Failed to handle event", map[string]interface{}{
				"message_id": msg.UUID,
				"error":      err.Error(),
			})
		}
		// Ack regardless: follow-up work is best-effort and must not
		// wedge the topic.
		msg.Ack()
	}
	return nil
}

func (s *consumerService) handle(ctx context.Context, payload []byte) error {
	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return err
	}

	switch envelope.Type {
	case events.TypeDonationCompleted:
		var data donationEventData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return err
		}
		return s.rollUpDesignations(ctx, &data, data.AmountCents)

	case events.TypeDonationRefunded:
		var data donationEventData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return err
		}
		return s.rollUpDesignations(ctx, &data, -data.AmountCents)

	case events.TypeDonationFailed:
		var data donationEventData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return err
		}
		return s.notifyPaymentFailed(ctx, &data)

	case events.TypeReceiptIssued:
		var data receiptEventData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return err
		}
		return s.sendReceipt(ctx, &data)
	}
	return nil
}

// rollUpDesignations applies a donation's amount to the running totals
// of every designation it targets. Refunds pass a negative delta.
func (s *consumerService) rollUpDesignations(ctx context.Context, data *donationEventData, delta int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	for _, id := range []*uuid.UUID{data.CategoryId, data.ProjectId, data.CampaignId} {
		if id == nil {
			continue
		}
		if err := uow.DesignationRepository().IncrementRaised(ctx, *id, delta); err != nil {
			return err
		}
	}
	return nil
}

func (s *consumerService) notifyPaymentFailed(ctx context.Context, data *donationEventData) error {
	if data.MemberId == nil {
		return nil
	}
	member, err := s.directory.Lookup(ctx, *data.MemberId)
	if err != nil || member == nil || member.Email == "" {
		return err
	}
	return s.mailer.SendPaymentFailed(member.Email, member.FullName, data.AmountCents, data.Currency)
}

// sendReceipt emails the receipt and marks it sent. A failed send leaves
// the receipt in issued state for the next reconcile pass.
func (s *consumerService) sendReceipt(ctx context.Context, data *receiptEventData) error {
	member, err := s.directory.Lookup(ctx, data.MemberId)
	if err != nil || member == nil || member.Email == "" {
		return err
	}

	if err := s.mailer.SendReceiptIssued(member.Email, member.FullName, data.ReceiptNumber, data.AmountCents, data.Currency); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	receipt, err := uow.TaxReceiptRepository().FindOne(ctx, specification.ByID{ID: data.ReceiptId})
	if err != nil || receipt == nil {
		return err
	}
	if receipt.Status != entity.ReceiptStatusIssued {
		return nil
	}
	receipt.Status = entity.ReceiptStatusSent
	return uow.TaxReceiptRepository().Update(ctx, receipt)
}
