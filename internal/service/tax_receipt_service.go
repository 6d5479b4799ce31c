package service

import (
	"context"
	"fmt"
	"time"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/pkg/logger"
	"stewardship-be/internal/pkg/render"
	"stewardship-be/internal/repository/specification"
	"stewardship-be/internal/repository/unitofwork"
	"stewardship-be/pkg/events"

	"github.com/google/uuid"
)

type ITaxReceiptService interface {
	IssueForDonation(ctx context.Context, donationId uuid.UUID) (*entity.TaxReceipt, error)
	IssueAnnual(ctx context.Context, memberId uuid.UUID, taxYear int) (*entity.TaxReceipt, error)
	Void(ctx context.Context, receiptId uuid.UUID, reason string) error
	GetReceipt(ctx context.Context, receiptId uuid.UUID) (*entity.TaxReceipt, error)
}

type taxReceiptService struct {
	uowFactory   unitofwork.RepositoryFactory
	directory    IMemberDirectory
	renderer     render.IRenderer
	publisher    IEventPublisher
	log          logger.ILogger
	orgName      string
	singlePrefix string
	annualPrefix string
}

func NewTaxReceiptService(
	uowFactory unitofwork.RepositoryFactory,
	directory IMemberDirectory,
	renderer render.IRenderer,
	publisher IEventPublisher,
	log logger.ILogger,
	orgName, singlePrefix, annualPrefix string,
) ITaxReceiptService {
	return &taxReceiptService{
		uowFactory:   uowFactory,
		directory:    directory,
		renderer:     renderer,
		publisher:    publisher,
		log:          log,
		orgName:      orgName,
		singlePrefix: singlePrefix,
		annualPrefix: annualPrefix,
	}
}

// IssueForDonation issues a receipt for one completed donation. Calling
// it again for the same donation returns the receipt already on file.
func (s *taxReceiptService) IssueForDonation(ctx context.Context, donationId uuid.UUID) (*entity.TaxReceipt, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByID{ID: donationId})
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, ErrDonationNotFound
	}
	if donation.MemberId == nil || donation.PaymentStatus != entity.PaymentStatusCompleted {
		return nil, ErrIneligibleForReceipt
	}

	if donation.TaxReceiptId != nil {
		existing, err := uow.TaxReceiptRepository().FindOne(ctx, specification.ByID{ID: *donation.TaxReceiptId})
		if err != nil {
			return nil, err
		}
		if existing != nil && !existing.Voided() {
			return existing, nil
		}
	}

	member, err := s.directory.Lookup(ctx, *donation.MemberId)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrIneligibleForReceipt
	}

	taxYear := donation.DonationDate.Year()

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	seq, err := uow.ReceiptSequenceRepository().NextNumber(ctx, taxYear, entity.PartitionSingle)
	if err != nil {
		return nil, err
	}

	receipt := &entity.TaxReceipt{
		Id:            uuid.New(),
		MemberId:      *donation.MemberId,
		DonationId:    &donation.Id,
		IsAnnual:      false,
		AmountCents:   donation.AmountCents,
		Currency:      donation.Currency,
		ReceiptNumber: fmt.Sprintf("%s-%d-%05d", s.singlePrefix, taxYear, seq),
		TaxYear:       taxYear,
		IssueDate:     time.Now(),
		Status:        entity.ReceiptStatusIssued,
	}

	label := s.designationLabel(ctx, uow, donation)
	path, err := s.renderer.Store(receipt.Id.String(), &render.ReceiptDocument{
		ReceiptNumber: receipt.ReceiptNumber,
		MemberName:    member.FullName,
		OrgName:       s.orgName,
		TaxYear:       taxYear,
		IssueDate:     receipt.IssueDate,
		Currency:      receipt.Currency,
		TotalCents:    receipt.AmountCents,
		Lines: []render.ReceiptLine{
			{Label: label, AmountCents: donation.AmountCents},
		},
	})
	if err != nil {
		return nil, err
	}
	receipt.FilePath = path

	if err := uow.TaxReceiptRepository().Create(ctx, receipt); err != nil {
		return nil, err
	}
	donation.TaxReceiptId = &receipt.Id
	if err := uow.DonationRepository().Update(ctx, donation); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("TaxReceiptService", "Receipt issued", map[string]interface{}{
		"receipt_id":     receipt.Id.String(),
		"receipt_number": receipt.ReceiptNumber,
		"donation_id":    donation.Id.String(),
	})
	s.publishReceiptIssued(ctx, receipt)
	return receipt, nil
}

// IssueAnnual consolidates every completed donation a member made in a
// tax year that is not yet on an annual receipt. Reissuing for the same
// (member, year) returns the existing receipt.
func (s *taxReceiptService) IssueAnnual(ctx context.Context, memberId uuid.UUID, taxYear int) (*entity.TaxReceipt, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.TaxReceiptRepository().FindAll(ctx,
		specification.Filter("member_id", memberId),
		specification.Filter("tax_year", taxYear),
		specification.Filter("is_annual", true),
	)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if !r.Voided() {
			return r, nil
		}
	}

	member, err := s.directory.Lookup(ctx, memberId)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrIneligibleForReceipt
	}

	donations, err := uow.DonationRepository().FindAll(ctx,
		specification.CompletedInYear{Year: taxYear},
		specification.MemberOwnedBy{MemberID: memberId},
		specification.IsNull{Field: "annual_receipt_id"},
	)
	if err != nil {
		return nil, err
	}
	if len(donations) == 0 {
		return nil, ErrIneligibleForReceipt
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	seq, err := uow.ReceiptSequenceRepository().NextNumber(ctx, taxYear, entity.PartitionAnnual)
	if err != nil {
		return nil, err
	}

	var total int64
	lineTotals := make(map[string]int64)
	labels := make([]string, 0)
	for _, d := range donations {
		total += d.AmountCents
		label := s.designationLabel(ctx, uow, d)
		if _, seen := lineTotals[label]; !seen {
			labels = append(labels, label)
		}
		lineTotals[label] += d.AmountCents
	}
	lines := make([]render.ReceiptLine, 0, len(labels))
	for _, label := range labels {
		lines = append(lines, render.ReceiptLine{Label: label, AmountCents: lineTotals[label]})
	}

	receipt := &entity.TaxReceipt{
		Id:            uuid.New(),
		MemberId:      memberId,
		IsAnnual:      true,
		AmountCents:   total,
		Currency:      donations[0].Currency,
		ReceiptNumber: fmt.Sprintf("%s-%d-%05d", s.annualPrefix, taxYear, seq),
		TaxYear:       taxYear,
		IssueDate:     time.Now(),
		Status:        entity.ReceiptStatusIssued,
	}

	path, err := s.renderer.Store(receipt.Id.String(), &render.ReceiptDocument{
		ReceiptNumber: receipt.ReceiptNumber,
		MemberName:    member.FullName,
		OrgName:       s.orgName,
		TaxYear:       taxYear,
		IssueDate:     receipt.IssueDate,
		Currency:      receipt.Currency,
		TotalCents:    total,
		Lines:         lines,
	})
	if err != nil {
		return nil, err
	}
	receipt.FilePath = path

	if err := uow.TaxReceiptRepository().Create(ctx, receipt); err != nil {
		return nil, err
	}
	for _, d := range donations {
		d.AnnualReceiptId = &receipt.Id
		if err := uow.DonationRepository().Update(ctx, d); err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("TaxReceiptService", "Annual receipt issued", map[string]interface{}{
		"receipt_id":     receipt.Id.String(),
		"receipt_number": receipt.ReceiptNumber,
		"member_id":      memberId.String(),
		"tax_year":       taxYear,
		"donations":      len(donations),
	})
	s.publishReceiptIssued(ctx, receipt)
	return receipt, nil
}

// Void marks a receipt invalid and detaches its donations so they can be
// receipted again. The voided number stays consumed; the sequence never
// hands it out twice.
func (s *taxReceiptService) Void(ctx context.Context, receiptId uuid.UUID, reason string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	receipt, err := uow.TaxReceiptRepository().FindOne(ctx, specification.ByID{ID: receiptId})
	if err != nil {
		return err
	}
	if receipt == nil {
		return ErrReceiptNotFound
	}
	if receipt.Voided() {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	receipt.Status = entity.ReceiptStatusVoided
	receipt.VoidReason = reason
	if err := uow.TaxReceiptRepository().Update(ctx, receipt); err != nil {
		return err
	}

	if receipt.IsAnnual {
		attached, err := uow.DonationRepository().FindAll(ctx, specification.Filter("annual_receipt_id", receipt.Id))
		if err != nil {
			return err
		}
		for _, d := range attached {
			d.AnnualReceiptId = nil
			if err := uow.DonationRepository().Update(ctx, d); err != nil {
				return err
			}
		}
	} else if receipt.DonationId != nil {
		donation, err := uow.DonationRepository().FindOne(ctx, specification.ByID{ID: *receipt.DonationId})
		if err != nil {
			return err
		}
		if donation != nil && donation.TaxReceiptId != nil && *donation.TaxReceiptId == receipt.Id {
			donation.TaxReceiptId = nil
			if err := uow.DonationRepository().Update(ctx, donation); err != nil {
				return err
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("TaxReceiptService", "Receipt voided", map[string]interface{}{
		"receipt_id":     receipt.Id.String(),
		"receipt_number": receipt.ReceiptNumber,
		"reason":         reason,
	})
	return nil
}

func (s *taxReceiptService) GetReceipt(ctx context.Context, receiptId uuid.UUID) (*entity.TaxReceipt, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	receipt, err := uow.TaxReceiptRepository().FindOne(ctx, specification.ByID{ID: receiptId})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, ErrReceiptNotFound
	}
	return receipt, nil
}

// designationLabel resolves the most specific designation name for a
// donation line, falling back to the general fund.
func (s *taxReceiptService) designationLabel(ctx context.Context, uow unitofwork.UnitOfWork, donation *entity.Donation) string {
	for _, id := range []*uuid.UUID{donation.CampaignId, donation.ProjectId, donation.CategoryId} {
		if id == nil {
			continue
		}
		designation, err := uow.DesignationRepository().FindOne(ctx, specification.ByID{ID: *id})
		if err == nil && designation != nil {
			return designation.Name
		}
	}
	return "General Fund"
}

func (s *taxReceiptService) publishReceiptIssued(ctx context.Context, receipt *entity.TaxReceipt) {
	evt := events.BaseEvent{
		Type: events.TypeReceiptIssued,
		Data: map[string]interface{}{
			"receipt_id":     receipt.Id,
			"member_id":      receipt.MemberId,
			"receipt_number": receipt.ReceiptNumber,
			"amount_cents":   receipt.AmountCents,
			"currency":       receipt.Currency,
			"is_annual":      receipt.IsAnnual,
		},
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("TaxReceiptService", "Event publish failed", map[string]interface{}{
			"event_type": events.TypeReceiptIssued,
			"error":      err.Error(),
		})
	}
}
