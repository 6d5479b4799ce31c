package mapper

import (
	"stewardship-be/internal/entity"
	"stewardship-be/internal/model"
)

type DonationMapper struct{}

func NewDonationMapper() *DonationMapper {
	return &DonationMapper{}
}

func (m *DonationMapper) ToEntity(d *model.Donation) *entity.Donation {
	if d == nil {
		return nil
	}
	return &entity.Donation{
		Id:                   d.Id,
		MemberId:             d.MemberId,
		AmountCents:          d.AmountCents,
		Currency:             d.Currency,
		CategoryId:           d.CategoryId,
		ProjectId:            d.ProjectId,
		CampaignId:           d.CampaignId,
		DonationDate:         d.DonationDate,
		PaymentMethod:        d.PaymentMethod,
		PaymentStatus:        entity.PaymentStatus(d.PaymentStatus),
		GatewayName:          d.GatewayName,
		GatewayTransactionId: d.GatewayTransactionId,
		RecurringDonationId:  d.RecurringDonationId,
		TaxReceiptId:         d.TaxReceiptId,
		AnnualReceiptId:      d.AnnualReceiptId,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func (m *DonationMapper) ToModel(d *entity.Donation) *model.Donation {
	if d == nil {
		return nil
	}
	return &model.Donation{
		Id:                   d.Id,
		MemberId:             d.MemberId,
		AmountCents:          d.AmountCents,
		Currency:             d.Currency,
		CategoryId:           d.CategoryId,
		ProjectId:            d.ProjectId,
		CampaignId:           d.CampaignId,
		DonationDate:         d.DonationDate,
		PaymentMethod:        d.PaymentMethod,
		PaymentStatus:        string(d.PaymentStatus),
		GatewayName:          d.GatewayName,
		GatewayTransactionId: d.GatewayTransactionId,
		RecurringDonationId:  d.RecurringDonationId,
		TaxReceiptId:         d.TaxReceiptId,
		AnnualReceiptId:      d.AnnualReceiptId,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}
