package mapper

import (
	"stewardship-be/internal/entity"
	"stewardship-be/internal/model"
)

type RecurringDonationMapper struct{}

func NewRecurringDonationMapper() *RecurringDonationMapper {
	return &RecurringDonationMapper{}
}

func (m *RecurringDonationMapper) ToEntity(r *model.RecurringDonation) *entity.RecurringDonation {
	if r == nil {
		return nil
	}
	return &entity.RecurringDonation{
		Id:                    r.Id,
		MemberId:              r.MemberId,
		AmountCents:           r.AmountCents,
		Currency:              r.Currency,
		CategoryId:            r.CategoryId,
		ProjectId:             r.ProjectId,
		CampaignId:            r.CampaignId,
		Frequency:             entity.Frequency(r.Frequency),
		StartDate:             r.StartDate,
		EndDate:               r.EndDate,
		NextDueDate:           r.NextDueDate,
		IsActive:              r.IsActive,
		PaymentMethod:         r.PaymentMethod,
		GatewayName:           r.GatewayName,
		GatewaySubscriptionId: r.GatewaySubscriptionId,
		GatewayCustomerId:     r.GatewayCustomerId,
		LastDonationId:        r.LastDonationId,
		Notes:                 r.Notes,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func (m *RecurringDonationMapper) ToModel(r *entity.RecurringDonation) *model.RecurringDonation {
	if r == nil {
		return nil
	}
	return &model.RecurringDonation{
		Id:                    r.Id,
		MemberId:              r.MemberId,
		AmountCents:           r.AmountCents,
		Currency:              r.Currency,
		CategoryId:            r.CategoryId,
		ProjectId:             r.ProjectId,
		CampaignId:            r.CampaignId,
		Frequency:             string(r.Frequency),
		StartDate:             r.StartDate,
		EndDate:               r.EndDate,
		NextDueDate:           r.NextDueDate,
		IsActive:              r.IsActive,
		PaymentMethod:         r.PaymentMethod,
		GatewayName:           r.GatewayName,
		GatewaySubscriptionId: r.GatewaySubscriptionId,
		GatewayCustomerId:     r.GatewayCustomerId,
		LastDonationId:        r.LastDonationId,
		Notes:                 r.Notes,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}
