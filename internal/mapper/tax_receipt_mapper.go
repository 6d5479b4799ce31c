package mapper

import (
	"stewardship-be/internal/entity"
	"stewardship-be/internal/model"
)

type TaxReceiptMapper struct{}

func NewTaxReceiptMapper() *TaxReceiptMapper {
	return &TaxReceiptMapper{}
}

func (m *TaxReceiptMapper) ToEntity(r *model.TaxReceipt) *entity.TaxReceipt {
	if r == nil {
		return nil
	}
	return &entity.TaxReceipt{
		Id:            r.Id,
		MemberId:      r.MemberId,
		DonationId:    r.DonationId,
		IsAnnual:      r.IsAnnual,
		AmountCents:   r.AmountCents,
		Currency:      r.Currency,
		ReceiptNumber: r.ReceiptNumber,
		TaxYear:       r.TaxYear,
		IssueDate:     r.IssueDate,
		Status:        entity.ReceiptStatus(r.Status),
		VoidReason:    r.VoidReason,
		FilePath:      r.FilePath,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (m *TaxReceiptMapper) ToModel(r *entity.TaxReceipt) *model.TaxReceipt {
	if r == nil {
		return nil
	}
	return &model.TaxReceipt{
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
		VoidReason:    r.VoidReason,
		FilePath:      r.FilePath,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
