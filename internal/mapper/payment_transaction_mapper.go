package mapper

import (
	"stewardship-be/internal/entity"
	"stewardship-be/internal/model"

	"gorm.io/datatypes"
)

type PaymentTransactionMapper struct{}

func NewPaymentTransactionMapper() *PaymentTransactionMapper {
	return &PaymentTransactionMapper{}
}

func (m *PaymentTransactionMapper) ToEntity(t *model.PaymentTransaction) *entity.PaymentTransaction {
	if t == nil {
		return nil
	}
	return &entity.PaymentTransaction{
		Id:                   t.Id,
		DonationId:           t.DonationId,
		GatewayTransactionId: t.GatewayTransactionId,
		GatewayName:          t.GatewayName,
		AmountCents:          t.AmountCents,
		Currency:             t.Currency,
		Status:               t.Status,
		Type:                 entity.TransactionType(t.Type),
		RawResponse:          []byte(t.RawResponse),
		CreatedAt:            t.CreatedAt,
	}
}

func (m *PaymentTransactionMapper) ToModel(t *entity.PaymentTransaction) *model.PaymentTransaction {
	if t == nil {
		return nil
	}
	return &model.PaymentTransaction{
		Id:                   t.Id,
		DonationId:           t.DonationId,
		GatewayTransactionId: t.GatewayTransactionId,
		GatewayName:          t.GatewayName,
		AmountCents:          t.AmountCents,
		Currency:             t.Currency,
		Status:               t.Status,
		Type:                 string(t.Type),
		RawResponse:          datatypes.JSON(t.RawResponse),
		CreatedAt:            t.CreatedAt,
	}
}
