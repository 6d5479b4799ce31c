package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"stewardship-be/internal/entity"
	"stewardship-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu            sync.Mutex
	receiptsSent  []string
	failuresSent  []string
	failOnReceipt bool
}

func (m *fakeMailer) SendReceiptIssued(toEmail, memberName, receiptNumber string, amountCents int64, currency string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOnReceipt {
		return assert.AnError
	}
	m.receiptsSent = append(m.receiptsSent, receiptNumber)
	return nil
}

func (m *fakeMailer) SendPaymentFailed(toEmail, memberName string, amountCents int64, currency string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresSent = append(m.failuresSent, toEmail)
	return nil
}

func newConsumerUnderTest(store *fakeStore, mail *fakeMailer) *consumerService {
	factory := newFakeFactory(store)
	return &consumerService{
		topic:      GivingEventsTopic,
		uowFactory: factory,
		directory:  NewMemberDirectory(factory),
		mailer:     mail,
		log:        nopLogger{},
	}
}

func envelopeFor(t *testing.T, eventType string, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(eventEnvelope{
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       raw,
	})
	require.NoError(t, err)
	return payload
}

func TestConsumerRollsUpDesignations(t *testing.T) {
	store := newFakeStore()
	consumer := newConsumerUnderTest(store, &fakeMailer{})

	missions := &entity.Designation{Id: uuid.New(), Kind: entity.DesignationCategory, Name: "Missions"}
	building := &entity.Designation{Id: uuid.New(), Kind: entity.DesignationProject, Name: "Building Fund"}
	store.designations[missions.Id] = missions
	store.designations[building.Id] = building

	payload := envelopeFor(t, events.TypeDonationCompleted, donationEventData{
		DonationId:  uuid.New(),
		AmountCents: 5000,
		Currency:    "USD",
		CategoryId:  &missions.Id,
		ProjectId:   &building.Id,
	})
	require.NoError(t, consumer.handle(context.Background(), payload))

	assert.Equal(t, int64(5000), store.designations[missions.Id].RaisedCents)
	assert.Equal(t, int64(5000), store.designations[building.Id].RaisedCents)

	// A refund reverses the roll-up.
	refund := envelopeFor(t, events.TypeDonationRefunded, donationEventData{
		DonationId:  uuid.New(),
		AmountCents: 5000,
		Currency:    "USD",
		CategoryId:  &missions.Id,
	})
	require.NoError(t, consumer.handle(context.Background(), refund))
	assert.Equal(t, int64(0), store.designations[missions.Id].RaisedCents)
	assert.Equal(t, int64(5000), store.designations[building.Id].RaisedCents)
}

func TestConsumerSendsReceiptAndMarksSent(t *testing.T) {
	store := newFakeStore()
	mail := &fakeMailer{}
	consumer := newConsumerUnderTest(store, mail)

	member := seedMember(store)
	receipt := &entity.TaxReceipt{
		Id:            uuid.New(),
		MemberId:      member.Id,
		ReceiptNumber: "DR-2025-00001",
		AmountCents:   5000,
		Currency:      "USD",
		TaxYear:       2025,
		Status:        entity.ReceiptStatusIssued,
	}
	store.receipts[receipt.Id] = receipt

	payload := envelopeFor(t, events.TypeReceiptIssued, receiptEventData{
		ReceiptId:     receipt.Id,
		MemberId:      member.Id,
		ReceiptNumber: receipt.ReceiptNumber,
		AmountCents:   5000,
		Currency:      "USD",
	})
	require.NoError(t, consumer.handle(context.Background(), payload))

	assert.Equal(t, []string{"DR-2025-00001"}, mail.receiptsSent)
	assert.Equal(t, entity.ReceiptStatusSent, store.receipts[receipt.Id].Status)
}

func TestConsumerKeepsReceiptIssuedWhenSendFails(t *testing.T) {
	store := newFakeStore()
	mail := &fakeMailer{failOnReceipt: true}
	consumer := newConsumerUnderTest(store, mail)

	member := seedMember(store)
	receipt := &entity.TaxReceipt{
		Id:       uuid.New(),
		MemberId: member.Id,
		Status:   entity.ReceiptStatusIssued,
	}
	store.receipts[receipt.Id] = receipt

	payload := envelopeFor(t, events.TypeReceiptIssued, receiptEventData{
		ReceiptId: receipt.Id,
		MemberId:  member.Id,
	})
	assert.Error(t, consumer.handle(context.Background(), payload))
	assert.Equal(t, entity.ReceiptStatusIssued, store.receipts[receipt.Id].Status)
}

func TestConsumerNotifiesPaymentFailure(t *testing.T) {
	store := newFakeStore()
	mail := &fakeMailer{}
	consumer := newConsumerUnderTest(store, mail)

	member := seedMember(store)
	payload := envelopeFor(t, events.TypeDonationFailed, donationEventData{
		DonationId:  uuid.New(),
		MemberId:    &member.Id,
		AmountCents: 2500,
		Currency:    "USD",
	})
	require.NoError(t, consumer.handle(context.Background(), payload))
	assert.Equal(t, []string{member.Email}, mail.failuresSent)
}
