package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"stewardship-be/internal/entity"
	"stewardship-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReceiptServiceUnderTest(store *fakeStore) (ITaxReceiptService, *fakeRenderer, *fakePublisher) {
	factory := newFakeFactory(store)
	renderer := newFakeRenderer()
	pub := &fakePublisher{}
	svc := NewTaxReceiptService(
		factory,
		NewMemberDirectory(factory),
		renderer,
		pub,
		nopLogger{},
		"Grace Community Church",
		"DR",
		"AR",
	)
	return svc, renderer, pub
}

func seedCompletedDonation(store *fakeStore, memberId uuid.UUID, amountCents int64, donatedAt time.Time) *entity.Donation {
	txnId := "txn-" + uuid.NewString()
	donation := &entity.Donation{
		Id:                   uuid.New(),
		MemberId:             &memberId,
		AmountCents:          amountCents,
		Currency:             "USD",
		DonationDate:         donatedAt,
		PaymentMethod:        "credit_card",
		PaymentStatus:        entity.PaymentStatusCompleted,
		GatewayName:          "fake",
		GatewayTransactionId: &txnId,
	}
	store.donations[donation.Id] = donation
	return donation
}

func TestIssueForDonationIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc, renderer, pub := newReceiptServiceUnderTest(store)

	member := seedMember(store)
	donation := seedCompletedDonation(store, member.Id, 5000, date(2025, time.March, 1))

	first, err := svc.IssueForDonation(context.Background(), donation.Id)
	require.NoError(t, err)
	assert.Equal(t, "DR-2025-00001", first.ReceiptNumber)
	assert.Equal(t, entity.ReceiptStatusIssued, first.Status)
	assert.NotEmpty(t, first.FilePath)

	second, err := svc.IssueForDonation(context.Background(), donation.Id)
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id, "reissue returns the receipt already on file")
	assert.Len(t, store.receipts, 1)
	assert.Len(t, renderer.stored, 1)
	assert.Contains(t, pub.typesSeen(), events.TypeReceiptIssued)
}

func TestReceiptNumbersDistinctUnderConcurrentIssuance(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newReceiptServiceUnderTest(store)
	member := seedMember(store)

	const n = 16
	donations := make([]*entity.Donation, n)
	for i := range donations {
		donations[i] = seedCompletedDonation(store, member.Id, 5000, date(2025, time.March, 1))
	}

	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for _, donation := range donations {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			receipt, err := svc.IssueForDonation(context.Background(), id)
			if err != nil {
				t.Errorf("issue receipt: %v", err)
				return
			}
			numbers <- receipt.ReceiptNumber
		}(donation.Id)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "receipt number %s issued twice", number)
		seen[number] = true
	}
	require.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.Contains(t, seen, fmt.Sprintf("DR-2025-%05d", i))
	}
}

func TestIssueForDonationRejectsIneligible(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newReceiptServiceUnderTest(store)
	member := seedMember(store)

	pending := seedCompletedDonation(store, member.Id, 5000, date(2025, time.March, 1))
	pending.PaymentStatus = entity.PaymentStatusPending

	_, err := svc.IssueForDonation(context.Background(), pending.Id)
	assert.ErrorIs(t, err, ErrIneligibleForReceipt)

	anonymous := seedCompletedDonation(store, member.Id, 5000, date(2025, time.March, 1))
	anonymous.MemberId = nil

	_, err = svc.IssueForDonation(context.Background(), anonymous.Id)
	assert.ErrorIs(t, err, ErrIneligibleForReceipt)
}

func TestReceiptNumbersAreContiguousPerPartition(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newReceiptServiceUnderTest(store)
	member := seedMember(store)

	for i := 1; i <= 3; i++ {
		donation := seedCompletedDonation(store, member.Id, 1000, date(2025, time.March, i))
		receipt, err := svc.IssueForDonation(context.Background(), donation.Id)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("DR-2025-%05d", i), receipt.ReceiptNumber)
	}

	// The annual partition numbers independently.
	seedCompletedDonation(store, member.Id, 1000, date(2025, time.April, 1))
	annual, err := svc.IssueAnnual(context.Background(), member.Id, 2025)
	require.NoError(t, err)
	assert.Equal(t, "AR-2025-00001", annual.ReceiptNumber)
}

func TestIssueAnnualConsolidatesAndIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newReceiptServiceUnderTest(store)
	member := seedMember(store)

	building := &entity.Designation{Id: uuid.New(), Kind: entity.DesignationProject, Name: "Building Fund"}
	store.designations[building.Id] = building

	d1 := seedCompletedDonation(store, member.Id, 10000, date(2025, time.January, 5))
	d2 := seedCompletedDonation(store, member.Id, 7500, date(2025, time.June, 5))
	d2.ProjectId = &building.Id
	// Out of scope: a different year and a different member.
	seedCompletedDonation(store, member.Id, 9999, date(2024, time.December, 31))
	other := seedMember(store)
	seedCompletedDonation(store, other.Id, 1234, date(2025, time.June, 5))

	receipt, err := svc.IssueAnnual(context.Background(), member.Id, 2025)
	require.NoError(t, err)
	assert.True(t, receipt.IsAnnual)
	assert.Equal(t, int64(17500), receipt.AmountCents)
	assert.Equal(t, 2025, receipt.TaxYear)

	require.NotNil(t, store.donations[d1.Id].AnnualReceiptId)
	require.NotNil(t, store.donations[d2.Id].AnnualReceiptId)
	assert.Equal(t, receipt.Id, *store.donations[d1.Id].AnnualReceiptId)

	again, err := svc.IssueAnnual(context.Background(), member.Id, 2025)
	require.NoError(t, err)
	assert.Equal(t, receipt.Id, again.Id)
}

func TestIssueAnnualWithNothingToConsolidate(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newReceiptServiceUnderTest(store)
	member := seedMember(store)

	_, err := svc.IssueAnnual(context.Background(), member.Id, 2025)
	assert.ErrorIs(t, err, ErrIneligibleForReceipt)
}

func TestVoidNeverReusesNumbers(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newReceiptServiceUnderTest(store)
	member := seedMember(store)

	donation := seedCompletedDonation(store, member.Id, 5000, date(2025, time.March, 1))

	first, err := svc.IssueForDonation(context.Background(), donation.Id)
	require.NoError(t, err)
	assert.Equal(t, "DR-2025-00001", first.ReceiptNumber)

	require.NoError(t, svc.Void(context.Background(), first.Id, "wrong amount"))
	voided := store.receipts[first.Id]
	assert.Equal(t, entity.ReceiptStatusVoided, voided.Status)
	assert.Equal(t, "wrong amount", voided.VoidReason)
	assert.Nil(t, store.donations[donation.Id].TaxReceiptId, "voiding detaches the donation")

	// Voiding again is a no-op.
	require.NoError(t, svc.Void(context.Background(), first.Id, "again"))
	assert.Equal(t, "wrong amount", store.receipts[first.Id].VoidReason)

	reissued, err := svc.IssueForDonation(context.Background(), donation.Id)
	require.NoError(t, err)
	assert.Equal(t, "DR-2025-00002", reissued.ReceiptNumber, "the voided number stays consumed")
	assert.NotEqual(t, first.Id, reissued.Id)
}

func TestVoidAnnualDetachesAllDonations(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newReceiptServiceUnderTest(store)
	member := seedMember(store)

	d1 := seedCompletedDonation(store, member.Id, 1000, date(2025, time.February, 1))
	d2 := seedCompletedDonation(store, member.Id, 2000, date(2025, time.March, 1))

	receipt, err := svc.IssueAnnual(context.Background(), member.Id, 2025)
	require.NoError(t, err)

	require.NoError(t, svc.Void(context.Background(), receipt.Id, "duplicate"))
	assert.Nil(t, store.donations[d1.Id].AnnualReceiptId)
	assert.Nil(t, store.donations[d2.Id].AnnualReceiptId)

	again, err := svc.IssueAnnual(context.Background(), member.Id, 2025)
	require.NoError(t, err)
	assert.NotEqual(t, receipt.Id, again.Id)
	assert.Equal(t, "AR-2025-00002", again.ReceiptNumber)
}
