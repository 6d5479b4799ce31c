package service

import (
	"context"
	"testing"
	"time"

	"stewardship-be/internal/dto"
	"stewardship-be/internal/entity"
	"stewardship-be/internal/gateway"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 6, 0, 0, 0, time.UTC)
}

func TestComputeNextDueDate(t *testing.T) {
	cases := []struct {
		name      string
		from      time.Time
		frequency entity.Frequency
		want      time.Time
	}{
		{"weekly", date(2025, time.March, 10), entity.FrequencyWeekly, date(2025, time.March, 17)},
		{"monthly mid-month", date(2025, time.March, 15), entity.FrequencyMonthly, date(2025, time.April, 15)},
		{"monthly clamps to feb", date(2025, time.January, 31), entity.FrequencyMonthly, date(2025, time.February, 28)},
		{"monthly clamps to leap feb", date(2024, time.January, 31), entity.FrequencyMonthly, date(2024, time.February, 29)},
		{"monthly clamps 31 to 30", date(2025, time.March, 31), entity.FrequencyMonthly, date(2025, time.April, 30)},
		{"quarterly clamps", date(2025, time.January, 31), entity.FrequencyQuarterly, date(2025, time.April, 30)},
		{"yearly from leap day", date(2024, time.February, 29), entity.FrequencyYearly, date(2025, time.February, 28)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeNextDueDate(tc.from, tc.frequency)
			assert.True(t, got.Equal(tc.want), "got %s, want %s", got, tc.want)
		})
	}
}

func newRecurringServiceUnderTest(store *fakeStore, g *fakeGateway) (*recurringDonationService, *fakePublisher) {
	factory := newFakeFactory(store)
	pub := &fakePublisher{}
	directory := NewMemberDirectory(factory)
	payments := NewPaymentService(factory, gateway.NewSelector(g), directory, pub, nopLogger{}, g.Name(), time.Second)
	svc := NewRecurringDonationService(factory, payments, gateway.NewSelector(g), directory, pub, nopLogger{}, g.Name())
	return svc, pub
}

func seedMember(store *fakeStore) *entity.Member {
	member := &entity.Member{
		Id:       uuid.New(),
		FullName: "Pat Example",
		Email:    "pat@example.com",
	}
	store.members[member.Id] = member
	return member
}

func seedDuePledge(store *fakeStore, memberId uuid.UUID, amountCents int64, due time.Time) *entity.RecurringDonation {
	pledge := &entity.RecurringDonation{
		Id:            uuid.New(),
		MemberId:      memberId,
		AmountCents:   amountCents,
		Currency:      "USD",
		Frequency:     entity.FrequencyMonthly,
		StartDate:     due.AddDate(0, -1, 0),
		NextDueDate:   due,
		IsActive:      true,
		PaymentMethod: "credit_card",
		GatewayName:   "fake",
	}
	store.pledges[pledge.Id] = pledge
	return pledge
}

func TestProcessDueBatchAdvancesScheduleOnSuccess(t *testing.T) {
	store := newFakeStore()
	g := newFakeGateway("fake")
	svc, _ := newRecurringServiceUnderTest(store, g)

	member := seedMember(store)
	now := date(2025, time.January, 31)
	pledge := seedDuePledge(store, member.Id, 2500, now)

	summary, err := svc.ProcessDueBatch(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Success)

	updated := store.pledges[pledge.Id]
	assert.True(t, updated.NextDueDate.Equal(date(2025, time.February, 28)),
		"next due date advances from the run date with month-end clamping, got %s", updated.NextDueDate)
	require.NotNil(t, updated.LastDonationId)

	donation := store.donations[*updated.LastDonationId]
	require.NotNil(t, donation)
	assert.Equal(t, entity.PaymentStatusCompleted, donation.PaymentStatus)
	assert.Equal(t, &pledge.Id, donation.RecurringDonationId)
}

func TestProcessDueBatchHoldsScheduleOnFailure(t *testing.T) {
	store := newFakeStore()
	g := newFakeGateway("fake")
	g.chargeFn = func(req *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
		return nil, &gateway.GatewayError{Code: "card_declined", Message: "declined"}
	}
	svc, _ := newRecurringServiceUnderTest(store, g)

	member := seedMember(store)
	now := date(2025, time.June, 1)
	pledge := seedDuePledge(store, member.Id, 2500, now)

	summary, err := svc.ProcessDueBatch(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	updated := store.pledges[pledge.Id]
	assert.True(t, updated.NextDueDate.Equal(now), "a failed charge must not advance the schedule")
	assert.True(t, updated.IsActive)
}

func TestProcessDueBatchIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	g := newFakeGateway("fake")
	// Amount 6660 marks the poisoned pledge: its charge panics.
	g.chargeFn = func(req *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
		if req.AmountCents == 6660 {
			panic("processor client bug")
		}
		return &gateway.ChargeResult{
			TransactionId: "txn-" + req.OrderId,
			Status:        gateway.ChargeStatusSucceeded,
			Raw:           []byte(`{}`),
		}, nil
	}
	svc, _ := newRecurringServiceUnderTest(store, g)

	member := seedMember(store)
	now := date(2025, time.June, 1)
	for i := 0; i < 9; i++ {
		seedDuePledge(store, member.Id, 1000, now)
	}
	seedDuePledge(store, member.Id, 6660, now)

	summary, err := svc.ProcessDueBatch(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Total)
	assert.Equal(t, 9, summary.Success, "one poisoned pledge must not sink the batch")
	assert.Equal(t, 1, summary.Failed)
}

func TestProcessDueBatchDeactivatesExpired(t *testing.T) {
	store := newFakeStore()
	g := newFakeGateway("fake")
	svc, _ := newRecurringServiceUnderTest(store, g)

	member := seedMember(store)
	now := date(2025, time.June, 1)
	pledge := seedDuePledge(store, member.Id, 2500, now)

	// DuePledges filters expired pledges out at query time; the in-run
	// guard covers a pledge expiring between select and charge.
	outcome := svc.processSafely(context.Background(), func() *entity.RecurringDonation {
		p := *pledge
		end := now.AddDate(0, 0, -1)
		p.EndDate = &end
		return &p
	}(), now)

	assert.Equal(t, OutcomeSkipped, outcome.Status)
	assert.Equal(t, "expired", outcome.Reason)
	assert.False(t, store.pledges[pledge.Id].IsActive, "expired pledge is deactivated")
	assert.Equal(t, 0, g.charges())
}

func TestCancelIsBestEffortAtProcessor(t *testing.T) {
	store := newFakeStore()
	g := newFakeGateway("fake")
	g.cancelErr = &gateway.GatewayError{Transient: true, Code: "504", Message: "timeout"}
	svc, pub := newRecurringServiceUnderTest(store, g)

	member := seedMember(store)
	pledge := seedDuePledge(store, member.Id, 2500, date(2025, time.June, 1))
	subId := "sub-1"
	pledge.GatewaySubscriptionId = &subId

	require.NoError(t, svc.Cancel(context.Background(), pledge.Id, "moving away"))

	updated := store.pledges[pledge.Id]
	assert.False(t, updated.IsActive, "local deactivation wins even when the processor call fails")
	assert.Contains(t, updated.Notes, "moving away")
	assert.Contains(t, updated.Notes, "processor cancel failed")
	assert.Equal(t, []string{"sub-1"}, g.canceled)
	assert.Contains(t, pub.typesSeen(), "PLEDGE_CANCELED")
}

func TestCancelTwiceIsIdempotent(t *testing.T) {
	store := newFakeStore()
	g := newFakeGateway("fake")
	svc, _ := newRecurringServiceUnderTest(store, g)

	member := seedMember(store)
	pledge := seedDuePledge(store, member.Id, 2500, date(2025, time.June, 1))

	require.NoError(t, svc.Cancel(context.Background(), pledge.Id, "first"))
	notesAfterFirst := store.pledges[pledge.Id].Notes

	require.NoError(t, svc.Cancel(context.Background(), pledge.Id, "second"))
	assert.Equal(t, notesAfterFirst, store.pledges[pledge.Id].Notes)
}

func TestUpdateFrequencyRestartsCadence(t *testing.T) {
	store := newFakeStore()
	g := newFakeGateway("fake")
	svc, _ := newRecurringServiceUnderTest(store, g)

	member := seedMember(store)
	pledge := seedDuePledge(store, member.Id, 2500, date(2030, time.June, 1))

	weekly := string(entity.FrequencyWeekly)
	updated, err := svc.Update(context.Background(), pledge.Id, &dto.UpdateRecurringDonationRequest{Frequency: &weekly})
	require.NoError(t, err)

	assert.Equal(t, entity.FrequencyWeekly, updated.Frequency)
	wantAround := time.Now().AddDate(0, 0, 7)
	assert.WithinDuration(t, wantAround, updated.NextDueDate, time.Minute)
}
