package service

import (
	"context"
	"fmt"
	"sync"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/gateway"
	"stewardship-be/internal/pkg/render"
	"stewardship-be/internal/repository/contract"
	"stewardship-be/internal/repository/specification"
	"stewardship-be/internal/repository/unitofwork"
	"stewardship-be/pkg/events"

	"github.com/google/uuid"
)

// In-memory doubles for the repository layer. Specifications are
// interpreted by type so service logic runs against real query intent.

type fakeStore struct {
	mu           sync.Mutex
	donations    map[uuid.UUID]*entity.Donation
	pledges      map[uuid.UUID]*entity.RecurringDonation
	transactions []*entity.PaymentTransaction
	receipts     map[uuid.UUID]*entity.TaxReceipt
	members      map[uuid.UUID]*entity.Member
	designations map[uuid.UUID]*entity.Designation
	sequences    map[string]int
	lockedReads  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		donations:    make(map[uuid.UUID]*entity.Donation),
		pledges:      make(map[uuid.UUID]*entity.RecurringDonation),
		receipts:     make(map[uuid.UUID]*entity.TaxReceipt),
		members:      make(map[uuid.UUID]*entity.Member),
		designations: make(map[uuid.UUID]*entity.Designation),
		sequences:    make(map[string]int),
	}
}

type fakeFactory struct{ store *fakeStore }

func newFakeFactory(store *fakeStore) unitofwork.RepositoryFactory {
	return &fakeFactory{store: store}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

type fakeUnitOfWork struct{ store *fakeStore }

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) DonationRepository() contract.DonationRepository {
	return &fakeDonationRepo{store: u.store}
}
func (u *fakeUnitOfWork) RecurringDonationRepository() contract.RecurringDonationRepository {
	return &fakePledgeRepo{store: u.store}
}
func (u *fakeUnitOfWork) PaymentTransactionRepository() contract.PaymentTransactionRepository {
	return &fakeTransactionRepo{store: u.store}
}
func (u *fakeUnitOfWork) TaxReceiptRepository() contract.TaxReceiptRepository {
	return &fakeReceiptRepo{store: u.store}
}
func (u *fakeUnitOfWork) ReceiptSequenceRepository() contract.ReceiptSequenceRepository {
	return &fakeSequenceRepo{store: u.store}
}
func (u *fakeUnitOfWork) MemberRepository() contract.MemberRepository {
	return &fakeMemberRepo{store: u.store}
}
func (u *fakeUnitOfWork) DesignationRepository() contract.DesignationRepository {
	return &fakeDesignationRepo{store: u.store}
}

// Donations

type fakeDonationRepo struct{ store *fakeStore }

func (r *fakeDonationRepo) Create(ctx context.Context, d *entity.Donation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *d
	r.store.donations[d.Id] = &c
	return nil
}

func (r *fakeDonationRepo) Update(ctx context.Context, d *entity.Donation) error {
	return r.Create(ctx, d)
}

func (r *fakeDonationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Donation, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeDonationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Donation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, spec := range specs {
		if _, ok := spec.(specification.ForUpdate); ok {
			r.store.lockedReads++
		}
	}
	var out []*entity.Donation
	for _, d := range r.store.donations {
		if matchDonation(d, specs) {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeDonationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchDonation(d *entity.Donation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if d.Id != s.ID {
				return false
			}
		case specification.ByGatewayTransactionId:
			if d.GatewayTransactionId == nil || *d.GatewayTransactionId != s.TransactionId {
				return false
			}
		case specification.CompletedInYear:
			if d.PaymentStatus != entity.PaymentStatusCompleted || d.DonationDate.Year() != s.Year {
				return false
			}
		case specification.MemberOwnedBy:
			if d.MemberId == nil || *d.MemberId != s.MemberID {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "payment_status":
				if string(d.PaymentStatus) != s.Value.(string) {
					return false
				}
			case "annual_receipt_id":
				id := s.Value.(uuid.UUID)
				if d.AnnualReceiptId == nil || *d.AnnualReceiptId != id {
					return false
				}
			}
		case specification.IsNull:
			switch s.Field {
			case "tax_receipt_id":
				if d.TaxReceiptId != nil {
					return false
				}
			case "annual_receipt_id":
				if d.AnnualReceiptId != nil {
					return false
				}
			}
		}
	}
	return true
}

// Pledges

type fakePledgeRepo struct{ store *fakeStore }

func (r *fakePledgeRepo) Create(ctx context.Context, p *entity.RecurringDonation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *p
	r.store.pledges[p.Id] = &c
	return nil
}

func (r *fakePledgeRepo) Update(ctx context.Context, p *entity.RecurringDonation) error {
	return r.Create(ctx, p)
}

func (r *fakePledgeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RecurringDonation, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakePledgeRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RecurringDonation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.RecurringDonation
	for _, p := range r.store.pledges {
		if matchPledge(p, specs) {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func matchPledge(p *entity.RecurringDonation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if p.Id != s.ID {
				return false
			}
		case specification.MemberOwnedBy:
			if p.MemberId != s.MemberID {
				return false
			}
		case specification.DuePledges:
			if !p.IsActive || p.NextDueDate.After(s.Now) {
				return false
			}
			if p.EndDate != nil && p.EndDate.Before(s.Now) {
				return false
			}
		}
	}
	return true
}

// Payment transactions

type fakeTransactionRepo struct{ store *fakeStore }

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *entity.PaymentTransaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *tx
	r.store.transactions = append(r.store.transactions, &c)
	return nil
}

func (r *fakeTransactionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentTransaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.PaymentTransaction
	for _, tx := range r.store.transactions {
		if matchTransaction(tx, specs) {
			c := *tx
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchTransaction(tx *entity.PaymentTransaction, specs []specification.Specification) bool {
	for _, spec := range specs {
		if s, ok := spec.(specification.FilterBy); ok {
			switch s.Field {
			case "donation_id":
				if tx.DonationId != s.Value.(uuid.UUID) {
					return false
				}
			case "type":
				if string(tx.Type) != s.Value.(string) {
					return false
				}
			}
		}
	}
	return true
}

// Receipts

type fakeReceiptRepo struct{ store *fakeStore }

func (r *fakeReceiptRepo) Create(ctx context.Context, receipt *entity.TaxReceipt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *receipt
	r.store.receipts[receipt.Id] = &c
	return nil
}

func (r *fakeReceiptRepo) Update(ctx context.Context, receipt *entity.TaxReceipt) error {
	return r.Create(ctx, receipt)
}

func (r *fakeReceiptRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TaxReceipt, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeReceiptRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TaxReceipt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.TaxReceipt
	for _, receipt := range r.store.receipts {
		if matchReceipt(receipt, specs) {
			c := *receipt
			out = append(out, &c)
		}
	}
	return out, nil
}

func matchReceipt(receipt *entity.TaxReceipt, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if receipt.Id != s.ID {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "member_id":
				if receipt.MemberId != s.Value.(uuid.UUID) {
					return false
				}
			case "tax_year":
				if receipt.TaxYear != s.Value.(int) {
					return false
				}
			case "is_annual":
				if receipt.IsAnnual != s.Value.(bool) {
					return false
				}
			}
		}
	}
	return true
}

// Receipt sequences

type fakeSequenceRepo struct{ store *fakeStore }

func (r *fakeSequenceRepo) NextNumber(ctx context.Context, taxYear int, partition entity.ReceiptPartition) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := fmt.Sprintf("%s-%d", partition, taxYear)
	r.store.sequences[key]++
	return r.store.sequences[key], nil
}

// Members and designations

type fakeMemberRepo struct{ store *fakeStore }

func (r *fakeMemberRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Member, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.members {
		ok := true
		for _, spec := range specs {
			if s, is := spec.(specification.ByID); is && m.Id != s.ID {
				ok = false
			}
		}
		if ok {
			c := *m
			return &c, nil
		}
	}
	return nil, nil
}

type fakeDesignationRepo struct{ store *fakeStore }

func (r *fakeDesignationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Designation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.designations {
		ok := true
		for _, spec := range specs {
			if s, is := spec.(specification.ByID); is && d.Id != s.ID {
				ok = false
			}
		}
		if ok {
			c := *d
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeDesignationRepo) IncrementRaised(ctx context.Context, id uuid.UUID, amountCents int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if d, ok := r.store.designations[id]; ok {
		d.RaisedCents += amountCents
	}
	return nil
}

// Collaborator doubles

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fakeRenderer struct {
	mu     sync.Mutex
	stored map[string]int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{stored: make(map[string]int)}
}

func (r *fakeRenderer) Store(receiptId string, doc *render.ReceiptDocument) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[receiptId]++
	return "receipts/" + receiptId + ".html", nil
}

type fakeGateway struct {
	mu          sync.Mutex
	name        string
	chargeFn    func(*gateway.ChargeRequest) (*gateway.ChargeResult, error)
	refundFn    func(string, int64, string) (*gateway.RefundResult, error)
	verifyOK    bool
	parsed      *gateway.CallbackEvent
	cancelErr   error
	chargeCalls int
	canceled    []string
}

func newFakeGateway(name string) *fakeGateway {
	return &fakeGateway{name: name, verifyOK: true}
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Charge(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	g.mu.Lock()
	g.chargeCalls++
	fn := g.chargeFn
	g.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return &gateway.ChargeResult{
		TransactionId: "txn-" + req.OrderId,
		Status:        gateway.ChargeStatusSucceeded,
		Raw:           []byte(`{}`),
	}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, transactionId string, amountCents int64, reason string) (*gateway.RefundResult, error) {
	if g.refundFn != nil {
		return g.refundFn(transactionId, amountCents, reason)
	}
	return &gateway.RefundResult{RefundId: "rf-" + transactionId, Status: "succeeded", Raw: []byte(`{}`)}, nil
}

func (g *fakeGateway) VerifyCallback(rawPayload []byte, signatureHeader string) bool {
	return g.verifyOK
}

func (g *fakeGateway) ParseCallback(rawPayload []byte) (*gateway.CallbackEvent, error) {
	return g.parsed, nil
}

func (g *fakeGateway) FetchStatus(ctx context.Context, transactionId string) (*gateway.StatusSnapshot, error) {
	return &gateway.StatusSnapshot{TransactionId: transactionId, Status: gateway.ChargeStatusSucceeded}, nil
}

func (g *fakeGateway) CancelSubscription(ctx context.Context, subscriptionId string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.canceled = append(g.canceled, subscriptionId)
	return g.cancelErr
}

func (g *fakeGateway) charges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chargeCalls
}
