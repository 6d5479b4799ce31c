package scheduler

import (
	"context"
	"errors"
	"time"

	"stewardship-be/internal/pkg/logger"
	"stewardship-be/internal/repository/specification"
	"stewardship-be/internal/repository/unitofwork"
	"stewardship-be/internal/service"

	"github.com/go-co-op/gocron/v2"
)

// ReceiptReconcileJob sweeps completed member donations that missed
// receipt issuance (a crash between commit and the post-commit hook)
// and issues the receipt they are owed.
type ReceiptReconcileJob struct {
	uowFactory unitofwork.RepositoryFactory
	receipts   service.ITaxReceiptService
	log        logger.ILogger
	cron       string
}

func NewReceiptReconcileJob(
	uowFactory unitofwork.RepositoryFactory,
	receipts service.ITaxReceiptService,
	log logger.ILogger,
	cron string,
) *ReceiptReconcileJob {
	return &ReceiptReconcileJob{
		uowFactory: uowFactory,
		receipts:   receipts,
		log:        log,
		cron:       cron,
	}
}

func (j *ReceiptReconcileJob) GetName() string {
	return "receipt_reconcile"
}

func (j *ReceiptReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.CronJob(j.cron, false)
}

func (j *ReceiptReconcileJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	uow := j.uowFactory.NewUnitOfWork(ctx)
	donations, err := uow.DonationRepository().FindAll(ctx,
		specification.Filter("payment_status", "completed"),
		specification.IsNull{Field: "tax_receipt_id"},
		specification.IsNull{Field: "annual_receipt_id"},
		specification.OrderBy{Field: "donation_date", Desc: false},
		specification.Pagination{Limit: 500, Offset: 0},
	)
	if err != nil {
		j.log.Error("ReceiptReconcileJob", "Failed to list unreceipted donations", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	issued := 0
	for _, donation := range donations {
		if donation.MemberId == nil {
			// Anonymous gifts never get receipts.
			continue
		}
		if _, err := j.receipts.IssueForDonation(ctx, donation.Id); err != nil {
			if errors.Is(err, service.ErrIneligibleForReceipt) {
				continue
			}
			j.log.Error("ReceiptReconcileJob", "Failed to issue receipt", map[string]interface{}{
				"donation_id": donation.Id.String(),
				"error":       err.Error(),
			})
			continue
		}
		issued++
	}

	j.log.Info("ReceiptReconcileJob", "Reconcile run finished", map[string]interface{}{
		"scanned": len(donations),
		"issued":  issued,
	})
}
