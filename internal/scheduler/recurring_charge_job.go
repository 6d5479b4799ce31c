package scheduler

import (
	"context"
	"time"

	"stewardship-be/internal/pkg/logger"
	"stewardship-be/internal/service"

	"github.com/go-co-op/gocron/v2"
)

// RecurringChargeJob charges every pledge whose next due date has
// arrived. One run per tick; pledges are isolated inside the batch.
type RecurringChargeJob struct {
	pledges service.IRecurringDonationService
	log     logger.ILogger
	cron    string
}

func NewRecurringChargeJob(pledges service.IRecurringDonationService, log logger.ILogger, cron string) *RecurringChargeJob {
	return &RecurringChargeJob{
		pledges: pledges,
		log:     log,
		cron:    cron,
	}
}

func (j *RecurringChargeJob) GetName() string {
	return "recurring_charge"
}

func (j *RecurringChargeJob) GetSchedule() gocron.JobDefinition {
	return gocron.CronJob(j.cron, false)
}

func (j *RecurringChargeJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	summary, err := j.pledges.ProcessDueBatch(ctx, time.Now())
	if err != nil {
		j.log.Error("RecurringChargeJob", "Batch run failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	j.log.Info("RecurringChargeJob", "Batch run finished", map[string]interface{}{
		"total":   summary.Total,
		"success": summary.Success,
		"failed":  summary.Failed,
		"skipped": summary.Skipped,
	})
}
