package scheduler

import (
	"stewardship-be/internal/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

// Job is one scheduled unit of work.
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager owns the gocron scheduler and the registered giving jobs.
type Manager struct {
	scheduler gocron.Scheduler
	log       logger.ILogger
}

func NewManager(log logger.ILogger) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{
		scheduler: s,
		log:       log,
	}, nil
}

// Register adds a job. Singleton mode keeps a slow run from overlapping
// with the next tick.
func (m *Manager) Register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		m.log.Error("Scheduler", "Failed to register job", map[string]interface{}{
			"job":   job.GetName(),
			"error": err.Error(),
		})
		return
	}
	m.log.Info("Scheduler", "Job registered", map[string]interface{}{
		"job": job.GetName(),
	})
}

func (m *Manager) Start() {
	m.scheduler.Start()
	m.log.Info("Scheduler", "Scheduler started", nil)
}

func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		m.log.Error("Scheduler", "Failed to shutdown scheduler", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
