package scheduler

import (
	"github.com/blues/sfs/internal/config"
	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Job is one scheduled maintenance task.
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager owns the cron scheduler and the registered jobs.
type Manager struct {
	scheduler gocron.Scheduler
	engine    *ledger.Engine
	db        *gorm.DB
	config    *config.Config
}

func NewManager(engine *ledger.Engine, db *gorm.DB, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		engine:    engine,
		db:        db,
		config:    cfg,
	}
}

// Start builds a manager, registers all jobs and launches the scheduler.
func Start(engine *ledger.Engine, db *gorm.DB, cfg *config.Config) *Manager {
	manager := NewManager(engine, db, cfg)
	manager.RegisterJobs()
	manager.scheduler.Start()

	logger.Info("Scheduler started")
	return manager
}

// RegisterJobs wires every maintenance job.
func (m *Manager) RegisterJobs() {
	m.register(NewInvariantJob(m.engine, m.config))
	m.register(NewAccrualJob(m.engine, m.db, m.config))
}

func (m *Manager) register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop shuts the scheduler down.
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Scheduler stopped")
}
