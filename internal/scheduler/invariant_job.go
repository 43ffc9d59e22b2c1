package scheduler

import (
	"time"

	"github.com/blues/sfs/internal/config"
	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// InvariantJob periodically verifies the ledger's accounting invariants:
// supply conservation and the per-project share cap.
type InvariantJob struct {
	engine *ledger.Engine
	config *config.Config
}

func NewInvariantJob(engine *ledger.Engine, cfg *config.Config) *InvariantJob {
	return &InvariantJob{
		engine: engine,
		config: cfg,
	}
}

func (j *InvariantJob) GetName() string {
	return "ledger_invariant_checker"
}

func (j *InvariantJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.InvariantInterval) * time.Second)
}

func (j *InvariantJob) Execute() {
	if err := j.engine.CheckInvariants(); err != nil {
		logger.Error("LEDGER INVARIANT VIOLATION: %v", err)
		return
	}
	logger.Debug("Ledger invariants verified, %d projects, supply %s",
		j.engine.ProjectCount(), j.engine.TotalSupply().String())
}
