package scheduler

import (
	"math/big"
	"time"

	"github.com/blues/sfs/internal/config"
	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/blues/sfs/internal/logic"
	"github.com/blues/sfs/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// AccrualJob snapshots the reward accrual of completed projects and
// reconciles project rows that drifted from the engine, repairing read
// models the projection missed.
type AccrualJob struct {
	engine       *ledger.Engine
	projectLogic *logic.ProjectLogic
	stakeLogic   *logic.StakeRecordLogic
	config       *config.Config
}

func NewAccrualJob(engine *ledger.Engine, db *gorm.DB, cfg *config.Config) *AccrualJob {
	return &AccrualJob{
		engine:       engine,
		projectLogic: logic.NewProjectLogic(db),
		stakeLogic:   logic.NewStakeRecordLogic(db),
		config:       cfg,
	}
}

func (j *AccrualJob) GetName() string {
	return "reward_accrual_snapshot"
}

func (j *AccrualJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.AccrualInterval) * time.Second)
}

func (j *AccrualJob) Execute() {
	for _, project := range j.engine.ListProjects() {
		j.reconcileProject(project)

		if project.Status != ledger.StatusCompleted {
			continue
		}
		j.snapshotAccrual(project)
	}
}

// reconcileProject repairs status and funding drift between the engine
// and the read model.
func (j *AccrualJob) reconcileProject(project *ledger.Project) {
	row, err := j.projectLogic.GetProject(project.ID)
	if err != nil {
		// Not yet projected; the event monitor will catch up.
		return
	}

	engineStatus := toModelStatus(project.Status)
	if row.Status != engineStatus {
		logger.Warn("Project %d read model status %s lags engine status %s, repairing",
			project.ID, row.Status, engineStatus)
		var completedAt *time.Time
		if !project.CompletedAt.IsZero() {
			t := project.CompletedAt
			completedAt = &t
		}
		if err := j.projectLogic.UpdateStatus(project.ID, engineStatus, completedAt); err != nil {
			logger.Error("Failed to repair project %d status: %v", project.ID, err)
		}
	}

	if row.CurrentFunding != project.CurrentFunding.String() {
		if err := j.projectLogic.UpdateFunding(project.ID, project.CurrentFunding.String()); err != nil {
			logger.Error("Failed to repair project %d funding: %v", project.ID, err)
		}
	}
}

// snapshotAccrual logs the outstanding reward liability of one completed
// project.
func (j *AccrualJob) snapshotAccrual(project *ledger.Project) {
	stakes, err := j.stakeLogic.GetProjectStakes(project.ID, true)
	if err != nil {
		logger.Error("Failed to list stakes for project %d: %v", project.ID, err)
		return
	}

	total := new(big.Int)
	for _, stake := range stakes {
		if stake.Claimed {
			continue
		}
		reward, err := j.engine.CalculateRewards(common.HexToAddress(stake.Investor), stake.StakeIndex)
		if err != nil {
			continue
		}
		total.Add(total, reward)
	}

	if total.Sign() > 0 {
		logger.Info("Project %d outstanding reward accrual: %s", project.ID, total.String())
	}
}

func toModelStatus(s ledger.ProjectStatus) model.ProjectStatus {
	switch s {
	case ledger.StatusInProduction:
		return model.ProjectStatusInProduction
	case ledger.StatusCompleted:
		return model.ProjectStatusCompleted
	default:
		return model.ProjectStatusWaitingForFunds
	}
}
