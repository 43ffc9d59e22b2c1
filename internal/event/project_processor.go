package event

import (
	"time"

	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/blues/sfs/internal/logic"
	"github.com/blues/sfs/internal/model"
)

// ProjectProcessor projects creation and lifecycle events. It reads the
// authoritative project snapshot from the engine rather than trusting the
// event payload.
type ProjectProcessor struct {
	engine       *ledger.Engine
	projectLogic *logic.ProjectLogic
}

func NewProjectProcessor(engine *ledger.Engine, projectLogic *logic.ProjectLogic) *ProjectProcessor {
	return &ProjectProcessor{
		engine:       engine,
		projectLogic: projectLogic,
	}
}

func (p *ProjectProcessor) Process(ev ledger.Event) error {
	project, err := p.engine.GetProject(ev.ProjectID)
	if err != nil {
		return err
	}

	if err := p.projectLogic.UpsertProject(toProjectModel(project)); err != nil {
		logger.Error("Failed to upsert project %d: %v", ev.ProjectID, err)
		return err
	}

	logger.Info("Projected %s for project %d (status %s)", ev.Type, ev.ProjectID, project.Status)
	return nil
}

func toProjectModel(p *ledger.Project) *model.ProjectModel {
	var completedAt *time.Time
	if !p.CompletedAt.IsZero() {
		t := p.CompletedAt
		completedAt = &t
	}
	return &model.ProjectModel{
		LedgerId:       p.ID,
		Title:          p.Title,
		Description:    p.Description,
		CopyrightURI:   p.CopyrightURI,
		TokenURI:       p.TokenURI,
		FundingGoal:    p.FundingGoal.String(),
		CurrentFunding: p.CurrentFunding.String(),
		DurationDays:   p.DurationDays,
		StartTime:      p.StartTime,
		CompletedAt:    completedAt,
		Producer:       p.Producer.Hex(),
		Status:         toProjectStatus(p.Status),
	}
}

func toProjectStatus(s ledger.ProjectStatus) model.ProjectStatus {
	switch s {
	case ledger.StatusInProduction:
		return model.ProjectStatusInProduction
	case ledger.StatusCompleted:
		return model.ProjectStatusCompleted
	default:
		return model.ProjectStatusWaitingForFunds
	}
}
