package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/sfs/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// ProjectLogic maintains and queries the project read model.
type ProjectLogic struct {
	db *gorm.DB
}

func NewProjectLogic(db *gorm.DB) *ProjectLogic {
	return &ProjectLogic{db: db}
}

// UpsertProject inserts or refreshes a project row keyed by its ledger id.
func (p *ProjectLogic) UpsertProject(project *model.ProjectModel) error {
	if project.Title == "" {
		return errors.New("project title must not be empty")
	}
	if project.FundingGoal == "" {
		return errors.New("project funding goal must not be empty")
	}

	return p.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ledger_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "copyright_uri", "token_uri",
			"funding_goal", "current_funding", "duration_days",
			"start_time", "completed_at", "producer", "status", "updated_at",
		}),
	}).Create(project).Error
}

// UpdateFunding sets the cumulative funding of a project.
func (p *ProjectLogic) UpdateFunding(ledgerId uint64, currentFunding string) error {
	return p.db.Model(&model.ProjectModel{}).
		Where("ledger_id = ?", ledgerId).
		Update("current_funding", currentFunding).Error
}

// UpdateStatus sets the lifecycle status; completedAt may be nil.
func (p *ProjectLogic) UpdateStatus(ledgerId uint64, status model.ProjectStatus, completedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}
	return p.db.Model(&model.ProjectModel{}).
		Where("ledger_id = ?", ledgerId).
		Updates(updates).Error
}

// GetProject fetches one project by ledger id.
func (p *ProjectLogic) GetProject(ledgerId uint64) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := p.db.Where("ledger_id = ?", ledgerId).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	return &project, nil
}

// GetProjects lists projects with optional status and producer filters.
func (p *ProjectLogic) GetProjects(status, producer string, page, pageSize int) ([]model.ProjectModel, int64, error) {
	var projects []model.ProjectModel
	var total int64

	query := p.db.Model(&model.ProjectModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if producer != "" {
		query = query.Where("producer = ?", producer)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("ledger_id ASC").Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// GetProjectStats aggregates contribution and holder counts for a project.
func (p *ProjectLogic) GetProjectStats(ledgerId uint64) (map[string]interface{}, error) {
	project, err := p.GetProject(ledgerId)
	if err != nil {
		return nil, err
	}

	var contributionCount int64
	if err := p.db.Model(&model.ContributeRecordModel{}).
		Where("project_id = ?", ledgerId).
		Count(&contributionCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count contributions: %w", err)
	}

	var investorCount int64
	if err := p.db.Model(&model.ContributeRecordModel{}).
		Where("project_id = ?", ledgerId).
		Distinct("investor").
		Count(&investorCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count investors: %w", err)
	}

	var holderCount int64
	if err := p.db.Model(&model.ShareHoldingModel{}).
		Where("project_id = ? AND shares > 0", ledgerId).
		Count(&holderCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count holders: %w", err)
	}

	return map[string]interface{}{
		"project_id":         project.LedgerId,
		"status":             project.Status,
		"funding_goal":       project.FundingGoal,
		"current_funding":    project.CurrentFunding,
		"contribution_count": contributionCount,
		"investor_count":     investorCount,
		"holder_count":       holderCount,
	}, nil
}

// GetAllProjectStats aggregates counts across all projects.
func (p *ProjectLogic) GetAllProjectStats() (map[string]interface{}, error) {
	var totalProjects int64
	p.db.Model(&model.ProjectModel{}).Count(&totalProjects)

	var waitingProjects int64
	p.db.Model(&model.ProjectModel{}).
		Where("status = ?", model.ProjectStatusWaitingForFunds).
		Count(&waitingProjects)

	var inProductionProjects int64
	p.db.Model(&model.ProjectModel{}).
		Where("status = ?", model.ProjectStatusInProduction).
		Count(&inProductionProjects)

	var completedProjects int64
	p.db.Model(&model.ProjectModel{}).
		Where("status = ?", model.ProjectStatusCompleted).
		Count(&completedProjects)

	var totalInvestors int64
	p.db.Model(&model.ContributeRecordModel{}).
		Distinct("investor").
		Count(&totalInvestors)

	return map[string]interface{}{
		"total_projects":         totalProjects,
		"waiting_projects":       waitingProjects,
		"in_production_projects": inProductionProjects,
		"completed_projects":     completedProjects,
		"total_investors":        totalInvestors,
	}, nil
}
