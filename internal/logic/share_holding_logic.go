package logic

import (
	"errors"
	"fmt"

	"github.com/blues/sfs/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShareHoldingLogic maintains the current share balance per holder and
// project.
type ShareHoldingLogic struct {
	db *gorm.DB
}

func NewShareHoldingLogic(db *gorm.DB) *ShareHoldingLogic {
	return &ShareHoldingLogic{db: db}
}

// SetShares upserts the holder's balance to an absolute value.
func (s *ShareHoldingLogic) SetShares(projectId uint64, holder string, shares uint64) error {
	if holder == "" {
		return errors.New("holder address must not be empty")
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "holder"}},
		DoUpdates: clause.AssignmentColumns([]string{"shares", "updated_at"}),
	}).Create(&model.ShareHoldingModel{
		ProjectId: projectId,
		Holder:    holder,
		Shares:    shares,
	}).Error
}

// AddShares increases the holder's balance, creating the row if needed.
func (s *ShareHoldingLogic) AddShares(projectId uint64, holder string, shares uint64) error {
	holding, err := s.GetHolding(projectId, holder)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		return s.SetShares(projectId, holder, shares)
	}
	return s.SetShares(projectId, holder, holding.Shares+shares)
}

// SubShares decreases the holder's balance, flooring at zero.
func (s *ShareHoldingLogic) SubShares(projectId uint64, holder string, shares uint64) error {
	holding, err := s.GetHolding(projectId, holder)
	if err != nil {
		return err
	}
	remaining := uint64(0)
	if holding.Shares > shares {
		remaining = holding.Shares - shares
	}
	return s.SetShares(projectId, holder, remaining)
}

// GetHolding fetches one holder's balance.
func (s *ShareHoldingLogic) GetHolding(projectId uint64, holder string) (*model.ShareHoldingModel, error) {
	var holding model.ShareHoldingModel
	if err := s.db.Where("project_id = ? AND holder = ?", projectId, holder).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch share holding: %w", err)
	}
	return &holding, nil
}

// GetProjectHoldings lists all non-zero holders of a project, largest
// first.
func (s *ShareHoldingLogic) GetProjectHoldings(projectId uint64) ([]model.ShareHoldingModel, error) {
	var holdings []model.ShareHoldingModel
	if err := s.db.Where("project_id = ? AND shares > 0", projectId).
		Order("shares DESC").
		Find(&holdings).Error; err != nil {
		return nil, fmt.Errorf("failed to list share holdings: %w", err)
	}
	return holdings, nil
}
