package logic

import (
	"errors"
	"fmt"

	"github.com/blues/sfs/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StakeRecordLogic mirrors the staking ledger's stake sequences.
type StakeRecordLogic struct {
	db *gorm.DB
}

func NewStakeRecordLogic(db *gorm.DB) *StakeRecordLogic {
	return &StakeRecordLogic{db: db}
}

// CreateStakeRecord stores one stake, keyed by (investor, stake_index) so
// replays are no-ops.
func (s *StakeRecordLogic) CreateStakeRecord(record *model.StakeRecordModel) error {
	if record.Investor == "" {
		return errors.New("investor address must not be empty")
	}
	if record.Amount == "" {
		return errors.New("amount must not be empty")
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "investor"}, {Name: "stake_index"}},
		DoNothing: true,
	}).Create(record).Error
}

// MarkClaimed flags a stake's reward as paid out.
func (s *StakeRecordLogic) MarkClaimed(investor string, stakeIndex uint64) error {
	return s.db.Model(&model.StakeRecordModel{}).
		Where("investor = ? AND stake_index = ?", investor, stakeIndex).
		Update("claimed", true).Error
}

// MarkUnstaked deactivates a stake and flags its reward as paid out.
func (s *StakeRecordLogic) MarkUnstaked(investor string, stakeIndex uint64) error {
	return s.db.Model(&model.StakeRecordModel{}).
		Where("investor = ? AND stake_index = ?", investor, stakeIndex).
		Updates(map[string]interface{}{"is_active": false, "claimed": true}).Error
}

// GetInvestorStakes lists one investor's stakes in index order.
func (s *StakeRecordLogic) GetInvestorStakes(investor string) ([]model.StakeRecordModel, error) {
	var records []model.StakeRecordModel
	if err := s.db.Where("investor = ?", investor).
		Order("stake_index ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list stakes: %w", err)
	}
	return records, nil
}

// GetProjectStakes lists all stakes referencing a project.
func (s *StakeRecordLogic) GetProjectStakes(projectId uint64, activeOnly bool) ([]model.StakeRecordModel, error) {
	query := s.db.Where("project_id = ?", projectId)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var records []model.StakeRecordModel
	if err := query.Order("staked_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list project stakes: %w", err)
	}
	return records, nil
}

// GetStakeRecord fetches one stake by its (investor, stake_index) key.
func (s *StakeRecordLogic) GetStakeRecord(investor string, stakeIndex uint64) (*model.StakeRecordModel, error) {
	var record model.StakeRecordModel
	if err := s.db.Where("investor = ? AND stake_index = ?", investor, stakeIndex).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch stake: %w", err)
	}
	return &record, nil
}
