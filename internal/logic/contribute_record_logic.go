package logic

import (
	"errors"
	"fmt"

	"github.com/blues/sfs/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContributeRecordLogic maintains and queries investment records.
type ContributeRecordLogic struct {
	db *gorm.DB
}

func NewContributeRecordLogic(db *gorm.DB) *ContributeRecordLogic {
	return &ContributeRecordLogic{db: db}
}

// CreateContributeRecord stores one investment. Records are keyed by the
// feed tx hash, so replaying the same event is a no-op.
func (c *ContributeRecordLogic) CreateContributeRecord(record *model.ContributeRecordModel) error {
	if err := c.validateContributeRecord(record); err != nil {
		return err
	}
	return c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_hash"}},
		DoNothing: true,
	}).Create(record).Error
}

// GetProjectContributeRecords lists investments of one project, newest
// first.
func (c *ContributeRecordLogic) GetProjectContributeRecords(projectId uint64, page, pageSize int) ([]model.ContributeRecordModel, int64, error) {
	var records []model.ContributeRecordModel
	var total int64

	if err := c.db.Model(&model.ContributeRecordModel{}).Where("project_id = ?", projectId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := c.db.Where("project_id = ?", projectId).
		Offset(offset).
		Limit(pageSize).
		Order("contributed_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetInvestorContributeRecords lists investments made by one address.
func (c *ContributeRecordLogic) GetInvestorContributeRecords(investor string, page, pageSize int) ([]model.ContributeRecordModel, int64, error) {
	var records []model.ContributeRecordModel
	var total int64

	if err := c.db.Model(&model.ContributeRecordModel{}).Where("investor = ?", investor).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := c.db.Where("investor = ?", investor).
		Offset(offset).
		Limit(pageSize).
		Order("contributed_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetContributeStats aggregates investment counts for one project.
func (c *ContributeRecordLogic) GetContributeStats(projectId uint64) (map[string]interface{}, error) {
	var totalContributions int64
	if err := c.db.Model(&model.ContributeRecordModel{}).Where("project_id = ?", projectId).Count(&totalContributions).Error; err != nil {
		return nil, fmt.Errorf("failed to count contributions: %w", err)
	}

	var uniqueInvestors int64
	if err := c.db.Model(&model.ContributeRecordModel{}).
		Where("project_id = ?", projectId).
		Distinct("investor").
		Count(&uniqueInvestors).Error; err != nil {
		return nil, fmt.Errorf("failed to count unique investors: %w", err)
	}

	return map[string]interface{}{
		"total_contributions": totalContributions,
		"unique_investors":    uniqueInvestors,
	}, nil
}

func (c *ContributeRecordLogic) validateContributeRecord(record *model.ContributeRecordModel) error {
	if record.Investor == "" {
		return errors.New("investor address must not be empty")
	}
	if record.Amount == "" {
		return errors.New("amount must not be empty")
	}
	if record.TxHash == "" {
		return errors.New("tx hash must not be empty")
	}
	return nil
}
