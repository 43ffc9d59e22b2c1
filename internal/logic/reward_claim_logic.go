package logic

import (
	"errors"
	"fmt"

	"github.com/blues/sfs/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardClaimLogic maintains and queries reward payout records.
type RewardClaimLogic struct {
	db *gorm.DB
}

func NewRewardClaimLogic(db *gorm.DB) *RewardClaimLogic {
	return &RewardClaimLogic{db: db}
}

// CreateRewardClaim stores one reward payout, keyed by the feed tx hash.
func (r *RewardClaimLogic) CreateRewardClaim(record *model.RewardClaimModel) error {
	if record.Investor == "" {
		return errors.New("investor address must not be empty")
	}
	if record.Reward == "" {
		return errors.New("reward must not be empty")
	}
	if record.TxHash == "" {
		return errors.New("tx hash must not be empty")
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_hash"}},
		DoNothing: true,
	}).Create(record).Error
}

// GetInvestorRewardClaims lists payouts received by one address.
func (r *RewardClaimLogic) GetInvestorRewardClaims(investor string, page, pageSize int) ([]model.RewardClaimModel, int64, error) {
	var records []model.RewardClaimModel
	var total int64

	if err := r.db.Model(&model.RewardClaimModel{}).Where("investor = ?", investor).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := r.db.Where("investor = ?", investor).
		Offset(offset).
		Limit(pageSize).
		Order("claimed_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetProjectRewardClaims lists payouts tied to one project.
func (r *RewardClaimLogic) GetProjectRewardClaims(projectId uint64) ([]model.RewardClaimModel, error) {
	var records []model.RewardClaimModel
	if err := r.db.Where("project_id = ?", projectId).
		Order("claimed_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list reward claims: %w", err)
	}
	return records, nil
}
