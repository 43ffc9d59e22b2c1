package logic

import (
	"errors"

	"github.com/blues/sfs/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RefundRecordLogic maintains and queries refund payout records.
type RefundRecordLogic struct {
	db *gorm.DB
}

func NewRefundRecordLogic(db *gorm.DB) *RefundRecordLogic {
	return &RefundRecordLogic{db: db}
}

// CreateRefundRecord stores one refund payout, keyed by the feed tx hash.
func (r *RefundRecordLogic) CreateRefundRecord(record *model.RefundRecordModel) error {
	if record.Investor == "" {
		return errors.New("investor address must not be empty")
	}
	if record.Amount == "" {
		return errors.New("amount must not be empty")
	}
	if record.TxHash == "" {
		return errors.New("tx hash must not be empty")
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_hash"}},
		DoNothing: true,
	}).Create(record).Error
}

// GetProjectRefundRecords lists refunds of one project, newest first.
func (r *RefundRecordLogic) GetProjectRefundRecords(projectId uint64, page, pageSize int) ([]model.RefundRecordModel, int64, error) {
	var records []model.RefundRecordModel
	var total int64

	if err := r.db.Model(&model.RefundRecordModel{}).Where("project_id = ?", projectId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := r.db.Where("project_id = ?", projectId).
		Offset(offset).
		Limit(pageSize).
		Order("refunded_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetInvestorRefundRecords lists refunds received by one address.
func (r *RefundRecordLogic) GetInvestorRefundRecords(investor string, page, pageSize int) ([]model.RefundRecordModel, int64, error) {
	var records []model.RefundRecordModel
	var total int64

	if err := r.db.Model(&model.RefundRecordModel{}).Where("investor = ?", investor).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := r.db.Where("investor = ?", investor).
		Offset(offset).
		Limit(pageSize).
		Order("refunded_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
