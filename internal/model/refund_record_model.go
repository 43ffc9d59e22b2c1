package model

import (
	"time"
)

// RefundRecordModel is one post-completion payout of an investor's slice
// of a project's funding pool.
type RefundRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId  uint64    `json:"project_id" gorm:"index;not null"`
	Investor   string    `json:"investor" gorm:"index;not null"`
	Amount     string    `json:"amount" gorm:"type:varchar(80);not null"`
	Shares     uint64    `json:"shares"`
	TxHash     string    `json:"tx_hash" gorm:"uniqueIndex"`
	RefundedAt time.Time `json:"refunded_at"`
}

func (RefundRecordModel) TableName() string {
	return "refund_record"
}
