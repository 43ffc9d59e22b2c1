package model

import (
	"time"
)

// RewardClaimModel is one reward payout, either a standalone claim or the
// reward part of an unstake.
type RewardClaimModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId  uint64    `json:"project_id" gorm:"index;not null"`
	Investor   string    `json:"investor" gorm:"index;not null"`
	StakeIndex uint64    `json:"stake_index"`
	Reward     string    `json:"reward" gorm:"type:varchar(80);not null"`
	Unstaked   bool      `json:"unstaked" gorm:"default:false"`
	TxHash     string    `json:"tx_hash" gorm:"uniqueIndex;not null"`
	ClaimedAt  time.Time `json:"claimed_at"`
}

func (RewardClaimModel) TableName() string {
	return "reward_claim"
}
