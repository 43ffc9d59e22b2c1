package model

import (
	"time"
)

// StakeRecordModel mirrors one stake of the staking ledger. StakeIndex is
// the position in the investor's stake sequence.
type StakeRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId  uint64    `json:"project_id" gorm:"index;not null"`
	Investor   string    `json:"investor" gorm:"uniqueIndex:idx_stake_record_owner;not null"`
	StakeIndex uint64    `json:"stake_index" gorm:"uniqueIndex:idx_stake_record_owner"`
	Amount     string    `json:"amount" gorm:"type:varchar(80);not null"`
	StakedAt   time.Time `json:"staked_at"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	Claimed    bool      `json:"claimed" gorm:"default:false"`
}

func (StakeRecordModel) TableName() string {
	return "stake_record"
}
