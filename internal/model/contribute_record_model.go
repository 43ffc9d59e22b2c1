package model

import (
	"time"
)

// ContributeRecordModel is one investment into a project. Amount is a
// decimal string in 18-decimal base units.
type ContributeRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId     uint64    `json:"project_id" gorm:"index;not null"`
	Investor      string    `json:"investor" gorm:"index;not null"`
	Amount        string    `json:"amount" gorm:"type:varchar(80);not null"`
	Shares        uint64    `json:"shares"`
	TxHash        string    `json:"tx_hash" gorm:"uniqueIndex"`
	ContributedAt time.Time `json:"contributed_at"`
}

func (ContributeRecordModel) TableName() string {
	return "contribute_record"
}
