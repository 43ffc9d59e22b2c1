package model

import (
	"time"
)

// ShareHoldingModel is the current share balance of one holder in one
// project, maintained by the event projection.
type ShareHoldingModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId uint64 `json:"project_id" gorm:"uniqueIndex:idx_share_holding;not null"`
	Holder    string `json:"holder" gorm:"uniqueIndex:idx_share_holding;not null"`
	Shares    uint64 `json:"shares"`
}

func (ShareHoldingModel) TableName() string {
	return "share_holding"
}
