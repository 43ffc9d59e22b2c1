package model

import (
	"time"
)

// EventModel is one persisted ledger feed entry. Seq is the feed sequence
// number and doubles as the projection cursor.
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Seq        uint64    `json:"seq" gorm:"uniqueIndex;not null"`
	ProjectId  uint64    `json:"project_id" gorm:"index"`
	EventType  string    `json:"event_type" gorm:"not null"`
	TxHash     string    `json:"tx_hash" gorm:"not null"`
	Data       string    `json:"data" gorm:"type:text"`
	OccurredAt time.Time `json:"occurred_at"`
	Processed  bool      `json:"processed" gorm:"default:false"`
}

func (EventModel) TableName() string {
	return "event"
}
