package model

import (
	"time"
)

// ProjectModel is the query-side projection of a funding project. Token
// amounts are stored as decimal strings in 18-decimal base units.
type ProjectModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LedgerId uint64 `json:"ledger_id" gorm:"uniqueIndex;not null"`

	Title        string `json:"title" gorm:"not null"`
	Description  string `json:"description" gorm:"type:text"`
	CopyrightURI string `json:"copyright_uri"`
	TokenURI     string `json:"token_uri"`

	FundingGoal    string `json:"funding_goal" gorm:"type:varchar(80);not null"`
	CurrentFunding string `json:"current_funding" gorm:"type:varchar(80);default:'0'"`
	DurationDays   uint64 `json:"duration_days"`

	StartTime   time.Time  `json:"start_time"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Producer string        `json:"producer" gorm:"index;not null"`
	Status   ProjectStatus `json:"status" gorm:"default:'waiting_for_funds'"`
}

// ProjectStatus mirrors the ledger lifecycle states.
type ProjectStatus string

const (
	ProjectStatusWaitingForFunds ProjectStatus = "waiting_for_funds"
	ProjectStatusInProduction    ProjectStatus = "in_production"
	ProjectStatusCompleted       ProjectStatus = "completed"
)

func (ProjectModel) TableName() string {
	return "project"
}
