package logic

import (
	"errors"
	"fmt"

	"github.com/blues/sfs/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventLogic persists ledger feed entries and tracks the projection
// cursor.
type EventLogic struct {
	db *gorm.DB
}

func NewEventLogic(db *gorm.DB) *EventLogic {
	return &EventLogic{db: db}
}

// CreateEvent stores one feed entry. Entries are keyed by Seq, so storing
// the same event twice is a no-op.
func (e *EventLogic) CreateEvent(event *model.EventModel) error {
	if err := e.validateEvent(event); err != nil {
		return err
	}
	if err := e.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seq"}},
		DoNothing: true,
	}).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event record: %w", err)
	}
	return nil
}

// GetLastSeq returns the highest persisted feed sequence number, zero when
// the table is empty. This is the projection resume point.
func (e *EventLogic) GetLastSeq() (uint64, error) {
	var lastEvent model.EventModel
	err := e.db.Order("seq DESC").First(&lastEvent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to fetch last event seq: %w", err)
	}
	return lastEvent.Seq, nil
}

// UpdateEventProcessed flips the processed flag of one entry.
func (e *EventLogic) UpdateEventProcessed(seq uint64, processed bool) error {
	if err := e.db.Model(&model.EventModel{}).Where("seq = ?", seq).Update("processed", processed).Error; err != nil {
		return fmt.Errorf("failed to update event processed state: %w", err)
	}
	return nil
}

// GetEvents lists persisted events with optional project and type filters.
func (e *EventLogic) GetEvents(projectId uint64, eventType string, page, pageSize int) ([]model.EventModel, int64, error) {
	var events []model.EventModel
	var total int64

	query := e.db.Model(&model.EventModel{})
	if projectId > 0 {
		query = query.Where("project_id = ?", projectId)
	}
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("seq ASC").Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, total, nil
}

// GetUnprocessedEvents returns entries not yet applied to the read models,
// oldest first.
func (e *EventLogic) GetUnprocessedEvents(limit int) ([]model.EventModel, error) {
	var events []model.EventModel
	if err := e.db.Where("processed = ?", false).
		Order("seq ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list unprocessed events: %w", err)
	}
	return events, nil
}

// GetEventStatistics aggregates processed and pending counts.
func (e *EventLogic) GetEventStatistics(projectId uint64) (map[string]interface{}, error) {
	query := func() *gorm.DB {
		q := e.db.Model(&model.EventModel{})
		if projectId > 0 {
			q = q.Where("project_id = ?", projectId)
		}
		return q
	}

	var totalEvents int64
	if err := query().Count(&totalEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	var processedEvents int64
	if err := query().Where("processed = ?", true).Count(&processedEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count processed events: %w", err)
	}

	return map[string]interface{}{
		"total_events":     totalEvents,
		"processed_events": processedEvents,
		"pending_events":   totalEvents - processedEvents,
	}, nil
}

func (e *EventLogic) validateEvent(event *model.EventModel) error {
	if event.Seq == 0 {
		return errors.New("event seq must not be zero")
	}
	if event.EventType == "" {
		return errors.New("event type must not be empty")
	}
	if event.TxHash == "" {
		return errors.New("event tx hash must not be empty")
	}
	return nil
}
