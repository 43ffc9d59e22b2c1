package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/blues/sfs/internal/config"
	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/blues/sfs/internal/logic"
	"github.com/blues/sfs/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Monitor tails the ledger event feed and projects each entry into the
// read models. Entries of different projects are applied concurrently on
// the worker pool; entries of the same project stay in feed order.
type Monitor struct {
	engine     *ledger.Engine
	eventLogic *logic.EventLogic
	processors map[ledger.EventType]Processor
	pool       *ants.Pool
	interval   time.Duration
	batchSize  int
	lastSeq    uint64
	ctx        context.Context
	cancel     context.CancelFunc
}

// Processor applies one feed entry to the read models.
type Processor interface {
	Process(ev ledger.Event) error
}

func NewMonitor(engine *ledger.Engine, db *gorm.DB, cfg config.ProjectorConfig) (*Monitor, error) {
	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create projection pool: %w", err)
	}

	projectProcessor := NewProjectProcessor(engine, logic.NewProjectLogic(db))
	contributeProcessor := NewContributeProcessor(logic.NewContributeRecordLogic(db), logic.NewProjectLogic(db), logic.NewShareHoldingLogic(db))
	shareProcessor := NewShareProcessor(logic.NewShareHoldingLogic(db))
	stakeProcessor := NewStakeProcessor(logic.NewStakeRecordLogic(db), logic.NewRewardClaimLogic(db))
	refundProcessor := NewRefundProcessor(logic.NewRefundRecordLogic(db), logic.NewShareHoldingLogic(db))

	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		engine:     engine,
		eventLogic: logic.NewEventLogic(db),
		processors: map[ledger.EventType]Processor{
			ledger.EventProjectCreated:       projectProcessor,
			ledger.EventProjectStatusChanged: projectProcessor,
			ledger.EventProjectFunded:        contributeProcessor,
			ledger.EventSharesTransferred:    shareProcessor,
			ledger.EventStakeOpened:          stakeProcessor,
			ledger.EventRewardsClaimed:       stakeProcessor,
			ledger.EventUnstaked:             stakeProcessor,
			ledger.EventRefundClaimed:        refundProcessor,
		},
		pool:      pool,
		interval:  time.Duration(cfg.Interval) * time.Second,
		batchSize: cfg.BatchSize,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start resumes the projection from the last persisted sequence number and
// launches the polling loop.
func (m *Monitor) Start() error {
	lastSeq, err := m.eventLogic.GetLastSeq()
	if err != nil {
		return fmt.Errorf("failed to load projection cursor: %w", err)
	}
	m.lastSeq = lastSeq

	logger.Info("Starting event projection from seq %d", m.lastSeq)
	go m.monitorLoop()
	return nil
}

// Stop halts the polling loop and releases the worker pool.
func (m *Monitor) Stop() {
	m.cancel()
	m.pool.Release()
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Event projection stopped")
			return
		case <-ticker.C:
			if err := m.processBatch(); err != nil {
				logger.Error("Error projecting events: %v", err)
			}
		}
	}
}

// processBatch drains one batch from the feed: persist every entry, then
// apply them grouped by project so per-project order is preserved while
// groups run in parallel.
func (m *Monitor) processBatch() error {
	events := m.engine.Events(m.lastSeq, m.batchSize)
	if len(events) == 0 {
		return nil
	}

	for _, ev := range events {
		if err := m.persistEvent(ev); err != nil {
			return err
		}
	}

	groups := make(map[uint64][]ledger.Event)
	for _, ev := range events {
		groups[ev.ProjectID] = append(groups[ev.ProjectID], ev)
	}

	var wg sync.WaitGroup
	for _, group := range groups {
		group := group
		wg.Add(1)
		if err := m.pool.Submit(func() {
			defer wg.Done()
			m.processGroup(group)
		}); err != nil {
			wg.Done()
			logger.Error("Failed to submit projection group: %v", err)
		}
	}
	wg.Wait()

	m.lastSeq = events[len(events)-1].Seq
	return nil
}

func (m *Monitor) processGroup(group []ledger.Event) {
	for _, ev := range group {
		if err := m.handleEvent(ev); err != nil {
			logger.Error("Error processing event seq %d (%s): %v", ev.Seq, ev.Type, err)
			continue
		}
		if err := m.eventLogic.UpdateEventProcessed(ev.Seq, true); err != nil {
			logger.Error("Failed to mark event seq %d processed: %v", ev.Seq, err)
		}
	}
}

func (m *Monitor) persistEvent(ev ledger.Event) error {
	dataJSON, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	record := model.EventModel{
		Seq:        ev.Seq,
		ProjectId:  ev.ProjectID,
		EventType:  string(ev.Type),
		TxHash:     ev.TxID.Hex(),
		Data:       string(dataJSON),
		OccurredAt: ev.At,
	}
	if err := m.eventLogic.CreateEvent(&record); err != nil {
		return fmt.Errorf("failed to save event seq %d: %w", ev.Seq, err)
	}
	return nil
}

func (m *Monitor) handleEvent(ev ledger.Event) error {
	processor, ok := m.processors[ev.Type]
	if !ok {
		logger.Warn("Unknown event type: %s", ev.Type)
		return nil
	}
	return processor.Process(ev)
}
