package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EventHandler serves the ledger event feed and its persisted history.
type EventHandler struct {
	engine     *ledger.Engine
	eventLogic *logic.EventLogic
}

func NewEventHandler(engine *ledger.Engine, db *gorm.DB) *EventHandler {
	return &EventHandler{
		engine:     engine,
		eventLogic: logic.NewEventLogic(db),
	}
}

// GetFeed reads the live feed: events with Seq > after, oldest first.
func (h *EventHandler) GetFeed(c *gin.Context) {
	after, _ := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"events":   h.engine.Events(after, limit),
		"last_seq": h.engine.LastSeq(),
	})
}

// GetEvents lists persisted events with optional filters.
func (h *EventHandler) GetEvents(c *gin.Context) {
	projectId, _ := strconv.ParseUint(c.DefaultQuery("project_id", "0"), 10, 64)
	eventType := c.Query("type")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	events, total, err := h.eventLogic.GetEvents(projectId, eventType, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"events":     events,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetEventStats aggregates processed and pending counts.
func (h *EventHandler) GetEventStats(c *gin.Context) {
	projectId, _ := strconv.ParseUint(c.DefaultQuery("project_id", "0"), 10, 64)

	stats, err := h.eventLogic.GetEventStatistics(projectId)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", stats)
}
