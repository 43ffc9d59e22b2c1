package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProjectHandler serves the funding registry: mutations go through the
// ledger engine, list and history queries come from the read models.
type ProjectHandler struct {
	engine          *ledger.Engine
	projectLogic    *logic.ProjectLogic
	contributeLogic *logic.ContributeRecordLogic
	holdingLogic    *logic.ShareHoldingLogic
	refundLogic     *logic.RefundRecordLogic
}

func NewProjectHandler(engine *ledger.Engine, db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		engine:          engine,
		projectLogic:    logic.NewProjectLogic(db),
		contributeLogic: logic.NewContributeRecordLogic(db),
		holdingLogic:    logic.NewShareHoldingLogic(db),
		refundLogic:     logic.NewRefundRecordLogic(db),
	}
}

// CreateProject registers a new funding project.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	goal, err := parseAmount(req.FundingGoal)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.engine.CreateProject(caller, req.Title, req.Description, goal, req.DurationDays, req.CopyrightURI, req.TokenURI)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "project created", project)
}

// GetProjects lists projects from the read model with optional filters.
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	status := c.Query("status")
	producer := c.Query("producer")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	projects, total, err := h.projectLogic.GetProjects(status, producer, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"projects":   projects,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetProject returns the authoritative project state from the engine.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := h.engine.GetProject(id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", project)
}

// Invest pulls tokens from the caller into the project's funding pool.
func (h *ProjectHandler) Invest(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.InvestInProject(caller, id, amount); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	shares, _ := h.engine.Shares(id, caller)
	SuccessResponse(c, http.StatusOK, "investment accepted", gin.H{
		"project_id": id,
		"investor":   caller.Hex(),
		"amount":     amount.String(),
		"shares":     shares,
	})
}

// TransferShares moves share units to another holder.
func (h *ProjectHandler) TransferShares(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	var req TransferSharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseAddress(req.To)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.TransferShares(caller, id, to, req.Shares); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "shares transferred", nil)
}

// Complete marks a project finished once its duration has elapsed.
func (h *ProjectHandler) Complete(c *gin.Context) {
	h.complete(c, h.engine.CompleteProject)
}

// ForceComplete marks a project finished regardless of elapsed time.
func (h *ProjectHandler) ForceComplete(c *gin.Context) {
	h.complete(c, h.engine.ForceCompleteProject)
}

func (h *ProjectHandler) complete(c *gin.Context, op func(caller common.Address, projectID uint64) error) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := op(caller, id); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "project completed", nil)
}

// ClaimRefund pays out the caller's slice of a completed project's pool.
func (h *ProjectHandler) ClaimRefund(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	refund, err := h.engine.ClaimRefund(caller, id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "refund claimed", gin.H{
		"project_id": id,
		"investor":   caller.Hex(),
		"amount":     refund.String(),
	})
}

// GetShares returns an investor's share balance and ownership percentage.
func (h *ProjectHandler) GetShares(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	investor, err := parseAddress(c.Param("address"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	shares, err := h.engine.Shares(id, investor)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}
	pct, err := h.engine.SharePercentage(id, investor)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"project_id": id,
		"investor":   investor.Hex(),
		"shares":     shares,
		"percentage": pct,
	})
}

// GetProjectHolders lists non-zero share holders from the read model.
func (h *ProjectHandler) GetProjectHolders(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	holdings, err := h.holdingLogic.GetProjectHoldings(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{"holders": holdings})
}

// GetProjectContributions lists investment records from the read model.
func (h *ProjectHandler) GetProjectContributions(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.contributeLogic.GetProjectContributeRecords(id, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"contributions": records,
		"pagination":    NewPagination(page, pageSize, total),
	})
}

// GetProjectRefunds lists refund payouts from the read model.
func (h *ProjectHandler) GetProjectRefunds(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.refundLogic.GetProjectRefundRecords(id, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"refunds":    records,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetProjectStats aggregates read-model statistics for one project.
func (h *ProjectHandler) GetProjectStats(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	stats, err := h.projectLogic.GetProjectStats(id)
	if err != nil {
		if err == logic.ErrNotFound {
			ErrorResponse(c, http.StatusNotFound, "project not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", stats)
}

// GetAllProjectStats aggregates read-model statistics across projects.
func (h *ProjectHandler) GetAllProjectStats(c *gin.Context) {
	stats, err := h.projectLogic.GetAllProjectStats()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", stats)
}

func parseProjectID(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
