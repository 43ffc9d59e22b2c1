package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StakingHandler serves the staking ledger: stake queries, reward
// calculation and the claim and unstake operations.
type StakingHandler struct {
	engine      *ledger.Engine
	rewardLogic *logic.RewardClaimLogic
}

func NewStakingHandler(engine *ledger.Engine, db *gorm.DB) *StakingHandler {
	return &StakingHandler{
		engine:      engine,
		rewardLogic: logic.NewRewardClaimLogic(db),
	}
}

// GetUserStakes returns an investor's full stake sequence.
func (h *StakingHandler) GetUserStakes(c *gin.Context) {
	investor, err := parseAddress(c.Param("address"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"investor": investor.Hex(),
		"stakes":   h.engine.UserStakes(investor),
	})
}

// GetProjectTotalStaked sums active stake principal for a project.
func (h *StakingHandler) GetProjectTotalStaked(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	total, err := h.engine.ProjectTotalStaked(id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"project_id":   id,
		"total_staked": total.String(),
	})
}

// GetStakeIndex returns the investor's first active stake index for a
// project. found is false when there is none.
func (h *StakingHandler) GetStakeIndex(c *gin.Context) {
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

	index := h.engine.StakeIndexForProject(id, investor)
	if index == ledger.StakeNotFound {
		SuccessResponse(c, http.StatusOK, "ok", gin.H{"found": false})
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"found":       true,
		"stake_index": index,
	})
}

// CalculateRewards returns the reward accrued on one stake.
func (h *StakingHandler) CalculateRewards(c *gin.Context) {
	investor, err := parseAddress(c.Param("address"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	stakeIndex, err := strconv.ParseUint(c.Param("index"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid stake index")
		return
	}

	reward, err := h.engine.CalculateRewards(investor, stakeIndex)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"investor":    investor.Hex(),
		"stake_index": stakeIndex,
		"reward":      reward.String(),
	})
}

// ClaimRewards pays the accrued reward; the stake stays active.
func (h *StakingHandler) ClaimRewards(c *gin.Context) {
	var req StakeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	reward, err := h.engine.ClaimRewards(caller, req.StakeIndex)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "rewards claimed", gin.H{
		"investor":    caller.Hex(),
		"stake_index": req.StakeIndex,
		"reward":      reward.String(),
	})
}

// Unstake returns the principal plus any unclaimed reward and closes the
// stake.
func (h *StakingHandler) Unstake(c *gin.Context) {
	var req StakeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	payout, err := h.engine.UnstakeAndClaim(caller, req.StakeIndex)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "stake closed", gin.H{
		"investor":    caller.Hex(),
		"stake_index": req.StakeIndex,
		"payout":      payout.String(),
	})
}

// GetRewardClaims lists reward payouts recorded for an investor.
func (h *StakingHandler) GetRewardClaims(c *gin.Context) {
	investor, err := parseAddress(c.Param("address"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	claims, total, err := h.rewardLogic.GetInvestorRewardClaims(investor.Hex(), page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"claims":     claims,
		"pagination": NewPagination(page, pageSize, total),
	})
}
