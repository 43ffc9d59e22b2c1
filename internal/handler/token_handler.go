package handler

import (
	"net/http"

	"github.com/blues/sfs/internal/ledger"
	"github.com/gin-gonic/gin"
)

// TokenHandler serves the fungible token ledger.
type TokenHandler struct {
	engine *ledger.Engine
}

func NewTokenHandler(engine *ledger.Engine) *TokenHandler {
	return &TokenHandler{engine: engine}
}

// GetTokenInfo returns token metadata and the current supply.
func (h *TokenHandler) GetTokenInfo(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"name":         h.engine.TokenName(),
		"symbol":       h.engine.TokenSymbol(),
		"decimals":     ledger.TokenDecimals,
		"total_supply": h.engine.TotalSupply().String(),
		"owner":        h.engine.Owner().Hex(),
	})
}

// GetBalance returns an account balance in base units.
func (h *TokenHandler) GetBalance(c *gin.Context) {
	account, err := parseAddress(c.Param("address"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"account": account.Hex(),
		"balance": h.engine.BalanceOf(account).String(),
	})
}

// GetAllowance returns the spender allowance granted by an owner.
func (h *TokenHandler) GetAllowance(c *gin.Context) {
	owner, err := parseAddress(c.Param("owner"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	spender, err := parseAddress(c.Param("spender"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"owner":     owner.Hex(),
		"spender":   spender.Hex(),
		"allowance": h.engine.Allowance(owner, spender).String(),
	})
}

// Transfer moves tokens from the caller to another account.
func (h *TokenHandler) Transfer(c *gin.Context) {
	var req TransferRequest
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
	amount, err := parseAmount(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.Transfer(caller, to, amount); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "transfer executed", nil)
}

// Approve sets the caller's allowance for a spender.
func (h *TokenHandler) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	spender, err := parseAddress(req.Spender)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.Approve(caller, spender, amount); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "allowance set", nil)
}

// TransferFrom spends an allowance to move tokens between accounts.
func (h *TokenHandler) TransferFrom(c *gin.Context) {
	var req TransferFromRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	from, err := parseAddress(req.From)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseAddress(req.To)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.TransferFrom(caller, from, to, amount); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "transfer executed", nil)
}

// Mint creates new tokens. Owner only.
func (h *TokenHandler) Mint(c *gin.Context) {
	var req MintRequest
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
	amount, err := parseAmount(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.Mint(caller, to, amount); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "tokens minted", nil)
}

// Burn destroys tokens from the caller's balance.
func (h *TokenHandler) Burn(c *gin.Context) {
	var req BurnRequest
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

	if err := h.engine.Burn(caller, amount); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "tokens burned", nil)
}

// FundRewardsPool mints tokens into the staking pool. Owner only.
func (h *TokenHandler) FundRewardsPool(c *gin.Context) {
	var req FundRewardsRequest
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

	if err := h.engine.FundRewardsPool(caller, amount); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "rewards pool funded", gin.H{
		"pool_balance": h.engine.BalanceOf(ledger.StakingAddr).String(),
	})
}
