package handler

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

func NewPagination(page, pageSize int, total int64) Pagination {
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPage++
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// Mutating requests carry the caller's account address explicitly; there
// is no transaction signer in front of the ledger.

type CreateProjectRequest struct {
	Caller       string `json:"caller" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description" binding:"required"`
	FundingGoal  string `json:"funding_goal" binding:"required"`
	DurationDays uint64 `json:"duration_days" binding:"required"`
	CopyrightURI string `json:"copyright_uri" binding:"required"`
	TokenURI     string `json:"token_uri" binding:"required"`
}

type InvestRequest struct {
	Caller string `json:"caller" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type TransferSharesRequest struct {
	Caller string `json:"caller" binding:"required"`
	To     string `json:"to" binding:"required"`
	Shares uint64 `json:"shares" binding:"required"`
}

type CallerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

type TransferRequest struct {
	Caller string `json:"caller" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type ApproveRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Spender string `json:"spender" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

type TransferFromRequest struct {
	Caller string `json:"caller" binding:"required"`
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type MintRequest struct {
	Caller string `json:"caller" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type BurnRequest struct {
	Caller string `json:"caller" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type FundRewardsRequest struct {
	Caller string `json:"caller" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type StakeActionRequest struct {
	Caller     string `json:"caller" binding:"required"`
	StakeIndex uint64 `json:"stake_index"`
}

// parseAddress validates and decodes a hex account address.
func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.New("invalid account address")
	}
	return common.HexToAddress(s), nil
}

// parseAmount decodes a base-unit decimal token amount.
func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.New("invalid token amount")
	}
	return amount, nil
}
