package handler

import (
	"errors"
	"net/http"

	"github.com/blues/sfs/internal/ledger"
	"github.com/gin-gonic/gin"
)

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// LedgerErrorResponse maps a ledger error to its HTTP status.
func LedgerErrorResponse(c *gin.Context, err error) {
	ErrorResponse(c, statusForLedgerError(err), err.Error())
}

// statusForLedgerError follows the error taxonomy: not-found 404,
// authorization 403, resource shortfalls 422, state conflicts 409,
// validation 400.
func statusForLedgerError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrProjectNotFound),
		errors.Is(err, ledger.ErrInvalidStakeIndex):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, ledger.ErrInsufficientShares),
		errors.Is(err, ledger.ErrNoSharesToClaim):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrProjectNotFundable),
		errors.Is(err, ledger.ErrFundingGoalExceeded),
		errors.Is(err, ledger.ErrProjectNotInProduction),
		errors.Is(err, ledger.ErrProjectNotCompleted),
		errors.Is(err, ledger.ErrDurationNotElapsed),
		errors.Is(err, ledger.ErrStakeNotActive),
		errors.Is(err, ledger.ErrRewardsAlreadyClaimed),
		errors.Is(err, ledger.ErrRegistryAlreadySet):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
