package ledger

import "errors"

// Authorization errors.
var (
	ErrUnauthorized = errors.New("caller is not authorized")
)

// Validation errors. CreateProject reports a distinct error per field so
// clients can tell which input was rejected.
var (
	ErrInvalidTitle        = errors.New("invalid title length")
	ErrInvalidDescription  = errors.New("invalid description length")
	ErrInvalidFundingGoal  = errors.New("funding goal must be greater than 0")
	ErrInvalidDuration     = errors.New("duration out of range")
	ErrInvalidCopyrightURI = errors.New("copyright URI must not be empty")
	ErrInvalidTokenURI     = errors.New("token URI must not be empty")
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
	ErrInvalidRecipient    = errors.New("recipient must not be the zero address")
	ErrSelfTransfer        = errors.New("cannot transfer shares to self")
)

// State errors.
var (
	ErrProjectNotFundable     = errors.New("project is not accepting funds")
	ErrFundingGoalExceeded    = errors.New("investment exceeds funding goal")
	ErrProjectNotInProduction = errors.New("project is not in production")
	ErrProjectNotCompleted    = errors.New("project not completed")
	ErrDurationNotElapsed     = errors.New("project duration not elapsed")
	ErrStakeNotActive         = errors.New("stake is not active")
	ErrRewardsAlreadyClaimed  = errors.New("rewards already claimed")
	ErrRegistryAlreadySet     = errors.New("funding registry already set")
	ErrInvalidRegistry        = errors.New("invalid funding registry")
)

// Resource errors.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrNoSharesToClaim       = errors.New("no shares to claim")
)

// Not-found errors.
var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrInvalidStakeIndex = errors.New("invalid stake index")
)
