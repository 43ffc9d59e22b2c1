package ledger

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Registry metadata, matching the SerieProjectNFT deployment.
const (
	RegistryName   = "SerieProject"
	RegistrySymbol = "SP"
)

// TotalShares is the fixed per-project share denominator: 10,000 basis
// units represent 100% of a project's funding pool.
const TotalShares uint64 = 10_000

// Field bounds for CreateProject.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 1000
	MinDurationDays   = 1
	MaxDurationDays   = 3650
)

// ProjectStatus is the project lifecycle state.
type ProjectStatus uint8

const (
	StatusWaitingForFunds ProjectStatus = iota
	StatusInProduction
	StatusCompleted
)

func (s ProjectStatus) String() string {
	switch s {
	case StatusWaitingForFunds:
		return "WaitingForFunds"
	case StatusInProduction:
		return "InProduction"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Project is one funding campaign. Share balances live in the unexported
// map; use Shares / SharePercentage on the Registry for reads.
type Project struct {
	ID             uint64         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	FundingGoal    *big.Int       `json:"funding_goal"`
	CurrentFunding *big.Int       `json:"current_funding"`
	DurationDays   uint64         `json:"duration_days"`
	StartTime      time.Time      `json:"start_time"`
	Producer       common.Address `json:"producer"`
	Status         ProjectStatus  `json:"status"`
	CopyrightURI   string         `json:"copyright_uri"`
	TokenURI       string         `json:"token_uri"`
	TotalShares    uint64         `json:"total_shares"`
	CompletedAt    time.Time      `json:"completed_at,omitempty"`

	shares map[common.Address]uint64
}

// MarshalJSON renders token amounts as decimal strings. 18-decimal
// values exceed float64 precision, so JSON numbers would corrupt them.
func (p *Project) MarshalJSON() ([]byte, error) {
	type projectAlias Project
	return json.Marshal(&struct {
		*projectAlias
		FundingGoal    string `json:"funding_goal"`
		CurrentFunding string `json:"current_funding"`
	}{
		projectAlias:   (*projectAlias)(p),
		FundingGoal:    p.FundingGoal.String(),
		CurrentFunding: p.CurrentFunding.String(),
	})
}

// clone returns a copy safe to hand to callers.
func (p *Project) clone() *Project {
	cp := *p
	cp.FundingGoal = new(big.Int).Set(p.FundingGoal)
	cp.CurrentFunding = new(big.Int).Set(p.CurrentFunding)
	cp.shares = nil
	return &cp
}

// stakeOpener is what the registry needs from the staking ledger: one stake
// record opened per investment.
type stakeOpener interface {
	openStake(investor common.Address, projectID uint64, amount *big.Int, at time.Time)
}

// Registry is the project funding ledger. It escrows invested tokens at its
// own address and tracks per-project share balances. Access is serialized by
// the Engine.
type Registry struct {
	addr     common.Address
	owner    common.Address
	token    *Token
	staking  stakeOpener
	feed     *eventFeed
	projects []*Project
}

// NewRegistry creates the funding registry. addr is the registry's escrow
// account in the token ledger (the contract address in the original
// deployment); investors grant it an allowance before investing.
func NewRegistry(addr, owner common.Address, token *Token, staking stakeOpener, feed *eventFeed) *Registry {
	return &Registry{
		addr:    addr,
		owner:   owner,
		token:   token,
		staking: staking,
		feed:    feed,
	}
}

func (r *Registry) Name() string          { return RegistryName }
func (r *Registry) Symbol() string        { return RegistrySymbol }
func (r *Registry) Addr() common.Address  { return r.addr }
func (r *Registry) Owner() common.Address { return r.owner }

// ProjectCount returns the number of projects ever created.
func (r *Registry) ProjectCount() uint64 { return uint64(len(r.projects)) }

// CreateProject validates every field, assigns the next sequential id and
// stores the project in WaitingForFunds.
func (r *Registry) CreateProject(caller common.Address, title, description string, fundingGoal *big.Int, durationDays uint64, copyrightURI, tokenURI string, now time.Time) (*Project, error) {
	if len(title) == 0 || len(title) > MaxTitleLen {
		return nil, ErrInvalidTitle
	}
	if len(description) == 0 || len(description) > MaxDescriptionLen {
		return nil, ErrInvalidDescription
	}
	if fundingGoal == nil || fundingGoal.Sign() <= 0 {
		return nil, ErrInvalidFundingGoal
	}
	if durationDays < MinDurationDays || durationDays > MaxDurationDays {
		return nil, ErrInvalidDuration
	}
	if copyrightURI == "" {
		return nil, ErrInvalidCopyrightURI
	}
	if tokenURI == "" {
		return nil, ErrInvalidTokenURI
	}

	p := &Project{
		ID:             uint64(len(r.projects)),
		Title:          title,
		Description:    description,
		FundingGoal:    new(big.Int).Set(fundingGoal),
		CurrentFunding: new(big.Int),
		DurationDays:   durationDays,
		StartTime:      now,
		Producer:       caller,
		Status:         StatusWaitingForFunds,
		CopyrightURI:   copyrightURI,
		TokenURI:       tokenURI,
		TotalShares:    TotalShares,
		shares:         make(map[common.Address]uint64),
	}
	r.projects = append(r.projects, p)

	r.feed.append(EventProjectCreated, now, p.ID, map[string]string{
		"title":         p.Title,
		"producer":      p.Producer.Hex(),
		"funding_goal":  p.FundingGoal.String(),
		"duration_days": u64str(p.DurationDays),
		"copyright_uri": p.CopyrightURI,
		"token_uri":     p.TokenURI,
	})
	return p.clone(), nil
}

// InvestInProject pulls amount from the investor via the allowance
// mechanism, credits proportional shares and opens a stake record. The
// token pull happens before any internal mutation so a failed pull leaves
// no partial state; everything after it cannot fail.
func (r *Registry) InvestInProject(caller common.Address, projectID uint64, amount *big.Int, now time.Time) error {
	p, err := r.projectByID(projectID)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if p.Status != StatusWaitingForFunds {
		return ErrProjectNotFundable
	}
	if new(big.Int).Add(p.CurrentFunding, amount).Cmp(p.FundingGoal) > 0 {
		return ErrFundingGoalExceeded
	}

	if err := r.token.TransferFrom(r.addr, caller, r.addr, amount); err != nil {
		return err
	}

	p.CurrentFunding.Add(p.CurrentFunding, amount)

	// shares = amount * 10000 / goal, floor division. The headroom check
	// above caps cumulative funding at the goal, so issued shares can
	// never sum past the denominator.
	s := new(big.Int).Mul(amount, new(big.Int).SetUint64(TotalShares))
	s.Div(s, p.FundingGoal)
	shares := s.Uint64()
	p.shares[caller] += shares

	r.staking.openStake(caller, projectID, amount, now)

	r.feed.append(EventProjectFunded, now, p.ID, map[string]string{
		"investor": caller.Hex(),
		"amount":   amount.String(),
		"shares":   u64str(shares),
		"funding":  p.CurrentFunding.String(),
	})

	if p.CurrentFunding.Cmp(p.FundingGoal) == 0 {
		r.setStatus(p, StatusInProduction, now)
	}
	return nil
}

// TransferShares moves share units between investors of a project.
func (r *Registry) TransferShares(caller common.Address, projectID uint64, to common.Address, amount uint64, now time.Time) error {
	p, err := r.projectByID(projectID)
	if err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrInvalidRecipient
	}
	if to == caller {
		return ErrSelfTransfer
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if p.shares[caller] < amount {
		return ErrInsufficientShares
	}
	p.shares[caller] -= amount
	p.shares[to] += amount

	r.feed.append(EventSharesTransferred, now, p.ID, map[string]string{
		"from":   caller.Hex(),
		"to":     to.Hex(),
		"shares": u64str(amount),
	})
	return nil
}

// CompleteProject transitions InProduction -> Completed once the project
// duration has elapsed. Producer only.
func (r *Registry) CompleteProject(caller common.Address, projectID uint64, now time.Time) error {
	p, err := r.projectByID(projectID)
	if err != nil {
		return err
	}
	if caller != p.Producer {
		return ErrUnauthorized
	}
	if now.Before(p.StartTime.AddDate(0, 0, int(p.DurationDays))) {
		return ErrDurationNotElapsed
	}
	if p.Status != StatusInProduction {
		return ErrProjectNotInProduction
	}
	r.setStatus(p, StatusCompleted, now)
	return nil
}

// ForceCompleteProject transitions InProduction -> Completed regardless of
// elapsed duration. Registry owner only.
func (r *Registry) ForceCompleteProject(caller common.Address, projectID uint64, now time.Time) error {
	p, err := r.projectByID(projectID)
	if err != nil {
		return err
	}
	if caller != r.owner {
		return ErrUnauthorized
	}
	if p.Status != StatusInProduction {
		return ErrProjectNotInProduction
	}
	r.setStatus(p, StatusCompleted, now)
	return nil
}

// ClaimRefund pays out the caller's proportional slice of the funding pool
// of a completed project and zeroes the share balance, which also blocks a
// second claim.
func (r *Registry) ClaimRefund(caller common.Address, projectID uint64, now time.Time) (*big.Int, error) {
	p, err := r.projectByID(projectID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusCompleted {
		return nil, ErrProjectNotCompleted
	}
	shares := p.shares[caller]
	if shares == 0 {
		return nil, ErrNoSharesToClaim
	}

	// refund = shares * currentFunding / 10000
	refund := new(big.Int).SetUint64(shares)
	refund.Mul(refund, p.CurrentFunding)
	refund.Div(refund, new(big.Int).SetUint64(TotalShares))

	p.shares[caller] = 0
	if refund.Sign() > 0 {
		if err := r.token.Transfer(r.addr, caller, refund); err != nil {
			// The escrow always holds the full funding pool; restore the
			// shares so the caller can retry if this ever trips.
			p.shares[caller] = shares
			return nil, err
		}
	}

	r.feed.append(EventRefundClaimed, now, p.ID, map[string]string{
		"investor": caller.Hex(),
		"amount":   refund.String(),
		"shares":   u64str(shares),
	})
	return refund, nil
}

// GetProject returns a copy of the project.
func (r *Registry) GetProject(projectID uint64) (*Project, error) {
	p, err := r.projectByID(projectID)
	if err != nil {
		return nil, err
	}
	return p.clone(), nil
}

// ListProjects returns copies of all projects in creation order.
func (r *Registry) ListProjects() []*Project {
	out := make([]*Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p.clone())
	}
	return out
}

// ProjectStatus returns the lifecycle status of a project.
func (r *Registry) ProjectStatus(projectID uint64) (ProjectStatus, error) {
	p, err := r.projectByID(projectID)
	if err != nil {
		return 0, err
	}
	return p.Status, nil
}

// ProjectCompletedAt returns when the project reached Completed; zero time
// if it has not.
func (r *Registry) ProjectCompletedAt(projectID uint64) (time.Time, error) {
	p, err := r.projectByID(projectID)
	if err != nil {
		return time.Time{}, err
	}
	return p.CompletedAt, nil
}

// CopyrightURI returns the project's copyright reference URI.
func (r *Registry) CopyrightURI(projectID uint64) (string, error) {
	p, err := r.projectByID(projectID)
	if err != nil {
		return "", err
	}
	return p.CopyrightURI, nil
}

// TokenURI returns the project's metadata reference URI.
func (r *Registry) TokenURI(projectID uint64) (string, error) {
	p, err := r.projectByID(projectID)
	if err != nil {
		return "", err
	}
	return p.TokenURI, nil
}

// Shares returns the investor's share balance for a project.
func (r *Registry) Shares(projectID uint64, investor common.Address) (uint64, error) {
	p, err := r.projectByID(projectID)
	if err != nil {
		return 0, err
	}
	return p.shares[investor], nil
}

// SharePercentage returns the investor's ownership in whole percent
// (shares * 100 / 10000).
func (r *Registry) SharePercentage(projectID uint64, investor common.Address) (uint64, error) {
	shares, err := r.Shares(projectID, investor)
	if err != nil {
		return 0, err
	}
	return shares * 100 / TotalShares, nil
}

// sharesIssued sums all share balances of a project; used by the invariant
// check job.
func (r *Registry) sharesIssued(projectID uint64) (uint64, error) {
	p, err := r.projectByID(projectID)
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, s := range p.shares {
		sum += s
	}
	return sum, nil
}

func (r *Registry) setStatus(p *Project, status ProjectStatus, now time.Time) {
	old := p.Status
	p.Status = status
	if status == StatusCompleted {
		p.CompletedAt = now
	}
	r.feed.append(EventProjectStatusChanged, now, p.ID, map[string]string{
		"from": old.String(),
		"to":   status.String(),
	})
}

func (r *Registry) projectByID(projectID uint64) (*Project, error) {
	if projectID >= uint64(len(r.projects)) {
		return nil, ErrProjectNotFound
	}
	return r.projects[projectID], nil
}
