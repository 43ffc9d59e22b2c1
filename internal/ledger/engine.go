package ledger

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Clock supplies the engine's notion of now; injected for deterministic
// tests.
type Clock func() time.Time

// Pool accounts in the token ledger. These stand in for the contract
// addresses of the original deployment: the registry escrows invested funds
// at RegistryAddr, the staking ledger pays principals and rewards from
// StakingAddr.
var (
	RegistryAddr = common.BytesToAddress(crypto.Keccak256([]byte("sfs/registry-pool"))[12:])
	StakingAddr  = common.BytesToAddress(crypto.Keccak256([]byte("sfs/staking-pool"))[12:])
)

// Engine composes the token ledger, the funding registry and the staking
// ledger behind one serialized call surface. Every mutating operation runs
// under the engine lock, validates first, then mutates, so a failure leaves
// no partial state, matching the atomicity of the original execution
// environment.
type Engine struct {
	mu       sync.RWMutex
	clock    Clock
	owner    common.Address
	token    *Token
	registry *Registry
	staking  *Staking
	feed     *eventFeed
}

// NewEngine builds the three ledgers and binds the staking ledger to the
// registry, mirroring the deployment fixture.
func NewEngine(owner common.Address, clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	feed := &eventFeed{}
	token := NewToken(owner)
	staking := NewStaking(StakingAddr, owner, token, feed)
	registry := NewRegistry(RegistryAddr, owner, token, staking, feed)
	if err := staking.BindRegistry(registry); err != nil {
		// Unreachable: the registry is bound exactly once right here.
		panic(err)
	}
	return &Engine{
		clock:    clock,
		owner:    owner,
		token:    token,
		registry: registry,
		staking:  staking,
		feed:     feed,
	}
}

// Owner returns the authority account controlling mint and force-complete.
func (e *Engine) Owner() common.Address { return e.owner }

/* ---------------- token ledger ---------------- */

func (e *Engine) TokenName() string   { return e.token.Name() }
func (e *Engine) TokenSymbol() string { return e.token.Symbol() }

func (e *Engine) Mint(caller, to common.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token.Mint(caller, to, amount)
}

func (e *Engine) Burn(caller common.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token.Burn(caller, amount)
}

func (e *Engine) Transfer(caller, to common.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token.Transfer(caller, to, amount)
}

func (e *Engine) Approve(caller, spender common.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token.Approve(caller, spender, amount)
}

func (e *Engine) TransferFrom(caller, from, to common.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token.TransferFrom(caller, from, to, amount)
}

func (e *Engine) BalanceOf(account common.Address) *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.token.BalanceOf(account)
}

func (e *Engine) Allowance(owner, spender common.Address) *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.token.Allowance(owner, spender)
}

func (e *Engine) TotalSupply() *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.token.TotalSupply()
}

// FundRewardsPool mints tokens into the staking pool so reward payouts are
// covered. Owner only.
func (e *Engine) FundRewardsPool(caller common.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token.Mint(caller, StakingAddr, amount)
}

/* ---------------- funding registry ---------------- */

func (e *Engine) CreateProject(caller common.Address, title, description string, fundingGoal *big.Int, durationDays uint64, copyrightURI, tokenURI string) (*Project, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.CreateProject(caller, title, description, fundingGoal, durationDays, copyrightURI, tokenURI, e.clock())
}

func (e *Engine) InvestInProject(caller common.Address, projectID uint64, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.InvestInProject(caller, projectID, amount, e.clock())
}

func (e *Engine) TransferShares(caller common.Address, projectID uint64, to common.Address, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.TransferShares(caller, projectID, to, amount, e.clock())
}

func (e *Engine) CompleteProject(caller common.Address, projectID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.CompleteProject(caller, projectID, e.clock())
}

func (e *Engine) ForceCompleteProject(caller common.Address, projectID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.ForceCompleteProject(caller, projectID, e.clock())
}

func (e *Engine) ClaimRefund(caller common.Address, projectID uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.ClaimRefund(caller, projectID, e.clock())
}

func (e *Engine) GetProject(projectID uint64) (*Project, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.GetProject(projectID)
}

func (e *Engine) ListProjects() []*Project {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.ListProjects()
}

func (e *Engine) ProjectCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.ProjectCount()
}

func (e *Engine) ProjectStatus(projectID uint64) (ProjectStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.ProjectStatus(projectID)
}

func (e *Engine) CopyrightURI(projectID uint64) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.CopyrightURI(projectID)
}

func (e *Engine) TokenURI(projectID uint64) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.TokenURI(projectID)
}

func (e *Engine) Shares(projectID uint64, investor common.Address) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.Shares(projectID, investor)
}

func (e *Engine) SharePercentage(projectID uint64, investor common.Address) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.SharePercentage(projectID, investor)
}

/* ---------------- staking ledger ---------------- */

func (e *Engine) CalculateRewards(investor common.Address, stakeIndex uint64) (*big.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.staking.CalculateRewards(investor, stakeIndex, e.clock())
}

func (e *Engine) ClaimRewards(caller common.Address, stakeIndex uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.staking.ClaimRewards(caller, stakeIndex, e.clock())
}

func (e *Engine) UnstakeAndClaim(caller common.Address, stakeIndex uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.staking.UnstakeAndClaim(caller, stakeIndex, e.clock())
}

func (e *Engine) UserStakes(investor common.Address) []*Stake {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.staking.UserStakes(investor)
}

func (e *Engine) ProjectTotalStaked(projectID uint64) (*big.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, err := e.registry.ProjectStatus(projectID); err != nil {
		return nil, err
	}
	return e.staking.ProjectTotalStaked(projectID), nil
}

func (e *Engine) StakeIndexForProject(projectID uint64, investor common.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.staking.StakeIndexForProject(projectID, investor)
}

/* ---------------- event feed ---------------- */

// Events returns up to limit feed entries with Seq > after, oldest first.
func (e *Engine) Events(after uint64, limit int) []Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.feed.since(after, limit)
}

// LastSeq returns the sequence number of the newest feed entry.
func (e *Engine) LastSeq() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.feed.lastSeq()
}

/* ---------------- invariants ---------------- */

// CheckInvariants verifies supply conservation and the per-project share
// cap. The scheduler runs this periodically; any error here means the
// accounting is broken.
func (e *Engine) CheckInvariants() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	supply := e.token.TotalSupply()
	sum := e.token.sumBalances()
	if supply.Cmp(sum) != 0 {
		return fmt.Errorf("token supply %s != balance sum %s", supply, sum)
	}
	for _, p := range e.registry.projects {
		issued, err := e.registry.sharesIssued(p.ID)
		if err != nil {
			return err
		}
		if issued > TotalShares {
			return fmt.Errorf("project %d issued %d shares, cap is %d", p.ID, issued, TotalShares)
		}
	}
	return nil
}
