package ledger

import (
	"encoding/json"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Reward parameters: 5% per year, accrued per second.
const (
	AnnualRatePercent = 5
	SecondsPerYear    = 365 * 24 * 60 * 60
)

// StakeNotFound is the sentinel returned by StakeIndexForProject when the
// investor has no active stake for the project (MaxUint256 in the original
// contract; the index type here is uint64).
const StakeNotFound = uint64(math.MaxUint64)

// Stake is one principal record, created one-to-one with an investment.
type Stake struct {
	ProjectID uint64         `json:"project_id"`
	Investor  common.Address `json:"investor"`
	Amount    *big.Int       `json:"amount"`
	StakedAt  time.Time      `json:"staked_at"`
	IsActive  bool           `json:"is_active"`
	Claimed   bool           `json:"claimed"`
}

// MarshalJSON renders the principal as a decimal string, like the
// project amounts.
func (s *Stake) MarshalJSON() ([]byte, error) {
	type stakeAlias Stake
	return json.Marshal(&struct {
		*stakeAlias
		Amount string `json:"amount"`
	}{
		stakeAlias: (*stakeAlias)(s),
		Amount:     s.Amount.String(),
	})
}

func (s *Stake) clone() *Stake {
	cp := *s
	cp.Amount = new(big.Int).Set(s.Amount)
	return &cp
}

// ProjectStatusReader is what the staking ledger needs from the funding
// registry: lifecycle status and completion time of a project.
type ProjectStatusReader interface {
	ProjectStatus(projectID uint64) (ProjectStatus, error)
	ProjectCompletedAt(projectID uint64) (time.Time, error)
}

// Staking keeps one append-only stake sequence per investor and pays
// rewards and principals from its own pool account in the token ledger.
// Access is serialized by the Engine.
type Staking struct {
	addr     common.Address
	owner    common.Address
	token    *Token
	feed     *eventFeed
	registry ProjectStatusReader
	stakes   map[common.Address][]*Stake
}

// NewStaking creates the staking ledger. addr is the pool account the owner
// funds for reward payouts (the staking contract's balance in the original
// deployment).
func NewStaking(addr, owner common.Address, token *Token, feed *eventFeed) *Staking {
	return &Staking{
		addr:   addr,
		owner:  owner,
		token:  token,
		feed:   feed,
		stakes: make(map[common.Address][]*Stake),
	}
}

func (s *Staking) Addr() common.Address  { return s.addr }
func (s *Staking) Owner() common.Address { return s.owner }

// BindRegistry wires the funding registry exactly once.
func (s *Staking) BindRegistry(registry ProjectStatusReader) error {
	if s.registry != nil {
		return ErrRegistryAlreadySet
	}
	if registry == nil {
		return ErrInvalidRegistry
	}
	s.registry = registry
	return nil
}

// openStake appends a stake record; called by the registry on investment.
func (s *Staking) openStake(investor common.Address, projectID uint64, amount *big.Int, at time.Time) {
	stake := &Stake{
		ProjectID: projectID,
		Investor:  investor,
		Amount:    new(big.Int).Set(amount),
		StakedAt:  at,
		IsActive:  true,
	}
	s.stakes[investor] = append(s.stakes[investor], stake)

	s.feed.append(EventStakeOpened, at, projectID, map[string]string{
		"investor":    investor.Hex(),
		"amount":      amount.String(),
		"stake_index": u64str(uint64(len(s.stakes[investor]) - 1)),
	})
}

// CalculateRewards returns the reward accrued on a stake:
// principal * 5% * elapsedSeconds / secondsPerYear, with the clock starting
// when the project completed. Zero if no time has elapsed.
func (s *Staking) CalculateRewards(investor common.Address, stakeIndex uint64, now time.Time) (*big.Int, error) {
	stake, err := s.stakeAt(investor, stakeIndex)
	if err != nil {
		return nil, err
	}
	if !stake.IsActive {
		return nil, ErrStakeNotActive
	}
	completedAt, err := s.completedAt(stake.ProjectID)
	if err != nil {
		return nil, err
	}
	return rewardFor(stake.Amount, completedAt, now), nil
}

// ClaimRewards pays the accrued reward to the caller. The stake stays
// active; the claimed flag permanently blocks a second claim.
func (s *Staking) ClaimRewards(caller common.Address, stakeIndex uint64, now time.Time) (*big.Int, error) {
	stake, err := s.stakeAt(caller, stakeIndex)
	if err != nil {
		return nil, err
	}
	if !stake.IsActive {
		return nil, ErrStakeNotActive
	}
	completedAt, err := s.completedAt(stake.ProjectID)
	if err != nil {
		return nil, err
	}
	if stake.Claimed {
		return nil, ErrRewardsAlreadyClaimed
	}

	reward := rewardFor(stake.Amount, completedAt, now)
	if reward.Sign() > 0 {
		if err := s.token.Transfer(s.addr, caller, reward); err != nil {
			return nil, err
		}
	}
	stake.Claimed = true

	s.feed.append(EventRewardsClaimed, now, stake.ProjectID, map[string]string{
		"investor":    caller.Hex(),
		"stake_index": u64str(stakeIndex),
		"reward":      reward.String(),
	})
	return reward, nil
}

// UnstakeAndClaim returns the principal plus any unclaimed reward and
// deactivates the stake. A closed stake cannot pay out a second time.
func (s *Staking) UnstakeAndClaim(caller common.Address, stakeIndex uint64, now time.Time) (*big.Int, error) {
	stake, err := s.stakeAt(caller, stakeIndex)
	if err != nil {
		return nil, err
	}
	if !stake.IsActive {
		return nil, ErrStakeNotActive
	}
	completedAt, err := s.completedAt(stake.ProjectID)
	if err != nil {
		return nil, err
	}

	payout := new(big.Int).Set(stake.Amount)
	reward := new(big.Int)
	if !stake.Claimed {
		reward = rewardFor(stake.Amount, completedAt, now)
		payout.Add(payout, reward)
	}
	if err := s.token.Transfer(s.addr, caller, payout); err != nil {
		return nil, err
	}
	stake.IsActive = false
	stake.Claimed = true

	s.feed.append(EventUnstaked, now, stake.ProjectID, map[string]string{
		"investor":    caller.Hex(),
		"stake_index": u64str(stakeIndex),
		"principal":   stake.Amount.String(),
		"reward":      reward.String(),
	})
	return payout, nil
}

// UserStakes returns copies of the investor's full stake sequence.
func (s *Staking) UserStakes(investor common.Address) []*Stake {
	list := s.stakes[investor]
	out := make([]*Stake, 0, len(list))
	for _, st := range list {
		out = append(out, st.clone())
	}
	return out
}

// ProjectTotalStaked sums the principal of all active stakes referencing
// the project, across all investors.
func (s *Staking) ProjectTotalStaked(projectID uint64) *big.Int {
	total := new(big.Int)
	for _, list := range s.stakes {
		for _, st := range list {
			if st.IsActive && st.ProjectID == projectID {
				total.Add(total, st.Amount)
			}
		}
	}
	return total
}

// StakeIndexForProject returns the first active stake index of the investor
// for the project, or StakeNotFound.
func (s *Staking) StakeIndexForProject(projectID uint64, investor common.Address) uint64 {
	for i, st := range s.stakes[investor] {
		if st.IsActive && st.ProjectID == projectID {
			return uint64(i)
		}
	}
	return StakeNotFound
}

func (s *Staking) stakeAt(investor common.Address, stakeIndex uint64) (*Stake, error) {
	list := s.stakes[investor]
	if stakeIndex >= uint64(len(list)) {
		return nil, ErrInvalidStakeIndex
	}
	return list[stakeIndex], nil
}

// completedAt resolves the project's completion time, failing while the
// project has not reached Completed.
func (s *Staking) completedAt(projectID uint64) (time.Time, error) {
	status, err := s.registry.ProjectStatus(projectID)
	if err != nil {
		return time.Time{}, err
	}
	if status != StatusCompleted {
		return time.Time{}, ErrProjectNotCompleted
	}
	return s.registry.ProjectCompletedAt(projectID)
}

// rewardFor computes principal * 5 / 100 * elapsed / secondsPerYear with
// integer math. Accrual starts at project completion, so an immediate claim
// after completion yields exactly zero.
func rewardFor(principal *big.Int, completedAt, now time.Time) *big.Int {
	elapsed := now.Unix() - completedAt.Unix()
	if elapsed <= 0 {
		return new(big.Int)
	}
	r := new(big.Int).Mul(principal, big.NewInt(AnnualRatePercent))
	r.Mul(r, big.NewInt(elapsed))
	r.Div(r, big.NewInt(100*SecondsPerYear))
	return r
}
