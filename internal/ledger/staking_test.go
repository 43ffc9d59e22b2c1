package ledger

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stakedProject funds a 1000 SRC project with 600 from investor1 and 400
// from investor2 and tops up the staking pool for reward payouts.
func stakedProject(t *testing.T) (*Engine, *fakeClock, uint64) {
	t.Helper()
	e, clk := newFundedEngine(t)
	id := createTestProject(t, e, ether(1000), 365)
	require.NoError(t, e.InvestInProject(investor1, id, ether(600)))
	require.NoError(t, e.InvestInProject(investor2, id, ether(400)))
	require.NoError(t, e.FundRewardsPool(ownerAddr, ether(10_000)))
	return e, clk, id
}

func TestBindRegistry(t *testing.T) {
	feed := &eventFeed{}
	tok := NewToken(ownerAddr)
	st := NewStaking(StakingAddr, ownerAddr, tok, feed)

	err := st.BindRegistry(nil)
	assert.ErrorIs(t, err, ErrInvalidRegistry)

	reg := NewRegistry(RegistryAddr, ownerAddr, tok, st, feed)
	require.NoError(t, st.BindRegistry(reg))

	// The binding is one-shot, even to the same registry.
	err = st.BindRegistry(reg)
	assert.ErrorIs(t, err, ErrRegistryAlreadySet)
}

func TestInvestOpensStake(t *testing.T) {
	e, clk, id := stakedProject(t)

	stakes := e.UserStakes(investor1)
	require.Len(t, stakes, 1)
	assert.Equal(t, id, stakes[0].ProjectID)
	assert.Equal(t, investor1, stakes[0].Investor)
	assert.Equal(t, 0, stakes[0].Amount.Cmp(ether(600)))
	assert.Equal(t, clk.Now(), stakes[0].StakedAt)
	assert.True(t, stakes[0].IsActive)
	assert.False(t, stakes[0].Claimed)
}

func TestCalculateRewards(t *testing.T) {
	e, clk, id := stakedProject(t)

	// Not computable until the project is completed.
	_, err := e.CalculateRewards(investor1, 0)
	assert.ErrorIs(t, err, ErrProjectNotCompleted)

	_, err = e.CalculateRewards(investor1, 5)
	assert.ErrorIs(t, err, ErrInvalidStakeIndex)

	require.NoError(t, e.ForceCompleteProject(ownerAddr, id))

	// Accrual starts at completion, so the reward is exactly zero now.
	r, err := e.CalculateRewards(investor1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Sign())

	// 5% of 600 after one full year.
	clk.advanceDays(365)
	r, err = e.CalculateRewards(investor1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Cmp(ether(30)))

	r, err = e.CalculateRewards(investor2, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Cmp(ether(20)))
}

func TestCalculateRewardsHalfYear(t *testing.T) {
	e, clk, id := stakedProject(t)
	require.NoError(t, e.ForceCompleteProject(ownerAddr, id))

	clk.advance(SecondsPerYear / 2 * time.Second)
	r, err := e.CalculateRewards(investor1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Cmp(ether(15)))
}

func TestClaimRewards(t *testing.T) {
	e, clk, id := stakedProject(t)

	_, err := e.ClaimRewards(investor1, 0)
	assert.ErrorIs(t, err, ErrProjectNotCompleted)

	require.NoError(t, e.ForceCompleteProject(ownerAddr, id))
	clk.advanceDays(365)

	before := e.BalanceOf(investor1)
	r, err := e.ClaimRewards(investor1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Cmp(ether(30)))
	assert.Equal(t, 0, new(big.Int).Sub(e.BalanceOf(investor1), before).Cmp(ether(30)))

	// The stake stays active but cannot be claimed again.
	stakes := e.UserStakes(investor1)
	assert.True(t, stakes[0].IsActive)
	assert.True(t, stakes[0].Claimed)

	clk.advanceDays(365)
	_, err = e.ClaimRewards(investor1, 0)
	assert.ErrorIs(t, err, ErrRewardsAlreadyClaimed)
}

func TestUnstakeAndClaim(t *testing.T) {
	e, clk, id := stakedProject(t)
	require.NoError(t, e.ForceCompleteProject(ownerAddr, id))
	clk.advanceDays(365)

	before := e.BalanceOf(investor1)
	payout, err := e.UnstakeAndClaim(investor1, 0)
	require.NoError(t, err)

	// Principal plus one year of 5%.
	assert.Equal(t, 0, payout.Cmp(ether(630)))
	assert.Equal(t, 0, new(big.Int).Sub(e.BalanceOf(investor1), before).Cmp(ether(630)))

	stakes := e.UserStakes(investor1)
	assert.False(t, stakes[0].IsActive)
	assert.True(t, stakes[0].Claimed)
}

func TestUnstakeAfterClaimPaysPrincipalOnly(t *testing.T) {
	e, clk, id := stakedProject(t)
	require.NoError(t, e.ForceCompleteProject(ownerAddr, id))
	clk.advanceDays(365)

	_, err := e.ClaimRewards(investor1, 0)
	require.NoError(t, err)

	clk.advanceDays(365)
	payout, err := e.UnstakeAndClaim(investor1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, payout.Cmp(ether(600)))
}

func TestUnstakeTwicePaysOnce(t *testing.T) {
	e, _, id := stakedProject(t)
	require.NoError(t, e.ForceCompleteProject(ownerAddr, id))

	pool := e.BalanceOf(StakingAddr)
	_, err := e.UnstakeAndClaim(investor1, 0)
	require.NoError(t, err)

	// The closed stake must not pay the principal again.
	_, err = e.UnstakeAndClaim(investor1, 0)
	assert.ErrorIs(t, err, ErrStakeNotActive)

	drained := new(big.Int).Sub(pool, e.BalanceOf(StakingAddr))
	assert.Equal(t, 0, drained.Cmp(ether(600)))
	require.NoError(t, e.CheckInvariants())
}

func TestUnstakeBeforeCompletion(t *testing.T) {
	e, _, _ := stakedProject(t)

	_, err := e.UnstakeAndClaim(investor1, 0)
	assert.ErrorIs(t, err, ErrProjectNotCompleted)
}

func TestClaimRewardsInactiveStake(t *testing.T) {
	e, _, id := stakedProject(t)
	require.NoError(t, e.ForceCompleteProject(ownerAddr, id))

	_, err := e.UnstakeAndClaim(investor1, 0)
	require.NoError(t, err)

	_, err = e.ClaimRewards(investor1, 0)
	assert.ErrorIs(t, err, ErrStakeNotActive)
	_, err = e.CalculateRewards(investor1, 0)
	assert.ErrorIs(t, err, ErrStakeNotActive)
}

func TestStakeMarshalsAmountAsString(t *testing.T) {
	e, _, _ := stakedProject(t)

	raw, err := json.Marshal(e.UserStakes(investor1)[0])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ether(600).String(), decoded["amount"])
}

func TestProjectTotalStaked(t *testing.T) {
	e, _, id := stakedProject(t)

	total, err := e.ProjectTotalStaked(id)
	require.NoError(t, err)
	assert.Equal(t, 0, total.Cmp(ether(1000)))

	require.NoError(t, e.ForceCompleteProject(ownerAddr, id))
	_, err = e.UnstakeAndClaim(investor2, 0)
	require.NoError(t, err)

	total, err = e.ProjectTotalStaked(id)
	require.NoError(t, err)
	assert.Equal(t, 0, total.Cmp(ether(600)))
}

func TestStakeIndexForProject(t *testing.T) {
	e, _ := newFundedEngine(t)
	first := createTestProject(t, e, ether(1000), 365)
	second := createTestProject(t, e, ether(500), 30)

	require.NoError(t, e.InvestInProject(investor1, first, ether(100)))
	require.NoError(t, e.InvestInProject(investor1, second, ether(100)))

	assert.Equal(t, uint64(0), e.StakeIndexForProject(first, investor1))
	assert.Equal(t, uint64(1), e.StakeIndexForProject(second, investor1))
	assert.Equal(t, StakeNotFound, e.StakeIndexForProject(first, investor2))
	assert.Equal(t, StakeNotFound, e.StakeIndexForProject(99, investor1))
}

func TestMultipleStakesSameProject(t *testing.T) {
	e, _ := newFundedEngine(t)
	id := createTestProject(t, e, ether(1000), 365)

	require.NoError(t, e.InvestInProject(investor1, id, ether(100)))
	require.NoError(t, e.InvestInProject(investor1, id, ether(200)))

	stakes := e.UserStakes(investor1)
	require.Len(t, stakes, 2)
	assert.Equal(t, 0, stakes[0].Amount.Cmp(ether(100)))
	assert.Equal(t, 0, stakes[1].Amount.Cmp(ether(200)))

	total, err := e.ProjectTotalStaked(id)
	require.NoError(t, err)
	assert.Equal(t, 0, total.Cmp(ether(300)))
}

func TestRewardFloorMath(t *testing.T) {
	// 1 base unit staked for one second accrues less than one unit and
	// must floor to zero.
	principal := big.NewInt(1)
	clk := newFakeClock()
	completed := clk.Now()
	clk.advance(time.Second)
	assert.Equal(t, 0, rewardFor(principal, completed, clk.Now()).Sign())

	// A large enough principal does accrue per second.
	principal = ether(1_000_000)
	got := rewardFor(principal, completed, clk.Now())
	want := new(big.Int).Div(new(big.Int).Mul(principal, big.NewInt(5)), big.NewInt(100*SecondsPerYear))
	assert.Equal(t, 0, got.Cmp(want))
	assert.Equal(t, 1, got.Sign())
}
