package event

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/blues/sfs/internal/config"
	"github.com/blues/sfs/internal/database"
	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logic"
	"github.com/blues/sfs/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	ownerAddr    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	producerAddr = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	investorAddr = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	return db
}

func newTestMonitor(t *testing.T) (*Monitor, *ledger.Engine, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	engine := ledger.NewEngine(ownerAddr, func() time.Time { return time.Unix(1_700_000_000, 0) })
	monitor, err := NewMonitor(engine, db, config.ProjectorConfig{
		PoolSize:  2,
		BatchSize: 100,
		Interval:  1,
	})
	require.NoError(t, err)
	t.Cleanup(monitor.Stop)
	return monitor, engine, db
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), ledger.Ether())
}

func fundAndInvest(t *testing.T, engine *ledger.Engine, amount *big.Int) uint64 {
	t.Helper()
	require.NoError(t, engine.Mint(ownerAddr, investorAddr, ether(2000)))
	require.NoError(t, engine.Approve(investorAddr, ledger.RegistryAddr, ether(2000)))
	p, err := engine.CreateProject(producerAddr, "Serie One", "Season funding", ether(1000), 365, "ipfs://c", "ipfs://t")
	require.NoError(t, err)
	require.NoError(t, engine.InvestInProject(investorAddr, p.ID, amount))
	return p.ID
}

func TestMonitorProjectsInvestment(t *testing.T) {
	monitor, engine, db := newTestMonitor(t)
	id := fundAndInvest(t, engine, ether(400))

	require.NoError(t, monitor.processBatch())

	project, err := logic.NewProjectLogic(db).GetProject(id)
	require.NoError(t, err)
	assert.Equal(t, "Serie One", project.Title)
	assert.Equal(t, model.ProjectStatusWaitingForFunds, project.Status)
	assert.Equal(t, ether(400).String(), project.CurrentFunding)
	assert.Equal(t, ether(1000).String(), project.FundingGoal)

	records, total, err := logic.NewContributeRecordLogic(db).GetProjectContributeRecords(id, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, investorAddr.Hex(), records[0].Investor)
	assert.Equal(t, ether(400).String(), records[0].Amount)
	assert.Equal(t, uint64(4000), records[0].Shares)

	holding, err := logic.NewShareHoldingLogic(db).GetHolding(id, investorAddr.Hex())
	require.NoError(t, err)
	assert.Equal(t, uint64(4000), holding.Shares)

	stakes, err := logic.NewStakeRecordLogic(db).GetInvestorStakes(investorAddr.Hex())
	require.NoError(t, err)
	require.Len(t, stakes, 1)
	assert.Equal(t, ether(400).String(), stakes[0].Amount)
	assert.True(t, stakes[0].IsActive)
}

func TestMonitorProjectsCompletionAndRefund(t *testing.T) {
	monitor, engine, db := newTestMonitor(t)
	id := fundAndInvest(t, engine, ether(1000))
	require.NoError(t, engine.ForceCompleteProject(ownerAddr, id))

	refund, err := engine.ClaimRefund(investorAddr, id)
	require.NoError(t, err)

	require.NoError(t, monitor.processBatch())

	project, err := logic.NewProjectLogic(db).GetProject(id)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusCompleted, project.Status)
	require.NotNil(t, project.CompletedAt)

	refunds, total, err := logic.NewRefundRecordLogic(db).GetProjectRefundRecords(id, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, refund.String(), refunds[0].Amount)

	// The claimer's holding is zeroed by the projection.
	holding, err := logic.NewShareHoldingLogic(db).GetHolding(id, investorAddr.Hex())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), holding.Shares)
}

func TestMonitorProjectsRewardClaim(t *testing.T) {
	monitor, engine, db := newTestMonitor(t)
	id := fundAndInvest(t, engine, ether(1000))
	require.NoError(t, engine.FundRewardsPool(ownerAddr, ether(100)))
	require.NoError(t, engine.ForceCompleteProject(ownerAddr, id))

	reward, err := engine.ClaimRewards(investorAddr, 0)
	require.NoError(t, err)

	require.NoError(t, monitor.processBatch())

	stake, err := logic.NewStakeRecordLogic(db).GetStakeRecord(investorAddr.Hex(), 0)
	require.NoError(t, err)
	assert.True(t, stake.Claimed)
	assert.True(t, stake.IsActive)

	claims, total, err := logic.NewRewardClaimLogic(db).GetInvestorRewardClaims(investorAddr.Hex(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, reward.String(), claims[0].Reward)
	assert.False(t, claims[0].Unstaked)
}

func TestMonitorCursorAndIdempotency(t *testing.T) {
	monitor, engine, db := newTestMonitor(t)
	id := fundAndInvest(t, engine, ether(400))

	require.NoError(t, monitor.processBatch())
	firstSeq := monitor.lastSeq
	assert.Equal(t, engine.LastSeq(), firstSeq)

	// Nothing new: the cursor stays put and nothing is duplicated.
	require.NoError(t, monitor.processBatch())
	assert.Equal(t, firstSeq, monitor.lastSeq)

	_, total, err := logic.NewContributeRecordLogic(db).GetProjectContributeRecords(id, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	eventLogic := logic.NewEventLogic(db)
	lastSeq, err := eventLogic.GetLastSeq()
	require.NoError(t, err)
	assert.Equal(t, firstSeq, lastSeq)

	stats, err := eventLogic.GetEventStatistics(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats["pending_events"])
}

func TestMonitorResumesFromPersistedCursor(t *testing.T) {
	monitor, engine, _ := newTestMonitor(t)
	fundAndInvest(t, engine, ether(400))
	require.NoError(t, monitor.processBatch())

	// A fresh monitor on the same database starts where the old one
	// stopped.
	lastSeq, err := monitor.eventLogic.GetLastSeq()
	require.NoError(t, err)
	assert.Equal(t, monitor.lastSeq, lastSeq)
}

func TestMonitorSharesTransferred(t *testing.T) {
	monitor, engine, db := newTestMonitor(t)
	id := fundAndInvest(t, engine, ether(1000))

	other := common.HexToAddress("0x00000000000000000000000000000000000000c2")
	require.NoError(t, engine.TransferShares(investorAddr, id, other, 2500))

	require.NoError(t, monitor.processBatch())

	holdingLogic := logic.NewShareHoldingLogic(db)
	from, err := holdingLogic.GetHolding(id, investorAddr.Hex())
	require.NoError(t, err)
	to, err := holdingLogic.GetHolding(id, other.Hex())
	require.NoError(t, err)
	assert.Equal(t, uint64(7500), from.Shares)
	assert.Equal(t, uint64(2500), to.Shares)
}
