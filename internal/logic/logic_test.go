package logic

import (
	"fmt"
	"testing"
	"time"

	"github.com/blues/sfs/internal/database"
	"github.com/blues/sfs/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	return db
}

func testProject(ledgerId uint64) *model.ProjectModel {
	return &model.ProjectModel{
		LedgerId:       ledgerId,
		Title:          "Serie One",
		Description:    "Season funding",
		FundingGoal:    "1000000000000000000000",
		CurrentFunding: "0",
		DurationDays:   365,
		StartTime:      time.Unix(1_700_000_000, 0),
		Producer:       "0x00000000000000000000000000000000000000b1",
		Status:         model.ProjectStatusWaitingForFunds,
	}
}

func TestUpsertProjectRefreshesExistingRow(t *testing.T) {
	db := openTestDB(t)
	projectLogic := NewProjectLogic(db)

	require.NoError(t, projectLogic.UpsertProject(testProject(1)))

	updated := testProject(1)
	updated.CurrentFunding = "500"
	updated.Status = model.ProjectStatusInProduction
	require.NoError(t, projectLogic.UpsertProject(updated))

	got, err := projectLogic.GetProject(1)
	require.NoError(t, err)
	assert.Equal(t, "500", got.CurrentFunding)
	assert.Equal(t, model.ProjectStatusInProduction, got.Status)

	var count int64
	db.Model(&model.ProjectModel{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpsertProjectValidation(t *testing.T) {
	projectLogic := NewProjectLogic(openTestDB(t))

	missingTitle := testProject(1)
	missingTitle.Title = ""
	assert.Error(t, projectLogic.UpsertProject(missingTitle))

	missingGoal := testProject(1)
	missingGoal.FundingGoal = ""
	assert.Error(t, projectLogic.UpsertProject(missingGoal))
}

func TestGetProjectNotFound(t *testing.T) {
	projectLogic := NewProjectLogic(openTestDB(t))
	_, err := projectLogic.GetProject(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusAndFunding(t *testing.T) {
	projectLogic := NewProjectLogic(openTestDB(t))
	require.NoError(t, projectLogic.UpsertProject(testProject(1)))

	completedAt := time.Unix(1_700_100_000, 0)
	require.NoError(t, projectLogic.UpdateStatus(1, model.ProjectStatusCompleted, &completedAt))
	require.NoError(t, projectLogic.UpdateFunding(1, "750"))

	got, err := projectLogic.GetProject(1)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusCompleted, got.Status)
	assert.Equal(t, "750", got.CurrentFunding)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, completedAt.Unix(), got.CompletedAt.Unix())
}

func TestGetProjectsFilters(t *testing.T) {
	projectLogic := NewProjectLogic(openTestDB(t))

	first := testProject(1)
	require.NoError(t, projectLogic.UpsertProject(first))

	second := testProject(2)
	second.Producer = "0x00000000000000000000000000000000000000b2"
	second.Status = model.ProjectStatusInProduction
	require.NoError(t, projectLogic.UpsertProject(second))

	projects, total, err := projectLogic.GetProjects("", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, projects, 2)

	projects, total, err = projectLogic.GetProjects(string(model.ProjectStatusInProduction), "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, uint64(2), projects[0].LedgerId)

	_, total, err = projectLogic.GetProjects("", first.Producer, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestContributeRecordIdempotentByTxHash(t *testing.T) {
	contributeLogic := NewContributeRecordLogic(openTestDB(t))

	record := &model.ContributeRecordModel{
		ProjectId:     1,
		Investor:      "0x00000000000000000000000000000000000000c1",
		Amount:        "400",
		Shares:        4000,
		TxHash:        "0xabc",
		ContributedAt: time.Unix(1_700_000_100, 0),
	}
	require.NoError(t, contributeLogic.CreateContributeRecord(record))

	replay := *record
	replay.Id = 0
	require.NoError(t, contributeLogic.CreateContributeRecord(&replay))

	_, total, err := contributeLogic.GetProjectContributeRecords(1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	stats, err := contributeLogic.GetContributeStats(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["total_contributions"])
	assert.Equal(t, int64(1), stats["unique_investors"])
}

func TestShareHoldingArithmetic(t *testing.T) {
	holdingLogic := NewShareHoldingLogic(openTestDB(t))
	holder := "0x00000000000000000000000000000000000000c1"

	require.NoError(t, holdingLogic.AddShares(1, holder, 4000))
	require.NoError(t, holdingLogic.AddShares(1, holder, 2000))

	holding, err := holdingLogic.GetHolding(1, holder)
	require.NoError(t, err)
	assert.Equal(t, uint64(6000), holding.Shares)

	require.NoError(t, holdingLogic.SubShares(1, holder, 1000))
	holding, err = holdingLogic.GetHolding(1, holder)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), holding.Shares)

	// Oversubtraction floors at zero instead of wrapping.
	require.NoError(t, holdingLogic.SubShares(1, holder, 99999))
	holding, err = holdingLogic.GetHolding(1, holder)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), holding.Shares)

	holdings, err := holdingLogic.GetProjectHoldings(1)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestStakeRecordLifecycle(t *testing.T) {
	stakeLogic := NewStakeRecordLogic(openTestDB(t))
	investor := "0x00000000000000000000000000000000000000c1"

	record := &model.StakeRecordModel{
		ProjectId:  1,
		Investor:   investor,
		StakeIndex: 0,
		Amount:     "400",
		StakedAt:   time.Unix(1_700_000_100, 0),
		IsActive:   true,
	}
	require.NoError(t, stakeLogic.CreateStakeRecord(record))

	replay := *record
	replay.Id = 0
	require.NoError(t, stakeLogic.CreateStakeRecord(&replay))

	stakes, err := stakeLogic.GetInvestorStakes(investor)
	require.NoError(t, err)
	require.Len(t, stakes, 1)

	require.NoError(t, stakeLogic.MarkClaimed(investor, 0))
	got, err := stakeLogic.GetStakeRecord(investor, 0)
	require.NoError(t, err)
	assert.True(t, got.Claimed)
	assert.True(t, got.IsActive)

	require.NoError(t, stakeLogic.MarkUnstaked(investor, 0))
	got, err = stakeLogic.GetStakeRecord(investor, 0)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := stakeLogic.GetProjectStakes(1, true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestEventCursorAndStatistics(t *testing.T) {
	eventLogic := NewEventLogic(openTestDB(t))

	lastSeq, err := eventLogic.GetLastSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), lastSeq)

	for seq := uint64(1); seq <= 3; seq++ {
		require.NoError(t, eventLogic.CreateEvent(&model.EventModel{
			Seq:        seq,
			ProjectId:  1,
			EventType:  "ProjectFunded",
			TxHash:     fmt.Sprintf("0x%02d", seq),
			Data:       "{}",
			OccurredAt: time.Unix(1_700_000_000+int64(seq), 0),
		}))
	}

	// Replaying a persisted seq is a no-op.
	require.NoError(t, eventLogic.CreateEvent(&model.EventModel{
		Seq: 2, EventType: "ProjectFunded", TxHash: "0xdup",
	}))

	lastSeq, err = eventLogic.GetLastSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), lastSeq)

	require.NoError(t, eventLogic.UpdateEventProcessed(1, true))

	stats, err := eventLogic.GetEventStatistics(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats["total_events"])
	assert.Equal(t, int64(1), stats["processed_events"])
	assert.Equal(t, int64(2), stats["pending_events"])

	pending, err := eventLogic.GetUnprocessedEvents(10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, uint64(2), pending[0].Seq)
}

func TestProjectStatsAggregation(t *testing.T) {
	db := openTestDB(t)
	projectLogic := NewProjectLogic(db)
	contributeLogic := NewContributeRecordLogic(db)
	holdingLogic := NewShareHoldingLogic(db)

	require.NoError(t, projectLogic.UpsertProject(testProject(1)))

	investors := []string{
		"0x00000000000000000000000000000000000000c1",
		"0x00000000000000000000000000000000000000c2",
	}
	for i, investor := range investors {
		require.NoError(t, contributeLogic.CreateContributeRecord(&model.ContributeRecordModel{
			ProjectId: 1,
			Investor:  investor,
			Amount:    "100",
			Shares:    1000,
			TxHash:    fmt.Sprintf("0x%02d", i),
		}))
		require.NoError(t, holdingLogic.AddShares(1, investor, 1000))
	}

	stats, err := projectLogic.GetProjectStats(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["contribution_count"])
	assert.Equal(t, int64(2), stats["investor_count"])
	assert.Equal(t, int64(2), stats["holder_count"])

	all, err := projectLogic.GetAllProjectStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), all["total_projects"])
	assert.Equal(t, int64(1), all["waiting_projects"])
	assert.Equal(t, int64(2), all["total_investors"])

	_, err = projectLogic.GetProjectStats(99)
	assert.ErrorIs(t, err, ErrNotFound)
}
