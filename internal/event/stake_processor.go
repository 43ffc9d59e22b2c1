package event

import (
	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/blues/sfs/internal/logic"
	"github.com/blues/sfs/internal/model"
)

// StakeProcessor projects the staking ledger events: stake creation,
// reward claims and unstakes.
type StakeProcessor struct {
	stakeLogic  *logic.StakeRecordLogic
	rewardLogic *logic.RewardClaimLogic
}

func NewStakeProcessor(stakeLogic *logic.StakeRecordLogic, rewardLogic *logic.RewardClaimLogic) *StakeProcessor {
	return &StakeProcessor{
		stakeLogic:  stakeLogic,
		rewardLogic: rewardLogic,
	}
}

func (p *StakeProcessor) Process(ev ledger.Event) error {
	switch ev.Type {
	case ledger.EventStakeOpened:
		return p.processStakeOpened(ev)
	case ledger.EventRewardsClaimed:
		return p.processRewardsClaimed(ev)
	case ledger.EventUnstaked:
		return p.processUnstaked(ev)
	default:
		logger.Warn("Stake processor received unexpected event type: %s", ev.Type)
		return nil
	}
}

func (p *StakeProcessor) processStakeOpened(ev ledger.Event) error {
	record := model.StakeRecordModel{
		ProjectId:  ev.ProjectID,
		Investor:   ev.Data["investor"],
		StakeIndex: dataUint64(ev, "stake_index"),
		Amount:     ev.Data["amount"],
		StakedAt:   ev.At,
		IsActive:   true,
	}
	if err := p.stakeLogic.CreateStakeRecord(&record); err != nil {
		logger.Error("Failed to create stake record: %v", err)
		return err
	}
	logger.Info("Projected stake of %s by %s for project %d", record.Amount, record.Investor, ev.ProjectID)
	return nil
}

func (p *StakeProcessor) processRewardsClaimed(ev ledger.Event) error {
	investor := ev.Data["investor"]
	stakeIndex := dataUint64(ev, "stake_index")

	if err := p.stakeLogic.MarkClaimed(investor, stakeIndex); err != nil {
		return err
	}
	return p.rewardLogic.CreateRewardClaim(&model.RewardClaimModel{
		ProjectId:  ev.ProjectID,
		Investor:   investor,
		StakeIndex: stakeIndex,
		Reward:     ev.Data["reward"],
		TxHash:     ev.TxID.Hex(),
		ClaimedAt:  ev.At,
	})
}

func (p *StakeProcessor) processUnstaked(ev ledger.Event) error {
	investor := ev.Data["investor"]
	stakeIndex := dataUint64(ev, "stake_index")

	if err := p.stakeLogic.MarkUnstaked(investor, stakeIndex); err != nil {
		return err
	}
	return p.rewardLogic.CreateRewardClaim(&model.RewardClaimModel{
		ProjectId:  ev.ProjectID,
		Investor:   investor,
		StakeIndex: stakeIndex,
		Reward:     ev.Data["reward"],
		Unstaked:   true,
		TxHash:     ev.TxID.Hex(),
		ClaimedAt:  ev.At,
	})
}
