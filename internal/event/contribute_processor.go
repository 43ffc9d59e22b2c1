package event

import (
	"strconv"

	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/blues/sfs/internal/logic"
	"github.com/blues/sfs/internal/model"
)

// ContributeProcessor projects ProjectFunded events: one investment
// record, the project's running funding total and the investor's share
// balance.
type ContributeProcessor struct {
	contributeLogic *logic.ContributeRecordLogic
	projectLogic    *logic.ProjectLogic
	holdingLogic    *logic.ShareHoldingLogic
}

func NewContributeProcessor(contributeLogic *logic.ContributeRecordLogic, projectLogic *logic.ProjectLogic, holdingLogic *logic.ShareHoldingLogic) *ContributeProcessor {
	return &ContributeProcessor{
		contributeLogic: contributeLogic,
		projectLogic:    projectLogic,
		holdingLogic:    holdingLogic,
	}
}

func (p *ContributeProcessor) Process(ev ledger.Event) error {
	investor := ev.Data["investor"]
	amount := ev.Data["amount"]
	shares := dataUint64(ev, "shares")

	record := model.ContributeRecordModel{
		ProjectId:     ev.ProjectID,
		Investor:      investor,
		Amount:        amount,
		Shares:        shares,
		TxHash:        ev.TxID.Hex(),
		ContributedAt: ev.At,
	}
	if err := p.contributeLogic.CreateContributeRecord(&record); err != nil {
		logger.Error("Failed to create contribution record: %v", err)
		return err
	}

	if funding := ev.Data["funding"]; funding != "" {
		if err := p.projectLogic.UpdateFunding(ev.ProjectID, funding); err != nil {
			return err
		}
	}

	if err := p.holdingLogic.AddShares(ev.ProjectID, investor, shares); err != nil {
		return err
	}

	logger.Info("Projected contribution of %s from %s to project %d", amount, investor, ev.ProjectID)
	return nil
}

// dataUint64 reads a numeric payload field, zero if absent or malformed.
func dataUint64(ev ledger.Event, key string) uint64 {
	v, err := strconv.ParseUint(ev.Data[key], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
