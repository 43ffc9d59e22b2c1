package event

import (
	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/blues/sfs/internal/logic"
)

// ShareProcessor projects SharesTransferred events onto the share holding
// table.
type ShareProcessor struct {
	holdingLogic *logic.ShareHoldingLogic
}

func NewShareProcessor(holdingLogic *logic.ShareHoldingLogic) *ShareProcessor {
	return &ShareProcessor{holdingLogic: holdingLogic}
}

func (p *ShareProcessor) Process(ev ledger.Event) error {
	from := ev.Data["from"]
	to := ev.Data["to"]
	shares := dataUint64(ev, "shares")

	if err := p.holdingLogic.SubShares(ev.ProjectID, from, shares); err != nil {
		return err
	}
	if err := p.holdingLogic.AddShares(ev.ProjectID, to, shares); err != nil {
		return err
	}

	logger.Info("Projected transfer of %d shares from %s to %s in project %d", shares, from, to, ev.ProjectID)
	return nil
}
