package event

import (
	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/blues/sfs/internal/logic"
	"github.com/blues/sfs/internal/model"
)

// RefundProcessor projects RefundClaimed events: one payout record, and
// the claimer's share balance drops to zero.
type RefundProcessor struct {
	refundLogic  *logic.RefundRecordLogic
	holdingLogic *logic.ShareHoldingLogic
}

func NewRefundProcessor(refundLogic *logic.RefundRecordLogic, holdingLogic *logic.ShareHoldingLogic) *RefundProcessor {
	return &RefundProcessor{
		refundLogic:  refundLogic,
		holdingLogic: holdingLogic,
	}
}

func (p *RefundProcessor) Process(ev ledger.Event) error {
	investor := ev.Data["investor"]

	record := model.RefundRecordModel{
		ProjectId:  ev.ProjectID,
		Investor:   investor,
		Amount:     ev.Data["amount"],
		Shares:     dataUint64(ev, "shares"),
		TxHash:     ev.TxID.Hex(),
		RefundedAt: ev.At,
	}
	if err := p.refundLogic.CreateRefundRecord(&record); err != nil {
		logger.Error("Failed to create refund record: %v", err)
		return err
	}

	if err := p.holdingLogic.SetShares(ev.ProjectID, investor, 0); err != nil {
		return err
	}

	logger.Info("Projected refund of %s to %s for project %d", record.Amount, investor, ev.ProjectID)
	return nil
}
