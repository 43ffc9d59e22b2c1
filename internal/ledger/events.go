package ledger

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EventType names the ledger events, matching the contract event names.
type EventType string

const (
	EventProjectCreated       EventType = "ProjectCreated"
	EventProjectFunded        EventType = "ProjectFunded"
	EventSharesTransferred    EventType = "SharesTransferred"
	EventProjectStatusChanged EventType = "ProjectStatusChanged"
	EventRefundClaimed        EventType = "RefundClaimed"
	EventStakeOpened          EventType = "StakeOpened"
	EventRewardsClaimed       EventType = "RewardsClaimed"
	EventUnstaked             EventType = "Unstaked"
)

// Event is one entry of the append-only ledger feed. The feed is the
// enumerable source consumers read from; nothing is reconstructed by
// replaying it back into the engine.
type Event struct {
	Seq       uint64            `json:"seq"`
	Type      EventType         `json:"type"`
	At        time.Time         `json:"at"`
	TxID      common.Hash       `json:"tx_id"`
	ProjectID uint64            `json:"project_id"`
	Data      map[string]string `json:"data"`
}

// eventFeed is the in-memory append-only event log. Sequence numbers start
// at 1 and never repeat; access is serialized by the Engine.
type eventFeed struct {
	events []Event
}

func (f *eventFeed) append(typ EventType, at time.Time, projectID uint64, data map[string]string) Event {
	seq := uint64(len(f.events)) + 1
	ev := Event{
		Seq:       seq,
		Type:      typ,
		At:        at,
		TxID:      eventTxID(seq, typ, at),
		ProjectID: projectID,
		Data:      data,
	}
	f.events = append(f.events, ev)
	return ev
}

// since returns up to limit events with Seq > after, oldest first.
// limit <= 0 means no limit.
func (f *eventFeed) since(after uint64, limit int) []Event {
	if after >= uint64(len(f.events)) {
		return nil
	}
	out := f.events[after:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	cp := make([]Event, len(out))
	copy(cp, out)
	return cp
}

func (f *eventFeed) lastSeq() uint64 {
	return uint64(len(f.events))
}

func u64str(v uint64) string { return strconv.FormatUint(v, 10) }

// eventTxID derives a stable pseudo transaction hash for an event so read
// models can key records the same way the chain indexer did.
func eventTxID(seq uint64, typ EventType, at time.Time) common.Hash {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], seq)
	binary.BigEndian.PutUint64(buf[8:], uint64(at.UnixNano()))
	return crypto.Keccak256Hash(buf[:], []byte(typ))
}
