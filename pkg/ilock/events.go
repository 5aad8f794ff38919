package ilock

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type EventKind string

const (
	EventTransfer             EventKind = "Transfer"
	EventApproval             EventKind = "Approval"
	EventPaused               EventKind = "Paused"
	EventUnpaused             EventKind = "Unpaused"
	EventRoleGranted          EventKind = "RoleGranted"
	EventRoleRevoked          EventKind = "RoleRevoked"
	EventOwnershipTransferred EventKind = "OwnershipTransferred"
	EventCooldownConfigured   EventKind = "TransferCooldownConfigured"
)

// Event is one state change. Only the fields relevant to Kind are set:
//
//	Transfer                    From, To, Amount
//	Approval                    Owner, Spender, Amount
//	Paused, Unpaused            Account
//	RoleGranted, RoleRevoked    Role, Account, Sender
//	OwnershipTransferred        PreviousOwner, NewOwner
//	TransferCooldownConfigured  Duration, Threshold
type Event struct {
	Sequence  uint64
	Kind      EventKind
	Timestamp uint64

	From   common.Address
	To     common.Address
	Amount *uint256.Int

	Owner   common.Address
	Spender common.Address

	Account common.Address
	Sender  common.Address
	Role    Role

	PreviousOwner common.Address
	NewOwner      common.Address

	Duration  uint64
	Threshold *uint256.Int
}

// EventSink receives events in commit order. HandleEvent runs while the
// token lock is held and must not call back into the token.
type EventSink interface {
	HandleEvent(event Event)
}

type EventSinkFunc func(event Event)

func (sinkFunc EventSinkFunc) HandleEvent(event Event) {
	sinkFunc(event)
}

// EventLog is an in-memory EventSink.
type EventLog struct {
	mutex  sync.RWMutex
	events []Event
}

func NewEventLog() *EventLog {
	return &EventLog{events: []Event{}}
}

func (log *EventLog) HandleEvent(event Event) {
	log.mutex.Lock()
	log.events = append(log.events, event)
	log.mutex.Unlock()
}

// Events returns a copy of every recorded event.
func (log *EventLog) Events() []Event {
	log.mutex.RLock()
	defer log.mutex.RUnlock()
	events := make([]Event, len(log.events))
	copy(events, log.events)
	return events
}

// Last returns the most recent event.
func (log *EventLog) Last() (Event, bool) {
	log.mutex.RLock()
	defer log.mutex.RUnlock()
	if len(log.events) == 0 {
		return Event{}, false
	}
	return log.events[len(log.events)-1], true
}

// Filter returns recorded events of the given kind.
func (log *EventLog) Filter(kind EventKind) []Event {
	log.mutex.RLock()
	defer log.mutex.RUnlock()
	filtered := make([]Event, 0)
	for _, event := range log.events {
		if event.Kind == kind {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

func (log *EventLog) Len() int {
	log.mutex.RLock()
	defer log.mutex.RUnlock()
	return len(log.events)
}
