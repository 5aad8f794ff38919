package anchor

import (
	"errors"
	"fmt"
)

// ErrQueueFull is returned when a Publisher cannot hold more messages.
var ErrQueueFull = errors.New("anchor: queue full")

type AnchorError struct {
	Message string
}

func (errorValue AnchorError) Error() string {
	return errorValue.Message
}

type InvalidMessageError struct {
	AnchorError
	Reason string
}

// NewInvalidMessageError creates a new InvalidMessageError.
func NewInvalidMessageError(reason string) error {
	return InvalidMessageError{
		AnchorError: AnchorError{Message: "invalid anchor message: " + reason},
		Reason:      reason,
	}
}

// SequenceGapError means the topic skipped one or more ledger events, so
// the replay cannot continue.
type SequenceGapError struct {
	AnchorError
	Expected uint64
	Received uint64
}

func NewSequenceGapError(expected uint64, received uint64) error {
	return SequenceGapError{
		AnchorError: AnchorError{Message: fmt.Sprintf("expected event %d, topic has %d", expected, received)},
		Expected:    expected,
		Received:    received,
	}
}

// ReplayError reports an event that cannot apply to the replayed state.
type ReplayError struct {
	AnchorError
	Sequence uint64
}

func NewReplayError(sequence uint64, format string, arguments ...any) error {
	return ReplayError{
		AnchorError: AnchorError{Message: fmt.Sprintf("event %d: %s", sequence, fmt.Sprintf(format, arguments...))},
		Sequence:    sequence,
	}
}

// AuditMismatchError lists every difference between a replay and a snapshot.
type AuditMismatchError struct {
	AnchorError
	Differences []string
}

func NewAuditMismatchError(differences []string) error {
	return AuditMismatchError{
		AnchorError: AnchorError{Message: fmt.Sprintf("replay differs from snapshot in %d places", len(differences))},
		Differences: append([]string{}, differences...),
	}
}
