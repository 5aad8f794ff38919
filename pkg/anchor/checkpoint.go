package anchor

import (
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
)

// KindCheckpoint marks a message carrying a state hash instead of an event.
const KindCheckpoint = "Checkpoint"

const stateHashLength = sha512.Size384 * 2

// StateHash is the hex sha384 of the snapshot's JSON. Snapshots order their
// accounts and grants, so equal ledgers hash equally.
func StateHash(state ilock.State) (string, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	hash := sha512.Sum384(payload)
	return hex.EncodeToString(hash[:]), nil
}

// CheckpointMessage builds the checkpoint for state. Its sequence is the
// last event the state includes.
func CheckpointMessage(state ilock.State) (Message, error) {
	stateHash, err := StateHash(state)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Protocol:  ProtocolID,
		Token:     state.Name,
		Sequence:  state.EventSequence,
		Kind:      KindCheckpoint,
		StateHash: stateHash,
	}, nil
}

// Checkpoint queues a checkpoint for state behind any pending events.
func (publisher *Publisher) Checkpoint(state ilock.State) error {
	message, err := CheckpointMessage(state)
	if err != nil {
		return err
	}
	if err := ValidateMessage(message); err != nil {
		return err
	}

	publisher.mutex.Lock()
	defer publisher.mutex.Unlock()
	if len(publisher.queue) >= publisher.queueSize {
		publisher.stats.Dropped++
		return fmt.Errorf("%w: checkpoint at event %d", ErrQueueFull, message.Sequence)
	}
	publisher.queue = append(publisher.queue, message)
	return nil
}

// Checkpoints returns the state hashes seen on the topic by event sequence.
func (indexer *Indexer) Checkpoints() map[uint64]string {
	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()
	checkpoints := make(map[uint64]string, len(indexer.checkpoints))
	for sequence, stateHash := range indexer.checkpoints {
		checkpoints[sequence] = stateHash
	}
	return checkpoints
}

// VerifyCheckpoint checks state against the checkpoint anchored at its
// event sequence. It reports false when no checkpoint exists there.
func (indexer *Indexer) VerifyCheckpoint(state ilock.State) (bool, error) {
	indexer.mutex.RLock()
	expected, ok := indexer.checkpoints[state.EventSequence]
	indexer.mutex.RUnlock()
	if !ok {
		return false, nil
	}

	stateHash, err := StateHash(state)
	if err != nil {
		return false, err
	}
	if stateHash != expected {
		return false, NewAuditMismatchError([]string{
			fmt.Sprintf("state hash at event %d: topic %s, snapshot %s", state.EventSequence, expected, stateHash),
		})
	}
	return true, nil
}
