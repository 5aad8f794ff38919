package deployments

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/interlock-network/ilock-sdk-go/pkg/anchor"
)

// PendingSuffix names the file holding anchor messages a snapshot's events
// produced but the topic has not accepted yet.
const PendingSuffix = ".pending.json"

// PendingPath returns the pending-messages file kept next to statePath.
func PendingPath(statePath string) string {
	return strings.TrimSuffix(statePath, CompressedSuffix) + PendingSuffix
}

// ReadPending loads the messages saved at path. A missing file means
// nothing is pending.
func ReadPending(path string) ([]anchor.Message, error) {
	payload, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending messages: %w", err)
	}

	var messages []anchor.Message
	if err := json.Unmarshal(payload, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode pending messages %s: %w", path, err)
	}
	for index, message := range messages {
		if err := anchor.ValidateMessage(message); err != nil {
			return nil, fmt.Errorf("pending message %d in %s: %w", index, path, err)
		}
		if index > 0 && message.Kind != anchor.KindCheckpoint && message.Sequence <= messages[index-1].Sequence {
			return nil, fmt.Errorf("pending message %d in %s is out of order", index, path)
		}
	}
	return messages, nil
}

// WritePending saves messages to path, removing the file once nothing is
// left to anchor.
func WritePending(path string, messages []anchor.Message) error {
	if len(messages) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}

	payload, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pending messages: %w", err)
	}
	return writeFileAtomic(path, append(payload, '\n'))
}
