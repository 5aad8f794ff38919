package anchor

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
)

const (
	ProtocolID = "ilock-events"

	// MaxMessageBytes is the largest payload that fits in one HCS chunk.
	MaxMessageBytes = 1024
)

// Message is the on-topic form of one ilock.Event. Addresses are hex,
// amounts are decimal strings, and zero addresses are omitted.
type Message struct {
	Protocol  string `json:"p"`
	Token     string `json:"token"`
	Sequence  uint64 `json:"seq"`
	Kind      string `json:"op"`
	Timestamp uint64 `json:"ts"`

	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Amount  string `json:"amt,omitempty"`
	Owner   string `json:"owner,omitempty"`
	Spender string `json:"spender,omitempty"`
	Account string `json:"account,omitempty"`
	Sender  string `json:"sender,omitempty"`
	Role    string `json:"role,omitempty"`

	PreviousOwner string `json:"prevOwner,omitempty"`
	NewOwner      string `json:"newOwner,omitempty"`

	Duration  uint64 `json:"duration,omitempty"`
	Threshold string `json:"threshold,omitempty"`

	StateHash string `json:"state_hash,omitempty"`
}

// MessageFromEvent converts event into its topic message.
func MessageFromEvent(tokenName string, event ilock.Event) Message {
	message := Message{
		Protocol:  ProtocolID,
		Token:     tokenName,
		Sequence:  event.Sequence,
		Kind:      string(event.Kind),
		Timestamp: event.Timestamp,
	}

	switch event.Kind {
	case ilock.EventTransfer:
		message.From = addressString(event.From)
		message.To = addressString(event.To)
		message.Amount = amountString(event.Amount)
	case ilock.EventApproval:
		message.Owner = addressString(event.Owner)
		message.Spender = addressString(event.Spender)
		message.Amount = amountString(event.Amount)
	case ilock.EventPaused, ilock.EventUnpaused:
		message.Account = addressString(event.Account)
	case ilock.EventRoleGranted, ilock.EventRoleRevoked:
		message.Role = event.Role.Hex()
		message.Account = addressString(event.Account)
		message.Sender = addressString(event.Sender)
	case ilock.EventOwnershipTransferred:
		message.PreviousOwner = addressString(event.PreviousOwner)
		message.NewOwner = addressString(event.NewOwner)
	case ilock.EventCooldownConfigured:
		message.Duration = event.Duration
		message.Threshold = amountString(event.Threshold)
	}
	return message
}

// Event converts a validated message back into an ilock.Event.
func (message Message) Event() (ilock.Event, error) {
	if err := ValidateMessage(message); err != nil {
		return ilock.Event{}, err
	}
	if message.Kind == KindCheckpoint {
		return ilock.Event{}, NewInvalidMessageError("checkpoint is not an event")
	}

	event := ilock.Event{
		Sequence:      message.Sequence,
		Kind:          ilock.EventKind(message.Kind),
		Timestamp:     message.Timestamp,
		From:          parseAddress(message.From),
		To:            parseAddress(message.To),
		Owner:         parseAddress(message.Owner),
		Spender:       parseAddress(message.Spender),
		Account:       parseAddress(message.Account),
		Sender:        parseAddress(message.Sender),
		PreviousOwner: parseAddress(message.PreviousOwner),
		NewOwner:      parseAddress(message.NewOwner),
		Duration:      message.Duration,
	}
	if message.Amount != "" {
		event.Amount, _ = uint256.FromDecimal(message.Amount)
	}
	if message.Threshold != "" {
		event.Threshold, _ = uint256.FromDecimal(message.Threshold)
	}
	if message.Role != "" {
		event.Role, _ = ilock.ParseRole(message.Role)
	}
	return event, nil
}

// ValidateMessage checks the envelope and the fields the kind requires.
func ValidateMessage(message Message) error {
	if message.Protocol != ProtocolID {
		return NewInvalidMessageError(fmt.Sprintf("protocol must be %q", ProtocolID))
	}
	if strings.TrimSpace(message.Token) == "" {
		return NewInvalidMessageError("token is required")
	}
	if message.Sequence == 0 {
		return NewInvalidMessageError("sequence must be positive")
	}

	for field, value := range map[string]string{
		"from":      message.From,
		"to":        message.To,
		"owner":     message.Owner,
		"spender":   message.Spender,
		"account":   message.Account,
		"sender":    message.Sender,
		"prevOwner": message.PreviousOwner,
		"newOwner":  message.NewOwner,
	} {
		if value != "" && !common.IsHexAddress(value) {
			return NewInvalidMessageError(fmt.Sprintf("%s %q is not an address", field, value))
		}
	}
	for field, value := range map[string]string{"amt": message.Amount, "threshold": message.Threshold} {
		if value == "" {
			continue
		}
		if _, err := uint256.FromDecimal(value); err != nil {
			return NewInvalidMessageError(fmt.Sprintf("%s %q is not an amount", field, value))
		}
	}

	switch ilock.EventKind(message.Kind) {
	case ilock.EventTransfer:
		if message.Amount == "" {
			return NewInvalidMessageError("transfer requires amt")
		}
		if message.From == "" && message.To == "" {
			return NewInvalidMessageError("transfer requires from or to")
		}
	case ilock.EventApproval:
		if message.Owner == "" || message.Spender == "" || message.Amount == "" {
			return NewInvalidMessageError("approval requires owner, spender and amt")
		}
	case ilock.EventPaused, ilock.EventUnpaused:
		if message.Account == "" {
			return NewInvalidMessageError(message.Kind + " requires account")
		}
	case ilock.EventRoleGranted, ilock.EventRoleRevoked:
		if message.Account == "" {
			return NewInvalidMessageError(message.Kind + " requires account")
		}
		if _, err := ilock.ParseRole(message.Role); err != nil {
			return NewInvalidMessageError(err.Error())
		}
	case ilock.EventOwnershipTransferred:
	case ilock.EventCooldownConfigured:
		if message.Threshold == "" {
			return NewInvalidMessageError("cooldown configuration requires threshold")
		}
	case KindCheckpoint:
		if _, err := hex.DecodeString(message.StateHash); err != nil || len(message.StateHash) != stateHashLength {
			return NewInvalidMessageError("checkpoint requires a sha384 state_hash")
		}
	default:
		return NewInvalidMessageError(fmt.Sprintf("unsupported op %q", message.Kind))
	}
	return nil
}

// BuildMessagePayload validates and serializes a message.
func BuildMessagePayload(message Message) ([]byte, error) {
	if err := ValidateMessage(message); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal anchor message: %w", err)
	}
	if len(payload) > MaxMessageBytes {
		return nil, NewInvalidMessageError(fmt.Sprintf("payload is %d bytes, limit is %d", len(payload), MaxMessageBytes))
	}
	return payload, nil
}

func ParseMessageBytes(payload []byte) (Message, error) {
	var message Message
	if err := json.Unmarshal(payload, &message); err != nil {
		return Message{}, fmt.Errorf("failed to decode anchor message: %w", err)
	}
	if err := ValidateMessage(message); err != nil {
		return Message{}, err
	}
	return message, nil
}

func addressString(address common.Address) string {
	if address == (common.Address{}) {
		return ""
	}
	return address.Hex()
}

func parseAddress(value string) common.Address {
	if value == "" {
		return common.Address{}
	}
	return common.HexToAddress(value)
}

func amountString(amount *uint256.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.Dec()
}
