package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

// NormalizeNetwork lowercases a network name. Empty means testnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkTestnet, nil
	}

	switch normalized {
	case NetworkMainnet, NetworkTestnet:
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported network %q", network)
	}
}

// NewHederaClient creates a new HederaClient.
func NewHederaClient(network string) (*hedera.Client, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}

	if normalized == NetworkMainnet {
		return hedera.ClientForMainnet(), nil
	}

	return hedera.ClientForTestnet(), nil
}

// NewOperatorClient returns a client for config.Network that signs as the operator.
func NewOperatorClient(config OperatorConfig) (*hedera.Client, hedera.AccountID, hedera.PrivateKey, error) {
	operatorID, err := hedera.AccountIDFromString(strings.TrimSpace(config.AccountID))
	if err != nil {
		return nil, hedera.AccountID{}, hedera.PrivateKey{}, fmt.Errorf("invalid operator account ID: %w", err)
	}
	operatorKey, err := ParsePrivateKey(config.PrivateKey)
	if err != nil {
		return nil, hedera.AccountID{}, hedera.PrivateKey{}, err
	}

	client, err := NewHederaClient(config.Network)
	if err != nil {
		return nil, hedera.AccountID{}, hedera.PrivateKey{}, err
	}
	client.SetOperator(operatorID, operatorKey)
	return client, operatorID, operatorKey, nil
}
