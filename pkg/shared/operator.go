package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// OperatorConfig holds the Hedera operator used to anchor ledger events.
type OperatorConfig struct {
	AccountID  string
	PrivateKey string
	Network    string

	// AnchorTopicID is the HCS topic events are published to. Optional; a
	// publisher without one creates its own topic.
	AnchorTopicID string
}

var (
	accountIDKeys  = []string{"HEDERA_ACCOUNT_ID", "HEDERA_OPERATOR_ID", "ACCOUNT_ID", "OPERATOR_ID"}
	privateKeyKeys = []string{"HEDERA_PRIVATE_KEY", "HEDERA_OPERATOR_KEY", "PRIVATE_KEY", "OPERATOR_KEY"}
)

// scopedKeys prefixes every key with the network name, so MAINNET_HEDERA_ACCOUNT_ID
// overrides HEDERA_ACCOUNT_ID when the network is mainnet.
func scopedKeys(network string, keys []string) []string {
	prefix := strings.ToUpper(network) + "_"
	scoped := make([]string, 0, len(keys))
	for _, key := range keys {
		scoped = append(scoped, prefix+key)
	}
	return scoped
}

// OperatorConfigFromEnv reads the operator from the environment after loading .env.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	LoadDotEnv()

	network, err := NormalizeNetwork(firstNonEmptyEnv("HEDERA_NETWORK", "NETWORK"))
	if err != nil {
		return OperatorConfig{}, err
	}

	accountID := firstNonEmptyEnv(scopedKeys(network, accountIDKeys)...)
	if accountID == "" {
		accountID = firstNonEmptyEnv(accountIDKeys...)
	}
	privateKey := firstNonEmptyEnv(scopedKeys(network, privateKeyKeys)...)
	if privateKey == "" {
		privateKey = firstNonEmptyEnv(privateKeyKeys...)
	}

	if accountID == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_ACCOUNT_ID is required")
	}
	if privateKey == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_PRIVATE_KEY is required")
	}

	return OperatorConfig{
		AccountID:     accountID,
		PrivateKey:    privateKey,
		Network:       network,
		AnchorTopicID: firstNonEmptyEnv("ILOCK_ANCHOR_TOPIC_ID"),
	}, nil
}

// ParsePrivateKey parses the provided input value.
func ParsePrivateKey(raw string) (hedera.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.PrivateKey{}, fmt.Errorf("private key cannot be empty")
	}

	ed25519Key, edErr := hedera.PrivateKeyFromStringEd25519(candidate)
	if edErr == nil {
		return ed25519Key, nil
	}

	ecdsaKey, ecdsaErr := hedera.PrivateKeyFromStringECDSA(candidate)
	if ecdsaErr == nil {
		return ecdsaKey, nil
	}

	genericKey, genericErr := hedera.PrivateKeyFromString(candidate)
	if genericErr == nil {
		return genericKey, nil
	}

	return hedera.PrivateKey{}, fmt.Errorf(
		"failed to parse private key as ED25519 (%v), ECDSA (%v), or generic (%v)",
		edErr,
		ecdsaErr,
		genericErr,
	)
}
