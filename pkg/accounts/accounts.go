package accounts

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// DefaultMnemonic is the well-known development mnemonic. Never fund its accounts.
const DefaultMnemonic = "test test test test test test test test test test test junk"

type Account struct {
	Name       string
	Address    common.Address
	PrivateKey *btcec.PrivateKey
}

// PrivateKeyHex returns the 0x-prefixed 32-byte private key.
func (account Account) PrivateKeyHex() string {
	if account.PrivateKey == nil {
		return ""
	}
	return "0x" + hex.EncodeToString(account.PrivateKey.Serialize())
}

func (account Account) String() string {
	if account.Name == "" {
		return account.Address.Hex()
	}
	return fmt.Sprintf("%s (%s)", account.Name, account.Address.Hex())
}

// AddressFromPublicKey hashes the uncompressed key without its 0x04 prefix.
func AddressFromPublicKey(publicKey *btcec.PublicKey) common.Address {
	uncompressed := publicKey.SerializeUncompressed()
	return common.BytesToAddress(crypto.Keccak256(uncompressed[1:])[12:])
}

func fromPrivateKey(name string, privateKey *btcec.PrivateKey) Account {
	return Account{
		Name:       name,
		Address:    AddressFromPublicKey(privateKey.PubKey()),
		PrivateKey: privateKey,
	}
}

// Generate creates a random account.
func Generate(name string) (Account, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return Account{}, fmt.Errorf("failed to generate private key: %w", err)
	}
	return fromPrivateKey(name, privateKey), nil
}

// FromPrivateKeyHex imports an account from a hex private key, with or without 0x.
func FromPrivateKeyHex(name string, value string) (Account, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if trimmed == "" {
		return Account{}, fmt.Errorf("private key is required")
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return Account{}, fmt.Errorf("invalid private key hex: %w", err)
	}
	if len(decoded) != 32 {
		return Account{}, fmt.Errorf("private key must be 32 bytes, got %d", len(decoded))
	}

	privateKey, _ := btcec.PrivKeyFromBytes(decoded)
	if privateKey.Key.IsZero() {
		return Account{}, fmt.Errorf("private key is out of range")
	}
	return fromPrivateKey(name, privateKey), nil
}

// NewMnemonic returns a fresh 12-word mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// DerivationPath is the BIP-44 Ethereum path; account i uses its last
// component i. Development wallets hand out the same keys for a mnemonic.
const DerivationPath = "m/44'/60'/0'/0"

// Derive returns the first count accounts of mnemonic on DerivationPath.
func Derive(mnemonic string, passphrase string, count int) ([]Account, error) {
	normalized := strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(normalized) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	if count < 0 {
		return nil, fmt.Errorf("count must not be negative")
	}

	master, err := hdkeychain.NewMaster(bip39.NewSeed(normalized, passphrase), &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	external, err := deriveChild(master,
		hdkeychain.HardenedKeyStart+44,
		hdkeychain.HardenedKeyStart+60,
		hdkeychain.HardenedKeyStart+0,
		0,
	)
	if err != nil {
		return nil, err
	}

	derived := make([]Account, 0, count)
	for index := 0; index < count; index++ {
		child, err := deriveChild(external, uint32(index))
		if err != nil {
			return nil, err
		}
		privateKey, err := child.ECPrivKey()
		if err != nil {
			return nil, fmt.Errorf("failed to read key %s/%d: %w", DerivationPath, index, err)
		}
		derived = append(derived, fromPrivateKey(fmt.Sprintf("account%d", index), privateKey))
	}
	return derived, nil
}

func deriveChild(key *hdkeychain.ExtendedKey, path ...uint32) (*hdkeychain.ExtendedKey, error) {
	for _, index := range path {
		child, err := key.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", index, err)
		}
		key = child
	}
	return key, nil
}

// ParseAddress accepts a 0x-prefixed 20-byte hex address.
func ParseAddress(value string) (common.Address, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid address %q", value)
	}
	return common.HexToAddress(trimmed), nil
}
