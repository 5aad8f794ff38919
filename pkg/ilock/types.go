package ilock

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

const (
	DefaultName     = "InterlockNetwork"
	DefaultSymbol   = "ILOCK"
	DefaultDecimals = 18

	// DefaultCooldownDuration is one day in seconds.
	DefaultCooldownDuration uint64 = 60 * 60 * 24
)

// Role identifies a privilege as the keccak256 hash of its name.
type Role common.Hash

var (
	DefaultAdminRole = Role{}
	PauserRole       = NewRole("PAUSER_ROLE")
	MinterRole       = NewRole("MINTER_ROLE")
	BurnerRole       = NewRole("BURNER_ROLE")
)

var knownRoles = map[Role]string{
	DefaultAdminRole: "DEFAULT_ADMIN_ROLE",
	PauserRole:       "PAUSER_ROLE",
	MinterRole:       "MINTER_ROLE",
	BurnerRole:       "BURNER_ROLE",
}

// NewRole hashes a role name.
func NewRole(name string) Role {
	return Role(crypto.Keccak256Hash([]byte(name)))
}

// ParseRole accepts a known role name (with or without the _ROLE suffix) or a 0x-prefixed hash.
func ParseRole(value string) (Role, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Role{}, fmt.Errorf("role is required")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasSuffix(upper, "_ROLE") {
		upper += "_ROLE"
	}
	for role, name := range knownRoles {
		if name == upper {
			return role, nil
		}
	}

	if strings.HasPrefix(trimmed, "0x") && len(trimmed) == 66 {
		return Role(common.HexToHash(trimmed)), nil
	}

	return Role{}, fmt.Errorf("unknown role %q", value)
}

// Hex returns the 0x-prefixed role hash.
func (role Role) Hex() string {
	return common.Hash(role).Hex()
}

// Name returns the role name when known, otherwise the hash.
func (role Role) Name() string {
	if name, ok := knownRoles[role]; ok {
		return name
	}
	return role.Hex()
}

func (role Role) String() string {
	return role.Name()
}

// Variant selects the access model and genesis distribution.
type Variant string

const (
	VariantRoles    Variant = "roles"
	VariantTreasury Variant = "treasury"
)

// ParseVariant returns the variant for a name, defaulting to VariantRoles.
func ParseVariant(value string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(value))) {
	case "", VariantRoles:
		return VariantRoles, nil
	case VariantTreasury:
		return VariantTreasury, nil
	default:
		return "", fmt.Errorf("unsupported variant %q", value)
	}
}

// Operation names a privileged entry point checked by an Authority.
type Operation string

const (
	OperationMint              Operation = "mint"
	OperationBurn              Operation = "burn"
	OperationPause             Operation = "pause"
	OperationUnpause           Operation = "unpause"
	OperationSetUpCooldown     Operation = "setUpCooldown"
	OperationTreasuryApprove   Operation = "treasuryApprove"
	OperationGrantRole         Operation = "grantRole"
	OperationRevokeRole        Operation = "revokeRole"
	OperationRenounceRole      Operation = "renounceRole"
	OperationTransferOwnership Operation = "transferOwnership"
	OperationRenounceOwnership Operation = "renounceOwnership"
)

// Settings configures a token at genesis.
type Settings struct {
	Name     string
	Symbol   string
	Decimals uint8

	InitialSupply *uint256.Int
	Cap           *uint256.Int

	CooldownDuration  uint64
	CooldownThreshold *uint256.Int

	Variant Variant

	// TreasuryAddress is the token's own account in VariantTreasury. When
	// zero it is derived from the token name.
	TreasuryAddress common.Address
}

// DefaultSettings returns the production ILOCK parameters.
func DefaultSettings() Settings {
	return Settings{
		Name:              DefaultName,
		Symbol:            DefaultSymbol,
		Decimals:          DefaultDecimals,
		InitialSupply:     Tokens(700_000_000),
		Cap:               Tokens(1_000_000_000),
		CooldownDuration:  DefaultCooldownDuration,
		CooldownThreshold: Tokens(7_000_000),
		Variant:           VariantRoles,
	}
}

// Validate checks the settings for internal consistency.
func (settings Settings) Validate() error {
	validationErrors := make([]string, 0)

	if strings.TrimSpace(settings.Name) == "" {
		validationErrors = append(validationErrors, "name is required")
	}
	if strings.TrimSpace(settings.Symbol) == "" {
		validationErrors = append(validationErrors, "symbol is required")
	}
	if settings.Cap == nil || settings.Cap.IsZero() {
		validationErrors = append(validationErrors, "cap must be positive")
	}
	if settings.InitialSupply == nil {
		validationErrors = append(validationErrors, "initial supply is required")
	} else if settings.Cap != nil && settings.InitialSupply.Gt(settings.Cap) {
		validationErrors = append(validationErrors, "initial supply exceeds cap")
	}
	if settings.CooldownThreshold == nil {
		validationErrors = append(validationErrors, "cooldown threshold is required")
	}
	if _, err := ParseVariant(string(settings.Variant)); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if len(validationErrors) > 0 {
		return NewSettingsValidationError(validationErrors)
	}
	return nil
}

func (settings Settings) treasury() common.Address {
	if settings.TreasuryAddress != (common.Address{}) {
		return settings.TreasuryAddress
	}
	return TreasuryAddressFor(settings.Name)
}

// TreasuryAddressFor derives the synthetic treasury account for a token name.
func TreasuryAddressFor(name string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("ilock.treasury"), []byte(name))[12:])
}
