package ilock

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Error kinds. Every typed error below unwraps to exactly one of them.
var (
	ErrUnauthorized          = errors.New("ilock: unauthorized")
	ErrBadConfirmation       = errors.New("ilock: bad confirmation")
	ErrExceededCap           = errors.New("ilock: exceeded cap")
	ErrInsufficientBalance   = errors.New("ilock: insufficient balance")
	ErrInsufficientAllowance = errors.New("ilock: insufficient allowance")
	ErrEnforcedPause         = errors.New("ilock: enforced pause")
	ErrExpectedPause         = errors.New("ilock: expected pause")
	ErrTransferCooldown      = errors.New("ilock: transfer cooldown")
	ErrInvalidAddress        = errors.New("ilock: invalid address")
	ErrInvalidAmount         = errors.New("ilock: invalid amount")
	ErrUnsupportedOperation  = errors.New("ilock: unsupported operation")
	ErrInvalidSettings       = errors.New("ilock: invalid settings")
	ErrInvalidSnapshot       = errors.New("ilock: invalid snapshot")
)

type LedgerError struct {
	Message string
	kind    error
}

func (errorValue LedgerError) Error() string {
	return errorValue.Message
}

func (errorValue LedgerError) Unwrap() error {
	return errorValue.kind
}

type UnauthorizedError struct {
	LedgerError
	Caller        common.Address
	Role          Role
	RequiresOwner bool
}

func NewMissingRoleError(caller common.Address, role Role) error {
	return UnauthorizedError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("account %s is missing role %s", caller.Hex(), role.Name()),
			kind:    ErrUnauthorized,
		},
		Caller: caller,
		Role:   role,
	}
}

func NewNotOwnerError(caller common.Address) error {
	return UnauthorizedError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("account %s is not the owner", caller.Hex()),
			kind:    ErrUnauthorized,
		},
		Caller:        caller,
		RequiresOwner: true,
	}
}

type BadConfirmationError struct {
	LedgerError
	Caller  common.Address
	Account common.Address
}

func NewBadConfirmationError(caller common.Address, account common.Address) error {
	return BadConfirmationError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("account %s can only renounce roles for itself, not %s", caller.Hex(), account.Hex()),
			kind:    ErrBadConfirmation,
		},
		Caller:  caller,
		Account: account,
	}
}

type ExceededCapError struct {
	LedgerError
	Supply *uint256.Int
	Cap    *uint256.Int
}

func NewExceededCapError(supply *uint256.Int, supplyCap *uint256.Int) error {
	return ExceededCapError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("supply %s exceeds cap %s", supply.Dec(), supplyCap.Dec()),
			kind:    ErrExceededCap,
		},
		Supply: supply.Clone(),
		Cap:    supplyCap.Clone(),
	}
}

type InsufficientBalanceError struct {
	LedgerError
	Account common.Address
	Balance *uint256.Int
	Needed  *uint256.Int
}

func NewInsufficientBalanceError(account common.Address, balance *uint256.Int, needed *uint256.Int) error {
	return InsufficientBalanceError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("account %s has balance %s, needs %s", account.Hex(), balance.Dec(), needed.Dec()),
			kind:    ErrInsufficientBalance,
		},
		Account: account,
		Balance: balance.Clone(),
		Needed:  needed.Clone(),
	}
}

type InsufficientAllowanceError struct {
	LedgerError
	Spender   common.Address
	Allowance *uint256.Int
	Needed    *uint256.Int
}

func NewInsufficientAllowanceError(spender common.Address, allowance *uint256.Int, needed *uint256.Int) error {
	return InsufficientAllowanceError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("spender %s has allowance %s, needs %s", spender.Hex(), allowance.Dec(), needed.Dec()),
			kind:    ErrInsufficientAllowance,
		},
		Spender:   spender,
		Allowance: allowance.Clone(),
		Needed:    needed.Clone(),
	}
}

type EnforcedPauseError struct {
	LedgerError
}

func NewEnforcedPauseError() error {
	return EnforcedPauseError{LedgerError: LedgerError{Message: "token is paused", kind: ErrEnforcedPause}}
}

type ExpectedPauseError struct {
	LedgerError
}

func NewExpectedPauseError() error {
	return ExpectedPauseError{LedgerError: LedgerError{Message: "token is not paused", kind: ErrExpectedPause}}
}

type TransferCooldownError struct {
	LedgerError
	Account common.Address
	// AvailableAt is the first timestamp at which a large transfer from Account passes the gate.
	AvailableAt uint64
}

func NewTransferCooldownError(account common.Address, availableAt uint64) error {
	return TransferCooldownError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("account %s is on transfer cooldown until %d", account.Hex(), availableAt),
			kind:    ErrTransferCooldown,
		},
		Account:     account,
		AvailableAt: availableAt,
	}
}

// InvalidAddressError reports a zero address in a position that forbids it.
// Field is one of sender, receiver, approver, spender or owner.
type InvalidAddressError struct {
	LedgerError
	Field   string
	Address common.Address
}

func NewInvalidAddressError(field string, address common.Address) error {
	return InvalidAddressError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("invalid %s %s", field, address.Hex()),
			kind:    ErrInvalidAddress,
		},
		Field:   field,
		Address: address,
	}
}

type InvalidAmountError struct {
	LedgerError
	Value string
}

func NewInvalidAmountError(value string) error {
	return InvalidAmountError{
		LedgerError: LedgerError{Message: fmt.Sprintf("invalid amount %q", value), kind: ErrInvalidAmount},
		Value:       value,
	}
}

type UnsupportedOperationError struct {
	LedgerError
	Operation Operation
	Variant   Variant
}

func NewUnsupportedOperationError(operation Operation, variant Variant) error {
	return UnsupportedOperationError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("%s is not available in the %s variant", operation, variant),
			kind:    ErrUnsupportedOperation,
		},
		Operation: operation,
		Variant:   variant,
	}
}

type SettingsValidationError struct {
	LedgerError
	ValidationErrors []string
}

func NewSettingsValidationError(validationErrors []string) error {
	return SettingsValidationError{
		LedgerError: LedgerError{
			Message: fmt.Sprintf("invalid settings: %s", strings.Join(validationErrors, "; ")),
			kind:    ErrInvalidSettings,
		},
		ValidationErrors: append([]string{}, validationErrors...),
	}
}

type InvalidSnapshotError struct {
	LedgerError
}

func newInvalidSnapshotError(format string, arguments ...any) error {
	return InvalidSnapshotError{LedgerError: LedgerError{
		Message: "invalid snapshot: " + fmt.Sprintf(format, arguments...),
		kind:    ErrInvalidSnapshot,
	}}
}

// IsAccessError reports whether err was caused by a missing privilege.
func IsAccessError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrBadConfirmation)
}

// IsGateError reports whether err came from the pause or cooldown gate.
func IsGateError(err error) bool {
	return errors.Is(err, ErrEnforcedPause) ||
		errors.Is(err, ErrExpectedPause) ||
		errors.Is(err, ErrTransferCooldown)
}
