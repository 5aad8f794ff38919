package ilock

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

var oneToken = uint256.NewInt(1_000_000_000_000_000_000)

// Tokens returns whole tokens in 18-decimal base units.
func Tokens(whole uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(whole), oneToken)
}

// MaxAmount returns the unlimited-allowance sentinel (2^256 - 1).
func MaxAmount() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// ParseUnits converts a decimal string such as "1.5" into base units.
func ParseUnits(value string, decimals uint8) (*uint256.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, NewInvalidAmountError(value)
	}

	whole, fraction, hasFraction := strings.Cut(trimmed, ".")
	if hasFraction && fraction == "" {
		return nil, NewInvalidAmountError(value)
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || !isDigits(fraction) {
		return nil, NewInvalidAmountError(value)
	}
	if len(fraction) > int(decimals) {
		return nil, NewInvalidAmountError(value)
	}

	digits := strings.TrimLeft(whole+fraction+strings.Repeat("0", int(decimals)-len(fraction)), "0")
	if digits == "" {
		return new(uint256.Int), nil
	}

	amount, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, NewInvalidAmountError(value)
	}
	return amount, nil
}

// FormatUnits renders base units as a decimal string with trailing zeros trimmed.
func FormatUnits(amount *uint256.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	digits := amount.Dec()
	if decimals == 0 {
		return digits
	}

	width := int(decimals)
	if len(digits) <= width {
		digits = strings.Repeat("0", width-len(digits)+1) + digits
	}
	whole := digits[:len(digits)-width]
	fraction := strings.TrimRight(digits[len(digits)-width:], "0")
	if fraction == "" {
		return whole
	}
	return fmt.Sprintf("%s.%s", whole, fraction)
}

func isDigits(value string) bool {
	for _, character := range value {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}

func cloneAmount(amount *uint256.Int) *uint256.Int {
	if amount == nil {
		return new(uint256.Int)
	}
	return amount.Clone()
}
