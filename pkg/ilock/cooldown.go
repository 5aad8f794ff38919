package ilock

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SetUpCooldown replaces the cooldown duration (seconds) and threshold.
// A zero duration or a zero threshold turns the gate off.
func (token *Token) SetUpCooldown(caller common.Address, duration uint64, threshold *uint256.Int) error {
	threshold = cloneAmount(threshold)

	token.mutex.Lock()
	defer token.mutex.Unlock()

	if err := token.authorizeLocked(caller, OperationSetUpCooldown); err != nil {
		return err
	}

	token.cooldownDuration = duration
	token.cooldownThreshold = threshold
	token.emitLocked(Event{
		Kind:      EventCooldownConfigured,
		Timestamp: token.clock.Now(),
		Duration:  duration,
		Threshold: threshold.Clone(),
	})

	token.logger.Info().
		Uint64("duration", duration).
		Str("threshold", threshold.Dec()).
		Str("caller", caller.Hex()).
		Msg("transfer cooldown configured")
	return nil
}

// CooldownEnabled reports whether large transfers are currently rate limited.
func (token *Token) CooldownEnabled() bool {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return token.cooldownEnabledLocked()
}

func (token *Token) cooldownEnabledLocked() bool {
	return token.cooldownDuration > 0 && !token.cooldownThreshold.IsZero()
}

// checkCooldownLocked reports whether the transfer must record a new
// timestamp for account. A large transfer passes once now is strictly
// greater than last + duration.
func (token *Token) checkCooldownLocked(account common.Address, amount *uint256.Int, now uint64) (bool, error) {
	if !token.cooldownEnabledLocked() {
		return false, nil
	}
	if amount.Lt(token.cooldownThreshold) {
		return false, nil
	}
	if token.authority.CooldownExempt(account) {
		return false, nil
	}

	last, seen := token.lastLargeTransferAt[account]
	if seen && (now <= last || now-last <= token.cooldownDuration) {
		return false, NewTransferCooldownError(account, cooldownReopensAt(last, token.cooldownDuration))
	}
	return true, nil
}

func cooldownReopensAt(last uint64, duration uint64) uint64 {
	if duration >= math.MaxUint64-last {
		return math.MaxUint64
	}
	return last + duration + 1
}
