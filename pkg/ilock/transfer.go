package ilock

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Transfer moves amount from caller to to.
func (token *Token) Transfer(caller common.Address, to common.Address, amount *uint256.Int) error {
	amount = cloneAmount(amount)

	token.mutex.Lock()
	defer token.mutex.Unlock()

	return token.transferLocked(caller, caller, to, amount)
}

// TransferFrom moves amount from from to to on behalf of caller. Unless
// caller is from, the amount is spent from allowance(from, caller); an
// allowance of MaxAmount is never decremented.
func (token *Token) TransferFrom(
	caller common.Address,
	from common.Address,
	to common.Address,
	amount *uint256.Int,
) error {
	amount = cloneAmount(amount)

	token.mutex.Lock()
	defer token.mutex.Unlock()

	return token.transferLocked(caller, from, to, amount)
}

// Approve sets allowance(caller, spender) to amount, replacing any previous value.
func (token *Token) Approve(caller common.Address, spender common.Address, amount *uint256.Int) error {
	amount = cloneAmount(amount)

	token.mutex.Lock()
	defer token.mutex.Unlock()

	if caller == (common.Address{}) {
		return NewInvalidAddressError("approver", caller)
	}
	if spender == (common.Address{}) {
		return NewInvalidAddressError("spender", spender)
	}

	token.setAllowanceLocked(caller, spender, amount, token.clock.Now())
	return nil
}

// transferLocked checks, in order: addresses, pause, cooldown, allowance,
// balance. Nothing is written until every check passed.
func (token *Token) transferLocked(
	spender common.Address,
	from common.Address,
	to common.Address,
	amount *uint256.Int,
) error {
	if from == (common.Address{}) {
		return NewInvalidAddressError("sender", from)
	}
	if to == (common.Address{}) {
		return NewInvalidAddressError("receiver", to)
	}
	if token.paused {
		return NewEnforcedPauseError()
	}

	now := token.clock.Now()
	recordCooldown, err := token.checkCooldownLocked(from, amount, now)
	if err != nil {
		return err
	}

	spendAllowance := spender != from
	var allowance *uint256.Int
	if spendAllowance {
		allowance = token.allowanceLocked(from, spender)
		if allowance.Lt(amount) {
			return NewInsufficientAllowanceError(spender, allowance, amount)
		}
	}

	balance := token.balanceLocked(from)
	if balance.Lt(amount) {
		return NewInsufficientBalanceError(from, balance, amount)
	}

	if spendAllowance && !isUnlimited(allowance) {
		token.storeAllowanceLocked(from, spender, new(uint256.Int).Sub(allowance, amount))
	}
	token.balances[from] = new(uint256.Int).Sub(balance, amount)
	token.balances[to] = new(uint256.Int).Add(token.balanceLocked(to), amount)
	if recordCooldown {
		token.lastLargeTransferAt[from] = now
	}

	token.emitLocked(Event{
		Kind:      EventTransfer,
		Timestamp: now,
		From:      from,
		To:        to,
		Amount:    amount,
	})
	return nil
}

func (token *Token) storeAllowanceLocked(owner common.Address, spender common.Address, amount *uint256.Int) {
	spenders, ok := token.allowances[owner]
	if !ok {
		spenders = map[common.Address]*uint256.Int{}
		token.allowances[owner] = spenders
	}
	spenders[spender] = amount
}

func isUnlimited(amount *uint256.Int) bool {
	return amount != nil && amount.Eq(MaxAmount())
}
