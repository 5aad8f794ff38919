package ilock

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Mint creates amount new tokens for to. The resulting supply may not exceed the cap.
func (token *Token) Mint(caller common.Address, to common.Address, amount *uint256.Int) error {
	amount = cloneAmount(amount)

	token.mutex.Lock()
	defer token.mutex.Unlock()

	if err := token.authorizeLocked(caller, OperationMint); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return NewInvalidAddressError("receiver", to)
	}

	supply, overflow := new(uint256.Int).AddOverflow(token.totalSupply, amount)
	if overflow {
		supply = MaxAmount()
	}
	if overflow || supply.Gt(token.supplyCap) {
		return NewExceededCapError(supply, token.supplyCap)
	}

	token.creditLocked(to, amount, token.clock.Now())
	return nil
}

// Burn destroys amount tokens held by from.
func (token *Token) Burn(caller common.Address, from common.Address, amount *uint256.Int) error {
	amount = cloneAmount(amount)

	token.mutex.Lock()
	defer token.mutex.Unlock()

	if err := token.authorizeLocked(caller, OperationBurn); err != nil {
		return err
	}
	if from == (common.Address{}) {
		return NewInvalidAddressError("sender", from)
	}

	balance := token.balanceLocked(from)
	if balance.Lt(amount) {
		return NewInsufficientBalanceError(from, balance, amount)
	}

	token.balances[from] = new(uint256.Int).Sub(balance, amount)
	token.totalSupply = new(uint256.Int).Sub(token.totalSupply, amount)
	token.emitLocked(Event{
		Kind:      EventTransfer,
		Timestamp: token.clock.Now(),
		From:      from,
		Amount:    amount,
	})
	return nil
}
