package ilock

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Pause blocks Transfer and TransferFrom until Unpause.
func (token *Token) Pause(caller common.Address) error {
	token.mutex.Lock()
	defer token.mutex.Unlock()

	if err := token.authorizeLocked(caller, OperationPause); err != nil {
		return err
	}
	if token.paused {
		return NewEnforcedPauseError()
	}

	token.paused = true
	token.emitLocked(Event{Kind: EventPaused, Timestamp: token.clock.Now(), Account: caller})
	token.logger.Info().Str("caller", caller.Hex()).Msg("token paused")
	return nil
}

func (token *Token) Unpause(caller common.Address) error {
	token.mutex.Lock()
	defer token.mutex.Unlock()

	if err := token.authorizeLocked(caller, OperationUnpause); err != nil {
		return err
	}
	if !token.paused {
		return NewExpectedPauseError()
	}

	token.paused = false
	token.emitLocked(Event{Kind: EventUnpaused, Timestamp: token.clock.Now(), Account: caller})
	token.logger.Info().Str("caller", caller.Hex()).Msg("token unpaused")
	return nil
}

// GrantRole gives role to account. Granting a role already held is a no-op.
func (token *Token) GrantRole(caller common.Address, role Role, account common.Address) error {
	token.mutex.Lock()
	defer token.mutex.Unlock()

	roles, err := token.rolesLocked(OperationGrantRole)
	if err != nil {
		return err
	}
	if err := roles.CheckRole(roles.RoleAdmin(role), caller); err != nil {
		return err
	}

	if roles.grant(role, account) {
		token.emitLocked(Event{
			Kind:      EventRoleGranted,
			Timestamp: token.clock.Now(),
			Role:      role,
			Account:   account,
			Sender:    caller,
		})
	}
	return nil
}

// RevokeRole removes role from account. Revoking a role not held is a no-op.
func (token *Token) RevokeRole(caller common.Address, role Role, account common.Address) error {
	token.mutex.Lock()
	defer token.mutex.Unlock()

	roles, err := token.rolesLocked(OperationRevokeRole)
	if err != nil {
		return err
	}
	if err := roles.CheckRole(roles.RoleAdmin(role), caller); err != nil {
		return err
	}

	if roles.revoke(role, account) {
		token.emitLocked(Event{
			Kind:      EventRoleRevoked,
			Timestamp: token.clock.Now(),
			Role:      role,
			Account:   account,
			Sender:    caller,
		})
	}
	return nil
}

// RenounceRole drops a role held by the caller. confirmation must equal caller.
func (token *Token) RenounceRole(caller common.Address, role Role, confirmation common.Address) error {
	token.mutex.Lock()
	defer token.mutex.Unlock()

	roles, err := token.rolesLocked(OperationRenounceRole)
	if err != nil {
		return err
	}
	if caller != confirmation {
		return NewBadConfirmationError(caller, confirmation)
	}

	if roles.revoke(role, caller) {
		token.emitLocked(Event{
			Kind:      EventRoleRevoked,
			Timestamp: token.clock.Now(),
			Role:      role,
			Account:   caller,
			Sender:    caller,
		})
	}
	return nil
}

func (token *Token) TransferOwnership(caller common.Address, newOwner common.Address) error {
	token.mutex.Lock()
	defer token.mutex.Unlock()

	owners, err := token.ownersLocked(OperationTransferOwnership)
	if err != nil {
		return err
	}
	if err := token.authorizeLocked(caller, OperationTransferOwnership); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return NewInvalidAddressError("owner", newOwner)
	}

	token.setOwnerLocked(owners, newOwner)
	return nil
}

// RenounceOwnership sets the owner to the zero address. Every owner-gated
// operation fails afterwards, for every account.
func (token *Token) RenounceOwnership(caller common.Address) error {
	token.mutex.Lock()
	defer token.mutex.Unlock()

	owners, err := token.ownersLocked(OperationRenounceOwnership)
	if err != nil {
		return err
	}
	if err := token.authorizeLocked(caller, OperationRenounceOwnership); err != nil {
		return err
	}

	token.setOwnerLocked(owners, common.Address{})
	token.logger.Warn().Str("caller", caller.Hex()).Msg("ownership renounced")
	return nil
}

// TreasuryApprove sets allowance(treasury, spender) to amount.
func (token *Token) TreasuryApprove(caller common.Address, spender common.Address, amount *uint256.Int) error {
	amount = cloneAmount(amount)

	token.mutex.Lock()
	defer token.mutex.Unlock()

	if _, err := token.ownersLocked(OperationTreasuryApprove); err != nil {
		return err
	}
	if err := token.authorizeLocked(caller, OperationTreasuryApprove); err != nil {
		return err
	}
	if spender == (common.Address{}) {
		return NewInvalidAddressError("spender", spender)
	}

	token.setAllowanceLocked(token.treasury, spender, amount, token.clock.Now())
	return nil
}

func (token *Token) setOwnerLocked(owners *OwnerAuthority, newOwner common.Address) {
	previousOwner := owners.owner
	owners.owner = newOwner
	token.emitLocked(Event{
		Kind:          EventOwnershipTransferred,
		Timestamp:     token.clock.Now(),
		PreviousOwner: previousOwner,
		NewOwner:      newOwner,
	})
}

func (token *Token) rolesLocked(operation Operation) (*RoleAuthority, error) {
	roles, ok := token.authority.(*RoleAuthority)
	if !ok {
		return nil, NewUnsupportedOperationError(operation, token.variant)
	}
	return roles, nil
}

func (token *Token) ownersLocked(operation Operation) (*OwnerAuthority, error) {
	owners, ok := token.authority.(*OwnerAuthority)
	if !ok {
		return nil, NewUnsupportedOperationError(operation, token.variant)
	}
	return owners, nil
}
