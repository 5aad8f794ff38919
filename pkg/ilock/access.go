package ilock

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// Authority decides whether a caller may run a privileged operation.
type Authority interface {
	Authorize(caller common.Address, operation Operation) error
	// CooldownExempt reports accounts whose large transfers skip the cooldown gate.
	CooldownExempt(account common.Address) bool
}

type roleMember struct {
	role    Role
	account common.Address
}

// RoleAuthority is a set of (role, account) grants. Every role is
// administered by DEFAULT_ADMIN, including DEFAULT_ADMIN itself.
type RoleAuthority struct {
	members map[roleMember]struct{}
}

func NewRoleAuthority() *RoleAuthority {
	return &RoleAuthority{members: map[roleMember]struct{}{}}
}

var operationRoles = map[Operation]Role{
	OperationMint:          MinterRole,
	OperationBurn:          BurnerRole,
	OperationPause:         PauserRole,
	OperationUnpause:       PauserRole,
	OperationSetUpCooldown: DefaultAdminRole,
	OperationGrantRole:     DefaultAdminRole,
	OperationRevokeRole:    DefaultAdminRole,
}

// Authorize checks the role bound to the operation.
func (authority *RoleAuthority) Authorize(caller common.Address, operation Operation) error {
	role, ok := operationRoles[operation]
	if !ok {
		return NewUnsupportedOperationError(operation, VariantRoles)
	}
	return authority.CheckRole(role, caller)
}

// CheckRole returns an UnauthorizedError unless account holds role.
func (authority *RoleAuthority) CheckRole(role Role, account common.Address) error {
	if !authority.HasRole(role, account) {
		return NewMissingRoleError(account, role)
	}
	return nil
}

func (authority *RoleAuthority) HasRole(role Role, account common.Address) bool {
	_, ok := authority.members[roleMember{role: role, account: account}]
	return ok
}

// RoleAdmin returns the role allowed to grant and revoke role.
func (authority *RoleAuthority) RoleAdmin(Role) Role {
	return DefaultAdminRole
}

// CooldownExempt exempts every DEFAULT_ADMIN holder.
func (authority *RoleAuthority) CooldownExempt(account common.Address) bool {
	return authority.HasRole(DefaultAdminRole, account)
}

// Members lists the holders of role in address order.
func (authority *RoleAuthority) Members(role Role) []common.Address {
	members := make([]common.Address, 0)
	for member := range authority.members {
		if member.role == role {
			members = append(members, member.account)
		}
	}
	slices.SortFunc(members, func(left common.Address, right common.Address) int {
		return left.Cmp(right)
	})
	return members
}

// grant reports whether the grant changed anything.
func (authority *RoleAuthority) grant(role Role, account common.Address) bool {
	member := roleMember{role: role, account: account}
	if _, exists := authority.members[member]; exists {
		return false
	}
	authority.members[member] = struct{}{}
	return true
}

func (authority *RoleAuthority) revoke(role Role, account common.Address) bool {
	member := roleMember{role: role, account: account}
	if _, exists := authority.members[member]; !exists {
		return false
	}
	delete(authority.members, member)
	return true
}

// OwnerAuthority gates every privileged operation behind one owner. A zero
// owner means ownership was renounced and nothing is authorized.
type OwnerAuthority struct {
	owner    common.Address
	treasury common.Address
}

func NewOwnerAuthority(owner common.Address, treasury common.Address) *OwnerAuthority {
	return &OwnerAuthority{owner: owner, treasury: treasury}
}

func (authority *OwnerAuthority) Authorize(caller common.Address, operation Operation) error {
	switch operation {
	case OperationGrantRole, OperationRevokeRole, OperationRenounceRole:
		return NewUnsupportedOperationError(operation, VariantTreasury)
	}
	if authority.owner == (common.Address{}) || caller != authority.owner {
		return NewNotOwnerError(caller)
	}
	return nil
}

func (authority *OwnerAuthority) Owner() common.Address {
	return authority.owner
}

// CooldownExempt exempts the owner and the treasury account.
func (authority *OwnerAuthority) CooldownExempt(account common.Address) bool {
	if account == (common.Address{}) {
		return false
	}
	return account == authority.owner || account == authority.treasury
}
