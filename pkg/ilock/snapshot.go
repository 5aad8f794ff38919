package ilock

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// State is a complete, JSON-serializable copy of a token. Amounts are
// decimal strings; accounts and grants are sorted so equal tokens produce
// equal documents.
type State struct {
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Decimals uint8   `json:"decimals"`
	Variant  Variant `json:"variant"`

	TotalSupply string `json:"totalSupply"`
	Cap         string `json:"cap"`
	Paused      bool   `json:"paused"`

	CooldownDuration  uint64 `json:"cooldownDuration"`
	CooldownThreshold string `json:"cooldownThreshold"`

	Treasury common.Address `json:"treasury"`
	Owner    common.Address `json:"owner"`
	Roles    []RoleGrant    `json:"roles,omitempty"`

	Accounts      []AccountState `json:"accounts"`
	EventSequence uint64         `json:"eventSequence"`
}

type RoleGrant struct {
	Role    string         `json:"role"`
	Account common.Address `json:"account"`
}

type AccountState struct {
	Address             common.Address   `json:"address"`
	Balance             string           `json:"balance"`
	Allowances          []AllowanceState `json:"allowances,omitempty"`
	LastLargeTransferAt *uint64          `json:"lastLargeTransferAt,omitempty"`
}

type AllowanceState struct {
	Spender common.Address `json:"spender"`
	Amount  string         `json:"amount"`
}

// Snapshot returns a deep copy of the current state.
func (token *Token) Snapshot() State {
	token.mutex.Lock()
	defer token.mutex.Unlock()

	state := State{
		Name:              token.name,
		Symbol:            token.symbol,
		Decimals:          token.decimals,
		Variant:           token.variant,
		TotalSupply:       token.totalSupply.Dec(),
		Cap:               token.supplyCap.Dec(),
		Paused:            token.paused,
		CooldownDuration:  token.cooldownDuration,
		CooldownThreshold: token.cooldownThreshold.Dec(),
		Treasury:          token.treasury,
		Accounts:          []AccountState{},
		EventSequence:     token.eventSequence,
	}

	switch authority := token.authority.(type) {
	case *OwnerAuthority:
		state.Owner = authority.owner
	case *RoleAuthority:
		grants := make([]RoleGrant, 0, len(authority.members))
		for member := range authority.members {
			grants = append(grants, RoleGrant{Role: member.role.Hex(), Account: member.account})
		}
		slices.SortFunc(grants, func(left RoleGrant, right RoleGrant) int {
			if left.Role != right.Role {
				if left.Role < right.Role {
					return -1
				}
				return 1
			}
			return left.Account.Cmp(right.Account)
		})
		state.Roles = grants
	}

	for _, address := range token.knownAccountsLocked() {
		account := AccountState{
			Address: address,
			Balance: token.balanceLocked(address).Dec(),
		}
		if last, ok := token.lastLargeTransferAt[address]; ok {
			timestamp := last
			account.LastLargeTransferAt = &timestamp
		}
		spenders := token.allowances[address]
		spenderAddresses := sortedAddresses(spenders)
		for _, spender := range spenderAddresses {
			account.Allowances = append(account.Allowances, AllowanceState{
				Spender: spender,
				Amount:  spenders[spender].Dec(),
			})
		}
		state.Accounts = append(state.Accounts, account)
	}

	return state
}

// Restore rebuilds a token from a snapshot, checking supply conservation and the cap.
func Restore(state State, options ...Option) (*Token, error) {
	variant, err := ParseVariant(string(state.Variant))
	if err != nil {
		return nil, newInvalidSnapshotError("%v", err)
	}

	totalSupply, err := parseStateAmount("totalSupply", state.TotalSupply)
	if err != nil {
		return nil, err
	}
	supplyCap, err := parseStateAmount("cap", state.Cap)
	if err != nil {
		return nil, err
	}
	threshold, err := parseStateAmount("cooldownThreshold", state.CooldownThreshold)
	if err != nil {
		return nil, err
	}
	if supplyCap.IsZero() {
		return nil, newInvalidSnapshotError("cap must be positive")
	}
	if totalSupply.Gt(supplyCap) {
		return nil, newInvalidSnapshotError("total supply %s exceeds cap %s", totalSupply.Dec(), supplyCap.Dec())
	}

	token := newToken(options)
	token.name = state.Name
	token.symbol = state.Symbol
	token.decimals = state.Decimals
	token.variant = variant
	token.totalSupply = totalSupply
	token.supplyCap = supplyCap
	token.paused = state.Paused
	token.cooldownDuration = state.CooldownDuration
	token.cooldownThreshold = threshold
	token.eventSequence = state.EventSequence

	switch variant {
	case VariantTreasury:
		token.treasury = state.Treasury
		token.authority = NewOwnerAuthority(state.Owner, state.Treasury)
	default:
		roles := NewRoleAuthority()
		for _, grant := range state.Roles {
			role, roleErr := ParseRole(grant.Role)
			if roleErr != nil {
				return nil, newInvalidSnapshotError("%v", roleErr)
			}
			if !roles.grant(role, grant.Account) {
				return nil, newInvalidSnapshotError("duplicate %s grant to %s", role.Name(), grant.Account.Hex())
			}
		}
		token.authority = roles
	}

	balanceSum := new(uint256.Int)
	for _, account := range state.Accounts {
		if _, duplicate := token.balances[account.Address]; duplicate {
			return nil, newInvalidSnapshotError("duplicate account %s", account.Address.Hex())
		}
		balance, balanceErr := parseStateAmount("balance", account.Balance)
		if balanceErr != nil {
			return nil, balanceErr
		}
		token.balances[account.Address] = balance
		var overflow bool
		balanceSum, overflow = new(uint256.Int).AddOverflow(balanceSum, balance)
		if overflow {
			return nil, newInvalidSnapshotError("balances overflow")
		}

		spenders := make(map[common.Address]struct{}, len(account.Allowances))
		for _, allowance := range account.Allowances {
			if _, duplicate := spenders[allowance.Spender]; duplicate {
				return nil, newInvalidSnapshotError("duplicate allowance of %s to %s", account.Address.Hex(), allowance.Spender.Hex())
			}
			spenders[allowance.Spender] = struct{}{}
			amount, amountErr := parseStateAmount("allowance", allowance.Amount)
			if amountErr != nil {
				return nil, amountErr
			}
			token.storeAllowanceLocked(account.Address, allowance.Spender, amount)
		}
		if account.LastLargeTransferAt != nil {
			token.lastLargeTransferAt[account.Address] = *account.LastLargeTransferAt
		}
	}

	if !balanceSum.Eq(totalSupply) {
		return nil, newInvalidSnapshotError("balances sum to %s, total supply is %s", balanceSum.Dec(), totalSupply.Dec())
	}

	return token, nil
}

func (token *Token) knownAccountsLocked() []common.Address {
	seen := map[common.Address]struct{}{}
	for address := range token.balances {
		seen[address] = struct{}{}
	}
	for address := range token.allowances {
		seen[address] = struct{}{}
	}
	for address := range token.lastLargeTransferAt {
		seen[address] = struct{}{}
	}
	return sortedAddresses(seen)
}

func sortedAddresses[V any](set map[common.Address]V) []common.Address {
	addresses := make([]common.Address, 0, len(set))
	for address := range set {
		addresses = append(addresses, address)
	}
	slices.SortFunc(addresses, func(left common.Address, right common.Address) int {
		return left.Cmp(right)
	})
	return addresses
}

func parseStateAmount(field string, value string) (*uint256.Int, error) {
	if value == "" {
		return new(uint256.Int), nil
	}
	amount, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, newInvalidSnapshotError("%s %q: %v", field, value, err)
	}
	return amount, nil
}
