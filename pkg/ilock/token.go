package ilock

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
)

// Token is the ledger engine. All methods are safe for concurrent use; each
// operation is applied atomically and either fully succeeds or leaves the
// state untouched.
type Token struct {
	mutex sync.Mutex

	name     string
	symbol   string
	decimals uint8
	variant  Variant

	authority Authority
	clock     Clock
	logger    zerolog.Logger
	sinks     []EventSink

	totalSupply *uint256.Int
	supplyCap   *uint256.Int
	paused      bool

	cooldownDuration  uint64
	cooldownThreshold *uint256.Int

	balances            map[common.Address]*uint256.Int
	allowances          map[common.Address]map[common.Address]*uint256.Int
	lastLargeTransferAt map[common.Address]uint64

	treasury      common.Address
	eventSequence uint64
}

type Option func(token *Token)

// WithClock sets the time source for the cooldown gate. Defaults to SystemClock.
func WithClock(clock Clock) Option {
	return func(token *Token) {
		if clock != nil {
			token.clock = clock
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(token *Token) {
		token.logger = logger.With().Str("component", "ilock").Logger()
	}
}

// WithEventSink adds a sink. May be given more than once.
func WithEventSink(sink EventSink) Option {
	return func(token *Token) {
		if sink != nil {
			token.sinks = append(token.sinks, sink)
		}
	}
}

func newToken(options []Option) *Token {
	token := &Token{
		clock:               SystemClock{},
		logger:              zerolog.Nop(),
		totalSupply:         new(uint256.Int),
		supplyCap:           new(uint256.Int),
		cooldownThreshold:   new(uint256.Int),
		balances:            map[common.Address]*uint256.Int{},
		allowances:          map[common.Address]map[common.Address]*uint256.Int{},
		lastLargeTransferAt: map[common.Address]uint64{},
	}
	for _, option := range options {
		option(token)
	}
	return token
}

// New runs genesis for the configured variant with initialOwner as the
// privileged account.
func New(settings Settings, initialOwner common.Address, options ...Option) (*Token, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if initialOwner == (common.Address{}) {
		return nil, NewInvalidAddressError("owner", initialOwner)
	}
	variant, _ := ParseVariant(string(settings.Variant))

	token := newToken(options)
	token.name = settings.Name
	token.symbol = settings.Symbol
	token.decimals = settings.Decimals
	token.variant = variant
	token.supplyCap = settings.Cap.Clone()
	token.cooldownDuration = settings.CooldownDuration
	token.cooldownThreshold = settings.CooldownThreshold.Clone()

	token.mutex.Lock()
	defer token.mutex.Unlock()

	now := token.clock.Now()
	switch variant {
	case VariantTreasury:
		token.treasury = settings.treasury()
		token.authority = NewOwnerAuthority(initialOwner, token.treasury)
		token.paused = true
		token.emitLocked(Event{Kind: EventOwnershipTransferred, Timestamp: now, NewOwner: initialOwner})
		token.emitLocked(Event{Kind: EventPaused, Timestamp: now, Account: initialOwner})
		token.creditLocked(token.treasury, settings.InitialSupply, now)
		token.setAllowanceLocked(token.treasury, initialOwner, settings.Cap, now)
	default:
		roles := NewRoleAuthority()
		token.authority = roles
		for _, role := range []Role{DefaultAdminRole, PauserRole, MinterRole, BurnerRole} {
			roles.grant(role, initialOwner)
			token.emitLocked(Event{Kind: EventRoleGranted, Timestamp: now, Role: role, Account: initialOwner})
		}
		token.creditLocked(initialOwner, settings.InitialSupply, now)
	}

	token.emitLocked(Event{
		Kind:      EventCooldownConfigured,
		Timestamp: now,
		Duration:  token.cooldownDuration,
		Threshold: token.cooldownThreshold.Clone(),
	})

	token.logger.Info().
		Str("variant", string(variant)).
		Str("owner", initialOwner.Hex()).
		Str("initial_supply", settings.InitialSupply.Dec()).
		Msg("token genesis")

	return token, nil
}

func (token *Token) Name() string     { return token.name }
func (token *Token) Symbol() string   { return token.symbol }
func (token *Token) Decimals() uint8  { return token.decimals }
func (token *Token) Variant() Variant { return token.variant }

// Treasury returns the treasury account, zero outside VariantTreasury.
func (token *Token) Treasury() common.Address { return token.treasury }

func (token *Token) Cap() *uint256.Int {
	return token.supplyCap.Clone()
}

func (token *Token) TotalSupply() *uint256.Int {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return token.totalSupply.Clone()
}

func (token *Token) BalanceOf(account common.Address) *uint256.Int {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return cloneAmount(token.balances[account])
}

func (token *Token) Allowance(owner common.Address, spender common.Address) *uint256.Int {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return cloneAmount(token.allowanceLocked(owner, spender))
}

func (token *Token) Paused() bool {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return token.paused
}

func (token *Token) TransferCooldownDuration() uint64 {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return token.cooldownDuration
}

func (token *Token) TransferCooldownThreshold() *uint256.Int {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return token.cooldownThreshold.Clone()
}

// LastLargeTransferAt returns the timestamp of the account's last gated transfer.
func (token *Token) LastLargeTransferAt(account common.Address) (uint64, bool) {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	timestamp, ok := token.lastLargeTransferAt[account]
	return timestamp, ok
}

// Owner returns the current owner. Always zero in VariantRoles.
func (token *Token) Owner() common.Address {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	if owners, ok := token.authority.(*OwnerAuthority); ok {
		return owners.Owner()
	}
	return common.Address{}
}

// HasRole is always false in VariantTreasury.
func (token *Token) HasRole(role Role, account common.Address) bool {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	if roles, ok := token.authority.(*RoleAuthority); ok {
		return roles.HasRole(role, account)
	}
	return false
}

func (token *Token) RoleAdmin(role Role) Role {
	if roles, ok := token.authority.(*RoleAuthority); ok {
		return roles.RoleAdmin(role)
	}
	return DefaultAdminRole
}

// RoleMembers lists the holders of role in address order.
func (token *Token) RoleMembers(role Role) []common.Address {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	if roles, ok := token.authority.(*RoleAuthority); ok {
		return roles.Members(role)
	}
	return []common.Address{}
}

func (token *Token) String() string {
	return fmt.Sprintf("%s (%s, %s)", token.name, token.symbol, token.variant)
}

func (token *Token) allowanceLocked(owner common.Address, spender common.Address) *uint256.Int {
	spenders, ok := token.allowances[owner]
	if !ok {
		return new(uint256.Int)
	}
	allowance, ok := spenders[spender]
	if !ok {
		return new(uint256.Int)
	}
	return allowance
}

func (token *Token) balanceLocked(account common.Address) *uint256.Int {
	balance, ok := token.balances[account]
	if !ok {
		return new(uint256.Int)
	}
	return balance
}

// creditLocked mints without checks. Callers validate the cap first.
func (token *Token) creditLocked(account common.Address, amount *uint256.Int, now uint64) {
	token.totalSupply = new(uint256.Int).Add(token.totalSupply, amount)
	token.balances[account] = new(uint256.Int).Add(token.balanceLocked(account), amount)
	token.emitLocked(Event{Kind: EventTransfer, Timestamp: now, To: account, Amount: amount.Clone()})
}

func (token *Token) setAllowanceLocked(owner common.Address, spender common.Address, amount *uint256.Int, now uint64) {
	token.storeAllowanceLocked(owner, spender, amount.Clone())
	token.emitLocked(Event{Kind: EventApproval, Timestamp: now, Owner: owner, Spender: spender, Amount: amount.Clone()})
}

func (token *Token) emitLocked(event Event) {
	token.eventSequence++
	event.Sequence = token.eventSequence
	for _, sink := range token.sinks {
		sink.HandleEvent(event)
	}
}

func (token *Token) authorizeLocked(caller common.Address, operation Operation) error {
	if err := token.authority.Authorize(caller, operation); err != nil {
		token.logger.Debug().
			Str("operation", string(operation)).
			Str("caller", caller.Hex()).
			Err(err).
			Msg("privileged operation rejected")
		return err
	}
	return nil
}
