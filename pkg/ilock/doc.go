// Package ilock implements the InterlockNetwork (ILOCK) token ledger as a
// deterministic state machine. It holds balances and allowances, gates
// privileged operations behind roles or a single owner, blocks transfers
// while paused, and rate-limits large transfers per sender with a
// configurable cooldown.
//
// Two access variants exist and are selected explicitly at genesis:
//
//   - VariantRoles: the initial owner receives DEFAULT_ADMIN, PAUSER, MINTER
//     and BURNER, the initial supply is minted to it and the token starts
//     unpaused.
//   - VariantTreasury: a single owner gates every privileged operation, the
//     initial supply is minted to the token's own treasury account with an
//     allowance of the full cap granted to the owner, and the token starts
//     paused.
//
// # Usage
//
//	owner := common.HexToAddress("0x4599Bb9B14e1bea536C175206cf878fe07dE390F")
//	token, err := ilock.New(ilock.DefaultSettings(), owner)
//	if err != nil {
//		return err
//	}
//
//	err = token.Transfer(owner, recipient, ilock.Tokens(1_000))
//
// Every operation takes the authenticated caller as its first argument. The
// current time for the cooldown gate comes from the Clock supplied with
// WithClock; events are delivered to every EventSink supplied with
// WithEventSink.
package ilock
