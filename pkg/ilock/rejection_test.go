package ilock

import (
	"errors"
	"reflect"
	"testing"
)

func TestRejectedOperationsLeaveStateUnchanged(t *testing.T) {
	cases := []struct {
		name     string
		setup    func(t *testing.T, token *Token, clock *ManualClock)
		reject   func(token *Token) error
		expected error
	}{
		{
			name: "cooldown",
			setup: func(t *testing.T, token *Token, clock *ManualClock) {
				mustSucceed(t, token.Transfer(initialOwner, testAccount, Tokens(20_000_000)))
				mustSucceed(t, token.Transfer(testAccount, outsider, Tokens(7_000_000)))
				clock.Advance(60)
			},
			reject:   func(token *Token) error { return token.Transfer(testAccount, outsider, Tokens(7_000_000)) },
			expected: ErrTransferCooldown,
		},
		{
			name: "allowance",
			setup: func(t *testing.T, token *Token, _ *ManualClock) {
				mustSucceed(t, token.Approve(initialOwner, outsider, Tokens(1)))
			},
			reject:   func(token *Token) error { return token.TransferFrom(outsider, initialOwner, outsider, Tokens(2)) },
			expected: ErrInsufficientAllowance,
		},
		{
			name: "pause",
			setup: func(t *testing.T, token *Token, _ *ManualClock) {
				mustSucceed(t, token.Pause(initialOwner))
			},
			reject:   func(token *Token) error { return token.Transfer(initialOwner, testAccount, Tokens(1)) },
			expected: ErrEnforcedPause,
		},
		{
			name:     "unauthorized",
			reject:   func(token *Token) error { return token.Mint(outsider, outsider, Tokens(1)) },
			expected: ErrUnauthorized,
		},
		{
			name:     "cap",
			reject:   func(token *Token) error { return token.Mint(initialOwner, testAccount, Tokens(300_000_001)) },
			expected: ErrExceededCap,
		},
		{
			name:     "balance",
			reject:   func(token *Token) error { return token.Transfer(testAccount, outsider, Tokens(1)) },
			expected: ErrInsufficientBalance,
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			token, clock, events := newRolesToken(t)
			if testCase.setup != nil {
				testCase.setup(t, token, clock)
			}
			before := token.Snapshot()
			eventCount := events.Len()

			err := testCase.reject(token)
			if !errors.Is(err, testCase.expected) {
				t.Fatalf("expected %v, got %v", testCase.expected, err)
			}
			if after := token.Snapshot(); !reflect.DeepEqual(before, after) {
				t.Fatalf("state changed after rejected operation:\nbefore %+v\nafter  %+v", before, after)
			}
			if events.Len() != eventCount {
				t.Fatalf("expected %d events, got %d", eventCount, events.Len())
			}
		})
	}
}
