package ilock

import (
	"errors"
	"testing"
)

func TestPauseBlocksTransfers(t *testing.T) {
	token, _, events := newRolesToken(t)
	mustSucceed(t, token.GrantRole(initialOwner, PauserRole, pauser))
	mustSucceed(t, token.Transfer(initialOwner, testAccount, Tokens(10)))

	mustSucceed(t, token.Pause(pauser))
	if !token.Paused() {
		t.Fatal("expected token to be paused")
	}
	last, _ := events.Last()
	if last.Kind != EventPaused || last.Account != pauser {
		t.Fatalf("expected paused event from pauser, got %+v", last)
	}

	err := token.Transfer(testAccount, outsider, Tokens(1))
	if !errors.Is(err, ErrEnforcedPause) {
		t.Fatalf("expected enforced pause on transfer, got %v", err)
	}
	if !IsGateError(err) {
		t.Fatal("expected pause to be reported as a gate error")
	}

	mustSucceed(t, token.Approve(testAccount, initialOwner, Tokens(5)))
	if err := token.TransferFrom(initialOwner, testAccount, outsider, Tokens(1)); !errors.Is(err, ErrEnforcedPause) {
		t.Fatalf("expected enforced pause on transferFrom, got %v", err)
	}

	mustSucceed(t, token.Unpause(pauser))
	mustSucceed(t, token.Transfer(testAccount, outsider, Tokens(1)))
	expectAmount(t, "outsider balance", token.BalanceOf(outsider), Tokens(1))
}

func TestPauseLeavesSupplyOperationsOpen(t *testing.T) {
	token, _, _ := newRolesToken(t)
	mustSucceed(t, token.Pause(initialOwner))

	mustSucceed(t, token.Mint(initialOwner, testAccount, Tokens(3)))
	mustSucceed(t, token.Burn(initialOwner, testAccount, Tokens(1)))
	mustSucceed(t, token.Approve(testAccount, outsider, Tokens(1)))
	expectAmount(t, "balance", token.BalanceOf(testAccount), Tokens(2))
}

func TestPauseTwiceFails(t *testing.T) {
	token, _, events := newRolesToken(t)
	mustSucceed(t, token.Pause(initialOwner))
	before := events.Len()

	if err := token.Pause(initialOwner); !errors.Is(err, ErrEnforcedPause) {
		t.Fatalf("expected enforced pause, got %v", err)
	}
	if events.Len() != before {
		t.Fatal("expected no event for rejected pause")
	}
}

func TestUnpauseWhileActiveFails(t *testing.T) {
	token, _, _ := newRolesToken(t)
	var expected ExpectedPauseError
	if err := token.Unpause(initialOwner); !errors.As(err, &expected) {
		t.Fatalf("expected ExpectedPauseError, got %v", err)
	}
}

func TestPauseRequiresPauserRole(t *testing.T) {
	token, _, _ := newRolesToken(t)

	err := token.Pause(testAccount)
	var unauthorized UnauthorizedError
	if !errors.As(err, &unauthorized) || unauthorized.Role != PauserRole {
		t.Fatalf("expected missing pauser role, got %v", err)
	}
	if token.Paused() {
		t.Fatal("expected token to remain unpaused")
	}

	mustSucceed(t, token.Pause(initialOwner))
	if err := token.Unpause(testAccount); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized unpause, got %v", err)
	}
}
