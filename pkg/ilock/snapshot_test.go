package ilock

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	token, clock, _ := newRolesToken(t)
	mustSucceed(t, token.GrantRole(initialOwner, MinterRole, minter))
	mustSucceed(t, token.Mint(minter, testAccount, Tokens(10_000_000)))
	mustSucceed(t, token.Approve(testAccount, outsider, MaxAmount()))
	mustSucceed(t, token.Transfer(testAccount, outsider, Tokens(7_000_000)))
	mustSucceed(t, token.Pause(initialOwner))

	state := token.Snapshot()
	encoded, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("failed to encode snapshot: %v", err)
	}
	var decoded State
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}

	restored, err := Restore(decoded, WithClock(clock))
	if err != nil {
		t.Fatalf("unexpected restore error: %v", err)
	}
	if !reflect.DeepEqual(restored.Snapshot(), state) {
		t.Fatalf("restored snapshot differs:\n%+v\n%+v", restored.Snapshot(), state)
	}

	if !restored.Paused() || !restored.HasRole(MinterRole, minter) {
		t.Fatal("expected pause flag and roles to survive restore")
	}
	expectAmount(t, "allowance", restored.Allowance(testAccount, outsider), MaxAmount())

	mustSucceed(t, restored.Unpause(initialOwner))
	if err := restored.Transfer(testAccount, outsider, Tokens(7_000_000)); !errors.Is(err, ErrTransferCooldown) {
		t.Fatalf("expected cooldown timestamp to survive restore, got %v", err)
	}
}

func TestSnapshotRestoreTreasury(t *testing.T) {
	token, clock, _ := newTreasuryToken(t)
	restored, err := Restore(token.Snapshot(), WithClock(clock))
	if err != nil {
		t.Fatalf("unexpected restore error: %v", err)
	}
	if restored.Owner() != initialOwner || restored.Treasury() != token.Treasury() {
		t.Fatal("expected owner and treasury to survive restore")
	}
	expectAmount(t, "treasury allowance", restored.Allowance(token.Treasury(), initialOwner), token.Cap())
}

func TestRestoreRejectsInconsistentState(t *testing.T) {
	token, _, _ := newRolesToken(t)

	cases := map[string]func(state *State){
		"supply mismatch": func(state *State) { state.TotalSupply = "1" },
		"supply above cap": func(state *State) {
			state.Cap = "1"
		},
		"bad amount":  func(state *State) { state.Accounts[0].Balance = "12abc" },
		"bad variant": func(state *State) { state.Variant = "proxy" },
		"bad role":    func(state *State) { state.Roles[0].Role = "operator" },
		"zero cap":    func(state *State) { state.Cap = "0" },
		"duplicate account": func(state *State) {
			state.Accounts = append(state.Accounts, AccountState{Address: state.Accounts[0].Address, Balance: "0"})
		},
		"duplicate allowance": func(state *State) {
			state.Accounts[0].Allowances = []AllowanceState{
				{Spender: testAccount, Amount: "1"},
				{Spender: testAccount, Amount: "2"},
			}
		},
		"duplicate grant": func(state *State) { state.Roles = append(state.Roles, state.Roles[0]) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			state := token.Snapshot()
			mutate(&state)
			if _, err := Restore(state); !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("expected invalid snapshot, got %v", err)
			}
		})
	}
}

func TestRestoreContinuesSequence(t *testing.T) {
	token, clock, _ := newRolesToken(t)
	events := NewEventLog()
	restored, err := Restore(token.Snapshot(), WithClock(clock), WithEventSink(events))
	if err != nil {
		t.Fatalf("unexpected restore error: %v", err)
	}
	mustSucceed(t, restored.Transfer(initialOwner, testAccount, Tokens(1)))

	last, _ := events.Last()
	if last.Sequence != token.Snapshot().EventSequence+1 {
		t.Fatalf("expected sequence to continue from %d, got %d", token.Snapshot().EventSequence, last.Sequence)
	}
}
