package ilock

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const genesisTime uint64 = 1_700_000_000

var (
	initialOwner = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	pauser       = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	minter       = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
	burner       = common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65")
	testAccount  = common.HexToAddress("0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc")
	outsider     = common.HexToAddress("0x976EA74026E726554dB657fA54763abd0C3a0aa9")
)

func newTestToken(t *testing.T, settings Settings) (*Token, *ManualClock, *EventLog) {
	t.Helper()
	clock := NewManualClock(genesisTime)
	events := NewEventLog()
	token, err := New(settings, initialOwner, WithClock(clock), WithEventSink(events))
	if err != nil {
		t.Fatalf("unexpected genesis error: %v", err)
	}
	return token, clock, events
}

func newRolesToken(t *testing.T) (*Token, *ManualClock, *EventLog) {
	t.Helper()
	return newTestToken(t, DefaultSettings())
}

func newTreasuryToken(t *testing.T) (*Token, *ManualClock, *EventLog) {
	t.Helper()
	settings := DefaultSettings()
	settings.Variant = VariantTreasury
	return newTestToken(t, settings)
}

func mustSucceed(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func expectAmount(t *testing.T, label string, got *uint256.Int, want *uint256.Int) {
	t.Helper()
	if !got.Eq(want) {
		t.Fatalf("expected %s %s, got %s", label, want.Dec(), got.Dec())
	}
}

func expectConservation(t *testing.T, token *Token) {
	t.Helper()
	state := token.Snapshot()
	sum := new(uint256.Int)
	for _, account := range state.Accounts {
		balance, err := uint256.FromDecimal(account.Balance)
		if err != nil {
			t.Fatalf("bad balance %q: %v", account.Balance, err)
		}
		sum.Add(sum, balance)
	}
	expectAmount(t, "sum of balances", sum, token.TotalSupply())
	if token.TotalSupply().Gt(token.Cap()) {
		t.Fatalf("total supply %s exceeds cap %s", token.TotalSupply().Dec(), token.Cap().Dec())
	}
}
