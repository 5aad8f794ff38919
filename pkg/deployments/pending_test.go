package deployments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/interlock-network/ilock-sdk-go/pkg/anchor"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
)

func TestPendingPath(t *testing.T) {
	cases := map[string]string{
		"ilock.json":        "ilock.json.pending.json",
		"ilock.json.br":     "ilock.json.pending.json",
		"state/ilock-state": "state/ilock-state.pending.json",
	}
	for statePath, expected := range cases {
		if got := PendingPath(statePath); got != expected {
			t.Fatalf("PendingPath(%q) = %q, expected %q", statePath, got, expected)
		}
	}
}

func TestPendingRoundTripAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ilock.json.pending.json")
	if messages, err := ReadPending(path); err != nil || messages != nil {
		t.Fatalf("expected nothing pending, got %v (%v)", messages, err)
	}

	messages := []anchor.Message{
		anchor.MessageFromEvent(ilock.DefaultName, ilock.Event{Sequence: 7, Kind: ilock.EventTransfer, From: initialOwner, To: deployer, Amount: ilock.Tokens(1)}),
		anchor.MessageFromEvent(ilock.DefaultName, ilock.Event{Sequence: 8, Kind: ilock.EventPaused, Account: initialOwner}),
	}
	if err := WritePending(path, messages); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	loaded, err := ReadPending(path)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Sequence != 7 || loaded[1].Kind != string(ilock.EventPaused) {
		t.Fatalf("unexpected pending messages %+v", loaded)
	}

	if err := WritePending(path, nil); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected pending file to be removed, got %v", err)
	}
	if err := WritePending(path, nil); err != nil {
		t.Fatalf("expected clearing twice to succeed, got %v", err)
	}
}

func TestReadPendingRejectsBadFiles(t *testing.T) {
	directory := t.TempDir()
	cases := map[string]string{
		"not json":     "{",
		"invalid":      `[{"p":"ilock-events","token":"InterlockNetwork","seq":0,"op":"Paused"}]`,
		"out of order": `[{"p":"ilock-events","token":"InterlockNetwork","seq":2,"op":"Paused","account":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8"},{"p":"ilock-events","token":"InterlockNetwork","seq":1,"op":"Unpaused","account":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8"}]`,
	}
	for name, content := range cases {
		path := filepath.Join(directory, name+".json")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		if _, err := ReadPending(path); err == nil {
			t.Fatalf("expected %s to be rejected", name)
		}
	}
}
