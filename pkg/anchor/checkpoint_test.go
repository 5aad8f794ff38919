package anchor

import (
	"errors"
	"testing"

	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
)

func TestStateHashIsStable(t *testing.T) {
	token, err := ilock.New(ilock.DefaultSettings(), initialOwner, ilock.WithClock(ilock.NewManualClock(1_700_000_000)))
	mustSucceed(t, err)

	first, err := StateHash(token.Snapshot())
	mustSucceed(t, err)
	second, err := StateHash(token.Snapshot())
	mustSucceed(t, err)
	if first != second || len(first) != 96 {
		t.Fatalf("expected stable sha384 hex, got %s and %s", first, second)
	}

	mustSucceed(t, token.Transfer(initialOwner, testAccount, ilock.Tokens(1)))
	changed, err := StateHash(token.Snapshot())
	mustSucceed(t, err)
	if changed == first {
		t.Fatal("expected state hash to change with the ledger")
	}
}

func TestCheckpointMessageValidation(t *testing.T) {
	token, err := ilock.New(ilock.DefaultSettings(), initialOwner)
	mustSucceed(t, err)

	message, err := CheckpointMessage(token.Snapshot())
	mustSucceed(t, err)
	payload, err := BuildMessagePayload(message)
	mustSucceed(t, err)
	parsed, err := ParseMessageBytes(payload)
	mustSucceed(t, err)
	if parsed.StateHash != message.StateHash || parsed.Sequence != token.Snapshot().EventSequence {
		t.Fatalf("unexpected parsed checkpoint %+v", parsed)
	}
	if _, err := parsed.Event(); err == nil {
		t.Fatal("expected checkpoint to have no event form")
	}

	message.StateHash = "abc"
	if err := ValidateMessage(message); err == nil {
		t.Fatal("expected short state hash to be rejected")
	}
}

func TestIndexerVerifiesCheckpoints(t *testing.T) {
	topic := newFixtureTopic(t, 4)
	token, publisher, _ := newAnchoredToken(t, ilock.DefaultSettings(), topic)
	mustSucceed(t, token.Transfer(initialOwner, testAccount, ilock.Tokens(9)))
	mustSucceed(t, publisher.Checkpoint(token.Snapshot()))
	checkpointed := token.Snapshot()
	mustSucceed(t, token.Transfer(initialOwner, outsider, ilock.Tokens(2)))
	mustFlush(t, publisher)

	indexer := newFixtureIndexer(t, topic, token.Name())
	mustSucceed(t, indexer.IndexOnce(t.Context()))
	mustSucceed(t, indexer.Audit(token.Snapshot()))

	if len(indexer.Checkpoints()) != 1 {
		t.Fatalf("expected one checkpoint, got %v", indexer.Checkpoints())
	}
	verified, err := indexer.VerifyCheckpoint(checkpointed)
	if err != nil || !verified {
		t.Fatalf("expected checkpoint to verify, got %t (%v)", verified, err)
	}
	verified, err = indexer.VerifyCheckpoint(token.Snapshot())
	if err != nil || verified {
		t.Fatalf("expected no checkpoint at the latest event, got %t (%v)", verified, err)
	}

	tampered := checkpointed
	tampered.TotalSupply = "1"
	_, err = indexer.VerifyCheckpoint(tampered)
	var mismatch AuditMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected mismatch for tampered state, got %v", err)
	}
}

func TestCheckpointRespectsQueueSize(t *testing.T) {
	publisher, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID, Submitter: &recordingSubmitter{}, QueueSize: 1})
	mustSucceed(t, err)
	token, err := ilock.New(ilock.DefaultSettings(), initialOwner)
	mustSucceed(t, err)

	mustSucceed(t, publisher.Checkpoint(token.Snapshot()))
	if err := publisher.Checkpoint(token.Snapshot()); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}
	if stats := publisher.Stats(); stats.Pending != 1 || stats.Dropped != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
