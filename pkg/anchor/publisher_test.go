package anchor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
	"github.com/rs/zerolog"
)

type recordingSubmitter struct {
	mutex    sync.Mutex
	payloads [][]byte
	failNext int
}

func (submitter *recordingSubmitter) Submit(_ context.Context, topicID string, payload []byte) (SubmitResult, error) {
	submitter.mutex.Lock()
	defer submitter.mutex.Unlock()
	if submitter.failNext > 0 {
		submitter.failNext--
		return SubmitResult{}, errors.New("INSUFFICIENT_PAYER_BALANCE")
	}
	submitter.payloads = append(submitter.payloads, append([]byte{}, payload...))
	return SubmitResult{TopicID: topicID, SequenceNumber: uint64(len(submitter.payloads))}, nil
}

func (submitter *recordingSubmitter) sequences(t *testing.T) []uint64 {
	t.Helper()
	submitter.mutex.Lock()
	defer submitter.mutex.Unlock()
	sequences := make([]uint64, 0, len(submitter.payloads))
	for _, payload := range submitter.payloads {
		message, err := ParseMessageBytes(payload)
		if err != nil {
			t.Fatalf("submitted invalid payload: %v", err)
		}
		sequences = append(sequences, message.Sequence)
	}
	return sequences
}

func TestNewPublisherRequiresTopicAndSubmitter(t *testing.T) {
	if _, err := NewPublisher(PublisherConfig{Submitter: &recordingSubmitter{}}); err == nil {
		t.Fatal("expected error for missing topic")
	}
	if _, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID}); err == nil {
		t.Fatal("expected error for missing submitter")
	}
}

func TestPublisherQueuesUntilFlush(t *testing.T) {
	submitter := &recordingSubmitter{}
	publisher, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID, Submitter: submitter, Logger: zerolog.Nop()})
	mustSucceed(t, err)

	token, err := ilock.New(ilock.DefaultSettings(), initialOwner, ilock.WithEventSink(publisher))
	mustSucceed(t, err)
	mustSucceed(t, token.Transfer(initialOwner, testAccount, ilock.Tokens(1)))

	if len(submitter.sequences(t)) != 0 {
		t.Fatal("expected nothing submitted before flush")
	}
	pending := publisher.Pending()
	if pending != int(token.Snapshot().EventSequence) {
		t.Fatalf("expected %d pending, got %d", token.Snapshot().EventSequence, pending)
	}

	if published := mustFlush(t, publisher); published != pending {
		t.Fatalf("expected %d published, got %d", pending, published)
	}
	for index, sequence := range submitter.sequences(t) {
		if sequence != uint64(index+1) {
			t.Fatalf("expected sequence %d at %d, got %d", index+1, index, sequence)
		}
	}

	stats := publisher.Stats()
	if stats.Pending != 0 || stats.Published != uint64(pending) || stats.LastSequence != uint64(pending) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPublisherKeepsQueueOnFailure(t *testing.T) {
	submitter := &recordingSubmitter{failNext: 1}
	publisher, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID, Submitter: submitter, Logger: zerolog.Nop()})
	mustSucceed(t, err)

	for sequence := uint64(1); sequence <= 3; sequence++ {
		publisher.HandleEvent(ilock.Event{Sequence: sequence, Kind: ilock.EventPaused, Account: initialOwner})
	}

	published, err := publisher.Flush(t.Context())
	if err == nil || published != 0 {
		t.Fatalf("expected failed flush, got %d (%v)", published, err)
	}
	if publisher.Pending() != 3 {
		t.Fatalf("expected 3 pending after failure, got %d", publisher.Pending())
	}
	if publisher.Stats().LastError == "" {
		t.Fatal("expected last error to be recorded")
	}

	if published := mustFlush(t, publisher); published != 3 {
		t.Fatalf("expected 3 published on retry, got %d", published)
	}
	sequences := submitter.sequences(t)
	if len(sequences) != 3 || sequences[0] != 1 || sequences[2] != 3 {
		t.Fatalf("unexpected submitted order %v", sequences)
	}
}

func TestPublisherDropsWhenQueueFull(t *testing.T) {
	publisher, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID, Submitter: &recordingSubmitter{}, QueueSize: 2, Logger: zerolog.Nop()})
	mustSucceed(t, err)

	for sequence := uint64(1); sequence <= 5; sequence++ {
		publisher.HandleEvent(ilock.Event{Sequence: sequence, Kind: ilock.EventPaused, Account: initialOwner})
	}
	stats := publisher.Stats()
	if stats.Pending != 2 || stats.Dropped != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPublisherFlushHonorsContext(t *testing.T) {
	publisher, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID, Submitter: &recordingSubmitter{}, Logger: zerolog.Nop()})
	mustSucceed(t, err)
	publisher.HandleEvent(ilock.Event{Sequence: 1, Kind: ilock.EventPaused, Account: initialOwner})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := publisher.Flush(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if publisher.Pending() != 1 {
		t.Fatal("expected event to stay queued")
	}
}

func TestPublisherStartStopFlushes(t *testing.T) {
	submitter := &recordingSubmitter{}
	publisher, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID, Submitter: submitter, Logger: zerolog.Nop()})
	mustSucceed(t, err)

	if err := publisher.Start(t.Context(), 0); err == nil {
		t.Fatal("expected error for zero interval")
	}
	mustSucceed(t, publisher.Start(t.Context(), time.Hour))
	if err := publisher.Start(t.Context(), time.Hour); err == nil {
		t.Fatal("expected error for second start")
	}

	publisher.HandleEvent(ilock.Event{Sequence: 1, Kind: ilock.EventUnpaused, Account: initialOwner})
	publisher.Stop()
	publisher.Stop()

	if publisher.Pending() != 0 || len(submitter.sequences(t)) != 1 {
		t.Fatalf("expected final flush on stop, pending %d", publisher.Pending())
	}
}

func TestPublisherRequeueKeepsLeftoversFirst(t *testing.T) {
	failing := &recordingSubmitter{failNext: 1}
	first, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID, Submitter: failing, Logger: zerolog.Nop()})
	mustSucceed(t, err)
	first.HandleEvent(ilock.Event{Sequence: 1, Kind: ilock.EventPaused, Account: initialOwner})
	first.HandleEvent(ilock.Event{Sequence: 2, Kind: ilock.EventUnpaused, Account: initialOwner})
	if _, err := first.Flush(t.Context()); err == nil {
		t.Fatal("expected failed flush")
	}
	leftovers := first.PendingMessages()
	if len(leftovers) != 2 || leftovers[0].Sequence != 1 {
		t.Fatalf("unexpected leftovers %+v", leftovers)
	}

	submitter := &recordingSubmitter{}
	second, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID, Submitter: submitter, Logger: zerolog.Nop()})
	mustSucceed(t, err)
	mustSucceed(t, second.Requeue(leftovers))
	second.HandleEvent(ilock.Event{Sequence: 3, Kind: ilock.EventPaused, Account: initialOwner})
	if published := mustFlush(t, second); published != 3 {
		t.Fatalf("expected 3 published, got %d", published)
	}
	sequences := submitter.sequences(t)
	if len(sequences) != 3 || sequences[0] != 1 || sequences[2] != 3 {
		t.Fatalf("unexpected submitted order %v", sequences)
	}
}

func TestPublisherRequeueRejectsOverflowAndInvalid(t *testing.T) {
	publisher, err := NewPublisher(PublisherConfig{TopicID: fixtureTopicID, Submitter: &recordingSubmitter{}, QueueSize: 1, Logger: zerolog.Nop()})
	mustSucceed(t, err)

	leftovers := []Message{
		MessageFromEvent(ilock.DefaultName, ilock.Event{Sequence: 1, Kind: ilock.EventPaused, Account: initialOwner}),
		MessageFromEvent(ilock.DefaultName, ilock.Event{Sequence: 2, Kind: ilock.EventUnpaused, Account: initialOwner}),
	}
	if err := publisher.Requeue(leftovers); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}
	if err := publisher.Requeue([]Message{{Protocol: ProtocolID, Kind: "Mint"}}); err == nil {
		t.Fatal("expected invalid message to be rejected")
	}
	if publisher.Pending() != 0 {
		t.Fatalf("expected nothing queued, got %d", publisher.Pending())
	}
}
