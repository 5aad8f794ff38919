package anchor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
	"github.com/rs/zerolog"
)

const defaultQueueSize = 4096

type PublisherConfig struct {
	TopicID   string
	TokenName string
	Submitter Submitter
	Logger    zerolog.Logger
	// QueueSize bounds the events held between flushes. Events arriving
	// while the queue is full are dropped and counted.
	QueueSize int
}

// PublisherStats is a point-in-time view of a Publisher.
type PublisherStats struct {
	Pending       int
	Published     uint64
	Dropped       uint64
	LastSequence  uint64
	LastResult    SubmitResult
	LastError     string
	LastFlushedAt time.Time
}

// Publisher queues ledger events and submits them to an HCS topic in order.
// It never calls back into the token, so it is safe as an ilock.EventSink.
type Publisher struct {
	topicID   string
	tokenName string
	submitter Submitter
	logger    zerolog.Logger
	queueSize int

	mutex sync.Mutex
	queue []Message
	stats PublisherStats

	flushMutex sync.Mutex

	pollMutex sync.Mutex
	pollStop  chan struct{}
	pollDone  chan struct{}
}

// NewPublisher creates a new Publisher.
func NewPublisher(config PublisherConfig) (*Publisher, error) {
	topicID := strings.TrimSpace(config.TopicID)
	if topicID == "" {
		return nil, fmt.Errorf("topic ID is required")
	}
	if config.Submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	tokenName := strings.TrimSpace(config.TokenName)
	if tokenName == "" {
		tokenName = ilock.DefaultName
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &Publisher{
		topicID:   topicID,
		tokenName: tokenName,
		submitter: config.Submitter,
		logger:    config.Logger.With().Str("component", "anchor").Str("topic", topicID).Logger(),
		queueSize: queueSize,
		queue:     make([]Message, 0),
	}, nil
}

func (publisher *Publisher) TopicID() string {
	return publisher.topicID
}

// HandleEvent queues event for the next flush.
func (publisher *Publisher) HandleEvent(event ilock.Event) {
	message := MessageFromEvent(publisher.tokenName, event)

	publisher.mutex.Lock()
	defer publisher.mutex.Unlock()
	if len(publisher.queue) >= publisher.queueSize {
		publisher.stats.Dropped++
		publisher.logger.Warn().
			Uint64("sequence", event.Sequence).
			Str("kind", string(event.Kind)).
			Msg("anchor queue full, dropping event")
		return
	}
	publisher.queue = append(publisher.queue, message)
}

// Requeue queues messages left over from an earlier publisher ahead of any
// event handled afterwards. It fails without queueing anything when a
// message is invalid or the queue cannot hold them all.
func (publisher *Publisher) Requeue(messages []Message) error {
	for _, message := range messages {
		if err := ValidateMessage(message); err != nil {
			return err
		}
	}

	publisher.mutex.Lock()
	defer publisher.mutex.Unlock()
	if len(publisher.queue)+len(messages) > publisher.queueSize {
		return fmt.Errorf("%w: %d pending, %d queued, limit %d", ErrQueueFull, len(messages), len(publisher.queue), publisher.queueSize)
	}
	publisher.queue = append(publisher.queue, messages...)
	return nil
}

// PendingMessages returns a copy of the queued messages in submission order.
func (publisher *Publisher) PendingMessages() []Message {
	publisher.mutex.Lock()
	defer publisher.mutex.Unlock()
	return append([]Message(nil), publisher.queue...)
}

func (publisher *Publisher) Pending() int {
	publisher.mutex.Lock()
	defer publisher.mutex.Unlock()
	return len(publisher.queue)
}

func (publisher *Publisher) Stats() PublisherStats {
	publisher.mutex.Lock()
	defer publisher.mutex.Unlock()
	stats := publisher.stats
	stats.Pending = len(publisher.queue)
	return stats
}

// Flush submits queued messages in order and returns how many were
// accepted. It stops at the first failure; that message and everything
// behind it stay queued for the next flush.
func (publisher *Publisher) Flush(ctx context.Context) (int, error) {
	publisher.flushMutex.Lock()
	defer publisher.flushMutex.Unlock()

	published := 0
	for {
		if err := ctx.Err(); err != nil {
			return published, err
		}

		publisher.mutex.Lock()
		if len(publisher.queue) == 0 {
			publisher.stats.LastFlushedAt = time.Now().UTC()
			publisher.mutex.Unlock()
			return published, nil
		}
		message := publisher.queue[0]
		publisher.mutex.Unlock()

		result, err := publisher.submit(ctx, message)
		if err != nil {
			publisher.mutex.Lock()
			publisher.stats.LastError = err.Error()
			publisher.mutex.Unlock()
			publisher.logger.Warn().
				Err(err).
				Uint64("sequence", message.Sequence).
				Int("published", published).
				Msg("anchor flush stopped")
			return published, err
		}

		publisher.mutex.Lock()
		publisher.queue = publisher.queue[1:]
		publisher.stats.Published++
		publisher.stats.LastSequence = message.Sequence
		publisher.stats.LastResult = result
		publisher.stats.LastError = ""
		publisher.mutex.Unlock()
		published++

		publisher.logger.Debug().
			Uint64("sequence", message.Sequence).
			Str("kind", message.Kind).
			Uint64("topicSequence", result.SequenceNumber).
			Msg("anchored event")
	}
}

func (publisher *Publisher) submit(ctx context.Context, message Message) (SubmitResult, error) {
	payload, err := BuildMessagePayload(message)
	if err != nil {
		return SubmitResult{}, err
	}
	return publisher.submitter.Submit(ctx, publisher.topicID, payload)
}

// Start flushes every interval until ctx is done or Stop is called. A
// final flush runs on the way out.
func (publisher *Publisher) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("flush interval must be positive")
	}

	publisher.pollMutex.Lock()
	defer publisher.pollMutex.Unlock()
	if publisher.pollStop != nil {
		return fmt.Errorf("publisher already started")
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	publisher.pollStop = stop
	publisher.pollDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				publisher.finalFlush()
				return
			case <-stop:
				publisher.finalFlush()
				return
			case <-ticker.C:
				_, _ = publisher.Flush(ctx)
			}
		}
	}()
	return nil
}

// Stop ends a Start loop and waits for its final flush.
func (publisher *Publisher) Stop() {
	publisher.pollMutex.Lock()
	stop := publisher.pollStop
	done := publisher.pollDone
	publisher.pollStop = nil
	publisher.pollDone = nil
	publisher.pollMutex.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (publisher *Publisher) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := publisher.Flush(ctx); err != nil {
		publisher.logger.Warn().Err(err).Int("pending", publisher.Pending()).Msg("events left unanchored")
	}
}
