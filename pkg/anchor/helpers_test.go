package anchor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
	"github.com/interlock-network/ilock-sdk-go/pkg/mirror"
	"github.com/rs/zerolog"
)

const fixtureTopicID = "0.0.5005"

var (
	initialOwner = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	pauser       = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	testAccount  = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
	outsider     = common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65")
)

// fixtureTopic accepts submissions like HCS and serves them like the mirror node.
type fixtureTopic struct {
	mutex    sync.Mutex
	messages []mirror.TopicMessage
	pageSize int
	server   *httptest.Server
}

func newFixtureTopic(t *testing.T, pageSize int) *fixtureTopic {
	t.Helper()
	topic := &fixtureTopic{messages: []mirror.TopicMessage{}, pageSize: pageSize}
	topic.server = httptest.NewServer(http.HandlerFunc(topic.serveMessages))
	t.Cleanup(topic.server.Close)
	return topic
}

func (topic *fixtureTopic) Submit(_ context.Context, topicID string, payload []byte) (SubmitResult, error) {
	topic.appendRaw(payload)
	topic.mutex.Lock()
	defer topic.mutex.Unlock()
	return SubmitResult{TopicID: topicID, SequenceNumber: uint64(len(topic.messages))}, nil
}

func (topic *fixtureTopic) appendRaw(payload []byte) {
	topic.mutex.Lock()
	defer topic.mutex.Unlock()
	sequence := int64(len(topic.messages) + 1)
	topic.messages = append(topic.messages, mirror.TopicMessage{
		ConsensusTimestamp: fmt.Sprintf("1700000000.%09d", sequence),
		Message:            base64.StdEncoding.EncodeToString(payload),
		SequenceNumber:     sequence,
		TopicID:            fixtureTopicID,
	})
}

func (topic *fixtureTopic) serveMessages(responseWriter http.ResponseWriter, request *http.Request) {
	if request.URL.Path != "/api/v1/topics/"+fixtureTopicID+"/messages" {
		responseWriter.WriteHeader(http.StatusNotFound)
		return
	}
	after := int64(0)
	if filter := request.URL.Query().Get("sequencenumber"); filter != "" {
		after, _ = strconv.ParseInt(strings.TrimPrefix(filter, "gt:"), 10, 64)
	}

	topic.mutex.Lock()
	page := make([]mirror.TopicMessage, 0, topic.pageSize)
	for _, message := range topic.messages {
		if message.SequenceNumber > after && len(page) < topic.pageSize {
			page = append(page, message)
		}
	}
	total := int64(len(topic.messages))
	topic.mutex.Unlock()

	body := map[string]any{"messages": page, "links": map[string]any{"next": nil}}
	if len(page) == topic.pageSize && page[len(page)-1].SequenceNumber < total {
		body["links"] = map[string]any{
			"next": fmt.Sprintf("/api/v1/topics/%s/messages?sequencenumber=gt:%d", fixtureTopicID, page[len(page)-1].SequenceNumber),
		}
	}
	_ = json.NewEncoder(responseWriter).Encode(body)
}

func (topic *fixtureTopic) count() int {
	topic.mutex.Lock()
	defer topic.mutex.Unlock()
	return len(topic.messages)
}

func newAnchoredToken(t *testing.T, settings ilock.Settings, topic *fixtureTopic) (*ilock.Token, *Publisher, *ilock.ManualClock) {
	t.Helper()
	publisher, err := NewPublisher(PublisherConfig{
		TopicID:   fixtureTopicID,
		TokenName: settings.Name,
		Submitter: topic,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("unexpected publisher error: %v", err)
	}
	clock := ilock.NewManualClock(1_700_000_000)
	token, err := ilock.New(settings, initialOwner, ilock.WithClock(clock), ilock.WithEventSink(publisher))
	if err != nil {
		t.Fatalf("unexpected genesis error: %v", err)
	}
	return token, publisher, clock
}

func newFixtureIndexer(t *testing.T, topic *fixtureTopic, tokenName string) *Indexer {
	t.Helper()
	indexer, err := NewIndexer(IndexerConfig{
		MirrorBaseURL: topic.server.URL,
		HTTPClient:    &http.Client{Timeout: 5 * time.Second},
		TopicID:       fixtureTopicID,
		TokenName:     tokenName,
		Logger:        zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("unexpected indexer error: %v", err)
	}
	return indexer
}

func mustSucceed(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func mustFlush(t *testing.T, publisher *Publisher) int {
	t.Helper()
	published, err := publisher.Flush(t.Context())
	if err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}
	return published
}
