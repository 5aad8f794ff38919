package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/interlock-network/ilock-sdk-go/pkg/shared"
)

const (
	mainnetBaseURL = "https://mainnet-public.mirrornode.hedera.com"
	testnetBaseURL = "https://testnet.mirrornode.hedera.com"

	defaultPageLimit = 100
)

// ErrStopWalk ends WalkTopicMessages early without an error.
var ErrStopWalk = errors.New("mirror: stop walk")

type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
	Headers    map[string]string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	headers    map[string]string
}

// MessageQuery selects topic messages. AfterSequence is exclusive; zero
// starts at the first message.
type MessageQuery struct {
	AfterSequence int64
	Limit         int
	Order         string
}

// StatusError is returned for a non-2xx mirror node response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (errorValue StatusError) Error() string {
	return fmt.Sprintf("mirror node request failed with status %d: %s", errorValue.StatusCode, errorValue.Body)
}

// IsNotFound reports whether err is a 404 from the mirror node.
func IsNotFound(err error) bool {
	var statusErr StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = testnetBaseURL
		if network == shared.NetworkMainnet {
			baseURL = mainnetBaseURL
		}
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if parsedBaseURL.Scheme != "http" && parsedBaseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid mirror base URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsedBaseURL.Host) == "" {
		return nil, fmt.Errorf("invalid mirror base URL: host is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := make(map[string]string, len(config.Headers))
	for key, value := range config.Headers {
		headers[key] = value
	}

	return &Client{
		baseURL:    strings.TrimRight(parsedBaseURL.String(), "/"),
		httpClient: httpClient,
		apiKey:     strings.TrimSpace(config.APIKey),
		headers:    headers,
	}, nil
}

func (client *Client) BaseURL() string {
	return client.baseURL
}

// GetTopicInfo returns the topic's metadata.
func (client *Client) GetTopicInfo(ctx context.Context, topicID string) (TopicInfo, error) {
	var topicInfo TopicInfo
	normalizedTopicID := strings.TrimSpace(topicID)
	if normalizedTopicID == "" {
		return topicInfo, fmt.Errorf("topic ID is required")
	}

	if err := client.getJSON(ctx, "/api/v1/topics/"+normalizedTopicID, &topicInfo); err != nil {
		return topicInfo, err
	}
	return topicInfo, nil
}

// WalkTopicMessages calls visit for every message matching query, following
// the mirror node's next links. Returning ErrStopWalk from visit stops the
// walk cleanly.
func (client *Client) WalkTopicMessages(
	ctx context.Context,
	topicID string,
	query MessageQuery,
	visit func(message TopicMessage) error,
) error {
	normalizedTopicID := strings.TrimSpace(topicID)
	if normalizedTopicID == "" {
		return fmt.Errorf("topic ID is required")
	}

	values := url.Values{}
	if query.AfterSequence > 0 {
		values.Set("sequencenumber", "gt:"+strconv.FormatInt(query.AfterSequence, 10))
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	values.Set("limit", strconv.Itoa(limit))
	order := strings.TrimSpace(query.Order)
	if order == "" {
		order = "asc"
	}
	values.Set("order", order)

	next := fmt.Sprintf("/api/v1/topics/%s/messages?%s", normalizedTopicID, values.Encode())
	for next != "" {
		var page topicMessagesResponse
		if err := client.getJSON(ctx, next, &page); err != nil {
			return err
		}
		for _, message := range page.Messages {
			if err := visit(message); err != nil {
				if errors.Is(err, ErrStopWalk) {
					return nil
				}
				return err
			}
		}
		next = page.Links.Next
	}
	return nil
}

// GetTopicMessages collects every message matching query.
func (client *Client) GetTopicMessages(ctx context.Context, topicID string, query MessageQuery) ([]TopicMessage, error) {
	messages := make([]TopicMessage, 0)
	err := client.WalkTopicMessages(ctx, topicID, query, func(message TopicMessage) error {
		messages = append(messages, message)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetTopicMessageBySequence returns nil when the message is not yet visible.
func (client *Client) GetTopicMessageBySequence(ctx context.Context, topicID string, sequence int64) (*TopicMessage, error) {
	if sequence <= 0 {
		return nil, fmt.Errorf("sequence must be positive")
	}

	var found *TopicMessage
	err := client.WalkTopicMessages(ctx, topicID, MessageQuery{AfterSequence: sequence - 1, Limit: 1}, func(message TopicMessage) error {
		if message.SequenceNumber == sequence {
			found = &message
		}
		return ErrStopWalk
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// DecodeMessageData returns the raw bytes of a message's base64 payload.
func DecodeMessageData(message TopicMessage) ([]byte, error) {
	if strings.TrimSpace(message.Message) == "" {
		return nil, fmt.Errorf("message payload is empty")
	}
	return base64.StdEncoding.DecodeString(message.Message)
}

func DecodeMessageJSON[T any](message TopicMessage, target *T) error {
	payload, err := DecodeMessageData(message)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("failed to decode topic message JSON: %w", err)
	}
	return nil
}

// ParseConsensusTimestamp parses "seconds.nanoseconds" as reported by the mirror node.
func ParseConsensusTimestamp(value string) (time.Time, error) {
	secondsPart, nanosPart, _ := strings.Cut(strings.TrimSpace(value), ".")
	seconds, err := strconv.ParseInt(secondsPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid consensus timestamp %q: %w", value, err)
	}
	var nanos int64
	if nanosPart != "" {
		if len(nanosPart) > 9 {
			return time.Time{}, fmt.Errorf("invalid consensus timestamp %q", value)
		}
		nanos, err = strconv.ParseInt(nanosPart+strings.Repeat("0", 9-len(nanosPart)), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid consensus timestamp %q: %w", value, err)
		}
	}
	return time.Unix(seconds, nanos).UTC(), nil
}

func (client *Client) getJSON(ctx context.Context, pathOrURL string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.resolveURL(pathOrURL), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if client.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+client.apiKey)
	}
	for key, value := range client.headers {
		request.Header.Set(key, value)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("mirror node request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read mirror node response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return StatusError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode mirror node response: %w", err)
	}
	return nil
}

func (client *Client) resolveURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return client.baseURL + pathOrURL
}
