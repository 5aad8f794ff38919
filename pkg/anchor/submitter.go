package anchor

import (
	"context"
	"fmt"
	"strings"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/interlock-network/ilock-sdk-go/pkg/shared"
)

// SubmitResult describes one accepted topic message.
type SubmitResult struct {
	TopicID        string
	TransactionID  string
	SequenceNumber uint64
	ConsensusAt    time.Time
}

// Submitter delivers raw payloads to a topic.
type Submitter interface {
	Submit(ctx context.Context, topicID string, payload []byte) (SubmitResult, error)
}

type SubmitterFunc func(ctx context.Context, topicID string, payload []byte) (SubmitResult, error)

func (submitterFunc SubmitterFunc) Submit(ctx context.Context, topicID string, payload []byte) (SubmitResult, error) {
	return submitterFunc(ctx, topicID, payload)
}

// HederaSubmitter submits messages and creates topics through the Hedera SDK
// as the configured operator.
type HederaSubmitter struct {
	client          *hedera.Client
	operatorID      hedera.AccountID
	operatorKey     hedera.PrivateKey
	transactionMemo string
}

// NewHederaSubmitter creates a new HederaSubmitter.
func NewHederaSubmitter(config shared.OperatorConfig, transactionMemo string) (*HederaSubmitter, error) {
	client, operatorID, operatorKey, err := shared.NewOperatorClient(config)
	if err != nil {
		return nil, err
	}
	return &HederaSubmitter{
		client:          client,
		operatorID:      operatorID,
		operatorKey:     operatorKey,
		transactionMemo: strings.TrimSpace(transactionMemo),
	}, nil
}

func (submitter *HederaSubmitter) OperatorAccountID() string {
	return submitter.operatorID.String()
}

func (submitter *HederaSubmitter) Client() *hedera.Client {
	return submitter.client
}

// CreateTopic creates an event topic whose admin and submit keys are the
// operator's key and returns its ID.
func (submitter *HederaSubmitter) CreateTopic(ctx context.Context, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	operatorPublicKey := submitter.operatorKey.PublicKey()
	transaction := BuildCreateTopicTx(CreateTopicTxParams{
		Memo:      memo,
		AdminKey:  operatorPublicKey,
		SubmitKey: operatorPublicKey,
	})

	response, err := transaction.Execute(submitter.client)
	if err != nil {
		return "", fmt.Errorf("failed to create topic: %w", err)
	}
	receipt, err := response.GetReceipt(submitter.client)
	if err != nil {
		return "", fmt.Errorf("failed to get topic create receipt: %w", err)
	}
	if receipt.TopicID == nil {
		return "", fmt.Errorf("topic create receipt missing topic ID")
	}
	return receipt.TopicID.String(), nil
}

// Submit sends payload to topicID and waits for the record.
func (submitter *HederaSubmitter) Submit(ctx context.Context, topicID string, payload []byte) (SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return SubmitResult{}, err
	}

	transaction, err := BuildSubmitMessageTx(SubmitMessageTxParams{
		TopicID:         topicID,
		Payload:         payload,
		TransactionMemo: submitter.transactionMemo,
	})
	if err != nil {
		return SubmitResult{}, err
	}

	response, err := transaction.Execute(submitter.client)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to execute topic message submit: %w", err)
	}
	receipt, err := response.GetReceipt(submitter.client)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to get topic message receipt: %w", err)
	}
	if receipt.Status.String() != "SUCCESS" {
		return SubmitResult{}, fmt.Errorf("topic message submit failed with status %s", receipt.Status.String())
	}

	result := SubmitResult{
		TopicID:        strings.TrimSpace(topicID),
		TransactionID:  response.TransactionID.String(),
		SequenceNumber: receipt.TopicSequenceNumber,
	}
	record, err := response.GetRecord(submitter.client)
	if err == nil {
		result.ConsensusAt = record.ConsensusTimestamp
	}
	return result, nil
}

// Close releases the underlying Hedera client.
func (submitter *HederaSubmitter) Close() error {
	if submitter.client == nil {
		return nil
	}
	return submitter.client.Close()
}
