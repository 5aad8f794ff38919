package anchor

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
)

type SubmitMessageTxParams struct {
	TopicID         string
	Payload         any
	TransactionMemo string
}

// BuildSubmitMessageTx builds a topic message submission for a Message or raw bytes.
func BuildSubmitMessageTx(params SubmitMessageTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	trimmedTopicID := strings.TrimSpace(params.TopicID)
	if trimmedTopicID == "" {
		return nil, fmt.Errorf("topic ID is required")
	}
	topicID, err := hedera.TopicIDFromString(trimmedTopicID)
	if err != nil {
		return nil, fmt.Errorf("invalid topic ID: %w", err)
	}

	var payload []byte
	switch typedPayload := params.Payload.(type) {
	case []byte:
		payload = typedPayload
	case Message:
		payload, err = BuildMessagePayload(typedPayload)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("payload must be []byte or anchor.Message")
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	transaction := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(topicID).
		SetMessage(payload)
	if memo := strings.TrimSpace(params.TransactionMemo); memo != "" {
		transaction.SetTransactionMemo(memo)
	}
	return transaction, nil
}

type CreateTopicTxParams struct {
	Memo      string
	AdminKey  hedera.Key
	SubmitKey hedera.Key
}

// TopicMemo is the default memo for a token's event topic.
func TopicMemo(tokenName string) string {
	return "ilock:events:" + strings.TrimSpace(tokenName)
}

// BuildCreateTopicTx builds the topic creation for an event topic. A submit
// key restricts publishing to its holder.
func BuildCreateTopicTx(params CreateTopicTxParams) *hedera.TopicCreateTransaction {
	memo := strings.TrimSpace(params.Memo)
	if memo == "" {
		memo = TopicMemo(ilock.DefaultName)
	}

	transaction := hedera.NewTopicCreateTransaction().SetTopicMemo(memo)
	if params.AdminKey != nil {
		transaction.SetAdminKey(params.AdminKey)
	}
	if params.SubmitKey != nil {
		transaction.SetSubmitKey(params.SubmitKey)
	}
	return transaction
}
