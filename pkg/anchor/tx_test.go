package anchor

import (
	"encoding/json"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
)

func TestBuildSubmitMessageTx(t *testing.T) {
	message := Message{Protocol: ProtocolID, Token: ilock.DefaultName, Sequence: 1, Kind: string(ilock.EventPaused), Account: initialOwner.Hex()}
	transaction, err := BuildSubmitMessageTx(SubmitMessageTxParams{
		TopicID:         "0.0.100",
		Payload:         message,
		TransactionMemo: "ilock:anchor",
	})
	if err != nil {
		t.Fatalf("BuildSubmitMessageTx failed: %v", err)
	}
	if transaction.GetTopicID().String() != "0.0.100" {
		t.Fatalf("unexpected topic ID: %s", transaction.GetTopicID().String())
	}
	if transaction.GetTransactionMemo() != "ilock:anchor" {
		t.Fatalf("unexpected transaction memo: %s", transaction.GetTransactionMemo())
	}

	var decoded Message
	if err := json.Unmarshal(transaction.GetMessage(), &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded != message {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestBuildSubmitMessageTxRejectsBadInput(t *testing.T) {
	cases := []SubmitMessageTxParams{
		{TopicID: "", Payload: []byte("x")},
		{TopicID: "not-a-topic", Payload: []byte("x")},
		{TopicID: "0.0.100", Payload: []byte{}},
		{TopicID: "0.0.100", Payload: "text"},
		{TopicID: "0.0.100", Payload: Message{Protocol: ProtocolID}},
	}
	for _, params := range cases {
		if _, err := BuildSubmitMessageTx(params); err == nil {
			t.Fatalf("expected error for %+v", params)
		}
	}
}

func TestBuildCreateTopicTx(t *testing.T) {
	transaction := BuildCreateTopicTx(CreateTopicTxParams{})
	if transaction.GetTopicMemo() != "ilock:events:InterlockNetwork" {
		t.Fatalf("unexpected topic memo: %s", transaction.GetTopicMemo())
	}

	privateKey, err := hedera.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("failed to generate private key: %v", err)
	}
	transaction = BuildCreateTopicTx(CreateTopicTxParams{
		Memo:      TopicMemo("Staging"),
		AdminKey:  privateKey.PublicKey(),
		SubmitKey: privateKey.PublicKey(),
	})
	if transaction.GetTopicMemo() != "ilock:events:Staging" {
		t.Fatalf("unexpected topic memo: %s", transaction.GetTopicMemo())
	}
	submitKey, submitErr := transaction.GetSubmitKey()
	if submitErr != nil || submitKey == nil {
		t.Fatalf("expected submit key to be set: %v", submitErr)
	}
}
