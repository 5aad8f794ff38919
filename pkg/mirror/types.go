package mirror

type TopicInfo struct {
	TopicID          string         `json:"topic_id"`
	Memo             string         `json:"memo"`
	Deleted          bool           `json:"deleted"`
	CreatedTimestamp string         `json:"created_timestamp"`
	AdminKey         map[string]any `json:"admin_key"`
	SubmitKey        map[string]any `json:"submit_key"`
}

// TopicMessage is one HCS message. Message holds the base64 payload.
type TopicMessage struct {
	ConsensusTimestamp string `json:"consensus_timestamp"`
	Message            string `json:"message"`
	PayerAccountID     string `json:"payer_account_id"`
	RunningHash        string `json:"running_hash"`
	SequenceNumber     int64  `json:"sequence_number"`
	TopicID            string `json:"topic_id"`
}

type topicMessagesResponse struct {
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
	Messages []TopicMessage `json:"messages"`
}
