package dto

// WebhookMessage is the inbound webhook payload. Field names are
// wire-stable and must not be renamed.
type WebhookMessage struct {
	MessageID string  `json:"message_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Ts        string  `json:"ts"`
	Text      *string `json:"text"`
}

type MessageOut struct {
	MessageID string  `json:"message_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Ts        string  `json:"ts"`
	Text      *string `json:"text"`
	CreatedAt string  `json:"created_at"`
}

type MessagePage struct {
	Data   []MessageOut `json:"data"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// QueryParams carries the /messages query parameters after parsing.
type QueryParams struct {
	Limit  int
	Offset int
	From   string
	Since  string
	Q      string
}

type SenderCount struct {
	From  string `json:"from"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalMessages     int           `json:"total_messages"`
	SendersCount      int           `json:"senders_count"`
	MessagesPerSender []SenderCount `json:"messages_per_sender"`
	FirstMessageTs    *string       `json:"first_message_ts"`
	LastMessageTs     *string       `json:"last_message_ts"`
}
