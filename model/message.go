package model

// Message is a single inbound SMS event. Records are immutable once stored:
// there are no update or delete operations on this entity.
type Message struct {
	MessageID  string `storm:"id"`
	FromMsisdn string `storm:"index"`
	ToMsisdn   string
	Ts         string `storm:"index"`
	Text       *string
	CreatedAt  string
}
