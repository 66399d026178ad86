package service

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lyftr/sms-webhook/service/dto"
)

const maxTextLen = 4096

// e164Rx matches E.164 numbers: + then 8-15 digits, leading digit 1-9.
var e164Rx = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

func validateMessage(msg dto.WebhookMessage) error {
	if msg.MessageID == "" {
		return NewInvalidPayloadError("message_id must not be empty")
	}
	if !e164Rx.MatchString(msg.From) {
		return NewInvalidPayloadError("invalid from number")
	}
	if !e164Rx.MatchString(msg.To) {
		return NewInvalidPayloadError("invalid to number")
	}
	if !strings.HasSuffix(msg.Ts, "Z") {
		return NewInvalidPayloadError("ts must end with Z")
	}
	if _, err := time.Parse(time.RFC3339, msg.Ts); err != nil {
		return NewInvalidPayloadError("invalid ts format")
	}
	if msg.Text != nil && utf8.RuneCountInString(*msg.Text) > maxTextLen {
		return NewInvalidPayloadError("text exceeds 4096 characters")
	}
	return nil
}

// normalizeFrom restores the leading + that query-string decoding turns
// into a space when callers do not percent-encode it.
func normalizeFrom(from string) string {
	from = strings.TrimSpace(from)
	if from == "" || strings.HasPrefix(from, "+") {
		return from
	}
	if from[0] >= '0' && from[0] <= '9' {
		return "+" + from
	}
	return from
}
