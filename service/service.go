package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lyftr/sms-webhook/dao"
	"github.com/lyftr/sms-webhook/model"
	"github.com/lyftr/sms-webhook/service/dto"
	"github.com/lyftr/sms-webhook/util"
)

const (
	ResultCreated   = "created"
	ResultDuplicate = "duplicate"

	//DefaultLimit is applied when /messages is called without a limit
	DefaultLimit = 50
	//MaxLimit is the largest accepted page size
	MaxLimit = 100

	topSenders = 10
)

type InvalidPayloadErr struct {
	message string
}

func (e *InvalidPayloadErr) Error() string {
	return e.message
}

func NewInvalidPayloadError(msg string) *InvalidPayloadErr {
	return &InvalidPayloadErr{message: msg}
}

type UnauthorizedErr struct {
	message string
}

func (e *UnauthorizedErr) Error() string {
	return e.message
}

func NewUnauthorizedError(msg string) *UnauthorizedErr {
	return &UnauthorizedErr{message: msg}
}

type NotConfiguredErr struct {
	message string
}

func (e *NotConfiguredErr) Error() string {
	return e.message
}

func NewNotConfiguredError(msg string) *NotConfiguredErr {
	return &NotConfiguredErr{message: msg}
}

type Service interface {
	//IngestWebhook verifies, validates and idempotently stores one webhook
	//delivery. It returns ResultCreated on first delivery of a message id
	//and ResultDuplicate on redelivery; both are successful outcomes.
	IngestWebhook(rawBody []byte, signature string) (string, error)
	//ListMessages returns a filtered page of stored messages
	ListMessages(params dto.QueryParams) (dto.MessagePage, error)
	//Stats returns aggregate counters over all stored messages
	Stats() (dto.Stats, error)
	//Ready reports whether the webhook secret is configured
	Ready() bool
}

type service struct {
	messageDao dao.MessageDao
	secret     string
}

func NewService(messageDao dao.MessageDao, secret string) Service {
	return &service{
		messageDao: messageDao,
		secret:     secret,
	}
}

func ComputeSignature(secret string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *service) Ready() bool {
	return !util.IsBlank(s.secret)
}

func (s *service) IngestWebhook(rawBody []byte, signature string) (string, error) {
	if util.IsBlank(s.secret) {
		return "", NewNotConfiguredError("webhook secret not configured")
	}

	expected := ComputeSignature(s.secret, rawBody)
	if signature == "" || !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", NewUnauthorizedError("invalid signature")
	}

	var msg dto.WebhookMessage
	if err := json.Unmarshal(rawBody, &msg); err != nil {
		return "", NewInvalidPayloadError("invalid json")
	}

	if err := validateMessage(msg); err != nil {
		return "", err
	}

	created, err := s.messageDao.InsertIfAbsent(model.Message{
		MessageID:  msg.MessageID,
		FromMsisdn: msg.From,
		ToMsisdn:   msg.To,
		Ts:         msg.Ts,
		Text:       msg.Text,
		CreatedAt:  utcNow(),
	})
	if err != nil {
		return "", err
	}

	result := ResultCreated
	if !created {
		result = ResultDuplicate
	}

	zap.L().Info("webhook processed",
		zap.String("message_id", msg.MessageID),
		zap.String("result", result),
		zap.Bool("dup", !created))

	return result, nil
}

func (s *service) ListMessages(params dto.QueryParams) (dto.MessagePage, error) {
	if params.Limit < 1 {
		return dto.MessagePage{}, NewInvalidPayloadError("limit must be >= 1")
	}
	if params.Limit > MaxLimit {
		return dto.MessagePage{}, NewInvalidPayloadError("limit must be <= 100")
	}
	if params.Offset < 0 {
		return dto.MessagePage{}, NewInvalidPayloadError("offset must be >= 0")
	}

	filter := dao.Filter{
		FromMsisdn: normalizeFrom(params.From),
		Since:      params.Since,
		Text:       params.Q,
	}

	total, err := s.messageDao.Count(filter)
	if err != nil {
		return dto.MessagePage{}, err
	}

	messages, err := s.messageDao.Find(filter, params.Limit, params.Offset)
	if err != nil {
		return dto.MessagePage{}, err
	}

	data := make([]dto.MessageOut, 0, len(messages))
	for _, m := range messages {
		data = append(data, dto.MessageOut{
			MessageID: m.MessageID,
			From:      m.FromMsisdn,
			To:        m.ToMsisdn,
			Ts:        m.Ts,
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}

	return dto.MessagePage{
		Data:   data,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

func (s *service) Stats() (dto.Stats, error) {
	messages, err := s.messageDao.GetAll()
	if err != nil {
		return dto.Stats{}, err
	}

	stats := dto.Stats{
		TotalMessages:     len(messages),
		MessagesPerSender: []dto.SenderCount{},
	}

	perSender := make(map[string]int)
	var first, last model.Message
	for i, m := range messages {
		perSender[m.FromMsisdn]++
		if i == 0 || before(m, first) {
			first = m
		}
		if i == 0 || before(last, m) {
			last = m
		}
	}
	stats.SendersCount = len(perSender)

	for from, count := range perSender {
		stats.MessagesPerSender = append(stats.MessagesPerSender, dto.SenderCount{From: from, Count: count})
	}
	//rank by count descending, ties by sender ascending
	sort.Slice(stats.MessagesPerSender, func(i, j int) bool {
		a, b := stats.MessagesPerSender[i], stats.MessagesPerSender[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.From < b.From
	})
	if len(stats.MessagesPerSender) > topSenders {
		stats.MessagesPerSender = stats.MessagesPerSender[:topSenders]
	}

	if len(messages) > 0 {
		firstTs, lastTs := first.Ts, last.Ts
		stats.FirstMessageTs = &firstTs
		stats.LastMessageTs = &lastTs
	}

	return stats, nil
}

// before orders messages by (Ts, MessageID) ascending.
func before(a, b model.Message) bool {
	if a.Ts != b.Ts {
		return a.Ts < b.Ts
	}
	return a.MessageID < b.MessageID
}

func utcNow() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
