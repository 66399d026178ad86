package dao

import (
	"strings"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"

	"github.com/lyftr/sms-webhook/model"
)

// Filter narrows message queries. Zero-valued fields are ignored,
// provided fields are AND-combined.
type Filter struct {
	//FromMsisdn matches the sender number exactly
	FromMsisdn string
	//Since is an inclusive lower bound on Ts (lexicographic, ISO-8601)
	Since string
	//Text matches as a case-insensitive substring of the message text
	Text string
}

type MessageDao interface {
	//InsertIfAbsent stores msg unless a message with the same id already exists.
	//It reports whether a new record was created; an existing record is never touched.
	InsertIfAbsent(msg model.Message) (bool, error)
	//Find returns messages matching filter ordered by (Ts, MessageID) ascending
	Find(filter Filter, limit, offset int) ([]model.Message, error)
	//Count returns the number of messages matching filter
	Count(filter Filter) (int, error)
	//GetAll returns all messages
	GetAll() ([]model.Message, error)
}

func NewMessageDao(db Db) MessageDao {
	return &messageDao{db: db}
}

type messageDao struct {
	db Db
}

func (d messageDao) InsertIfAbsent(msg model.Message) (bool, error) {
	//bolt allows a single writer, so check-then-save inside one writable
	//transaction resolves concurrent attempts on the same id deterministically
	tx, err := d.db.Begin(true)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var existing model.Message
	err = tx.One("MessageID", msg.MessageID, &existing)
	if err == nil {
		return false, nil
	}
	if err != storm.ErrNotFound {
		return false, err
	}

	if err := tx.Save(&msg); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (d messageDao) Find(filter Filter, limit, offset int) ([]model.Message, error) {
	var messages []model.Message
	err := d.db.Select(matchers(filter)...).
		OrderBy("Ts", "MessageID").
		Skip(offset).
		Limit(limit).
		Find(&messages)
	if err == storm.ErrNotFound {
		return []model.Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (d messageDao) Count(filter Filter) (int, error) {
	count, err := d.db.Select(matchers(filter)...).Count(new(model.Message))
	if err == storm.ErrNotFound {
		return 0, nil
	}
	return count, err
}

func (d messageDao) GetAll() (messages []model.Message, err error) {
	err = d.db.All(&messages)
	return
}

func matchers(filter Filter) []q.Matcher {
	var ms []q.Matcher
	if filter.FromMsisdn != "" {
		ms = append(ms, q.Eq("FromMsisdn", filter.FromMsisdn))
	}
	if filter.Since != "" {
		ms = append(ms, q.Gte("Ts", filter.Since))
	}
	if filter.Text != "" {
		ms = append(ms, q.NewFieldMatcher("Text", &textMatcher{needle: strings.ToLower(filter.Text)}))
	}
	if len(ms) == 0 {
		ms = append(ms, q.True())
	}
	return ms
}

// textMatcher does a case-insensitive substring match on the optional
// message text, treating an absent text as the empty string.
type textMatcher struct {
	needle string
}

func (m *textMatcher) MatchField(v interface{}) (bool, error) {
	text, _ := v.(*string)
	if text == nil {
		return strings.Contains("", m.needle), nil
	}
	return strings.Contains(strings.ToLower(*text), m.needle), nil
}
