package dao

import (
	"sync"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/index"
	"github.com/asdine/storm/v3/q"
	bolt "go.etcd.io/bbolt"

	"github.com/lyftr/sms-webhook/model"
)

type Db interface {
	Init(data interface{}) error
	One(fieldName string, value interface{}, to interface{}) error
	Save(data interface{}) error
	Select(matchers ...q.Matcher) storm.Query
	All(to interface{}, options ...func(*index.Options)) error
	Begin(writable bool) (storm.Node, error)
	Close() error
}

var (
	once     sync.Once
	instance Db
)

func GetClient(dbFilePath string) (Db, error) {
	var err error

	once.Do(func() {
		instance, err = storm.Open(dbFilePath, storm.BoltOptions(0600, &bolt.Options{Timeout: 10 * time.Second, ReadOnly: false}))
		if err != nil {
			return
		}
		//init db structs, no-op if the bucket already exists
		err = instance.Init(&model.Message{})
	})

	return instance, err
}
