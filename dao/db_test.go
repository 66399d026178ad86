package dao

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/lyftr/sms-webhook/model"
)

func createDB(t *testing.T) (Db, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "messages.db")
	db, err := storm.Open(dbPath, storm.BoltOptions(0600, &bolt.Options{Timeout: 10 * time.Second}))
	require.NoError(t, err)
	require.NoError(t, db.Init(&model.Message{}))

	return db, func() { db.Close() }
}

func TestGetClient(t *testing.T) {
	dir, err := os.MkdirTemp(os.TempDir(), "storm")
	require.NoError(t, err)

	dbPath := filepath.Join(dir, "storm.db")
	db, err := GetClient(dbPath)
	require.NoError(t, err)

	defer func() {
		db.Close()
		os.RemoveAll(dir)
	}()

	require.FileExists(t, dbPath, "Expected that db file exists")
}

func TestGetClientSingleton(t *testing.T) {
	dir, err := os.MkdirTemp(os.TempDir(), "storm")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	first, err := GetClient(filepath.Join(dir, "first.db"))
	require.NoError(t, err)

	second, err := GetClient(filepath.Join(dir, "second.db"))
	require.NoError(t, err)

	require.Equal(t, first, second, "Expected the same client instance")
}
