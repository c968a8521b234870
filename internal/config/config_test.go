package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "workpad.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Store.Backend, cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.LockTTL))
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
lock_ttl: 5s
store:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
    ttl: 24h
http:
  addr: ":9090"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.LockTTL))
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 24*time.Hour, time.Duration(cfg.Store.Redis.TTL))
	assert.Equal(t, "workpad:", cfg.Store.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workpad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store":{"backend":"sqlite","path":"pads.db"},"lock_ttl":"1m"}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "pads.db", cfg.Store.Path)
	assert.Equal(t, time.Minute, time.Duration(cfg.LockTTL))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WORKPAD_STORE", "memory")
	t.Setenv("WORKPAD_REDIS_DB", "7")
	t.Setenv("WORKPAD_LOCK_TTL", "2s")
	t.Setenv("WORKPAD_HTTP_ADDR", "127.0.0.1:0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 7, cfg.Store.Redis.DB)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.LockTTL))
	assert.Equal(t, "127.0.0.1:0", cfg.HTTP.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("backend", func(t *testing.T) {
		t.Setenv("WORKPAD_STORE", "s3")
		_, err := Load("")
		assert.ErrorContains(t, err, "unknown store backend")
	})
	t.Run("redis db", func(t *testing.T) {
		t.Setenv("WORKPAD_REDIS_DB", "two")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("postgres dsn", func(t *testing.T) {
		t.Setenv("WORKPAD_STORE", "postgres")
		_, err := Load("")
		assert.ErrorContains(t, err, "store.postgres.dsn")
	})
	t.Run("mongo uri", func(t *testing.T) {
		t.Setenv("WORKPAD_STORE", "mongo")
		_, err := Load("")
		assert.ErrorContains(t, err, "store.mongo.uri")
	})
	t.Run("backup path", func(t *testing.T) {
		t.Setenv("WORKPAD_BACKUP_SCHEDULE", "@hourly")
		t.Setenv("WORKPAD_BACKUP_PATH", "")
		_, err := Load("")
		assert.ErrorContains(t, err, "backup.path")
	})
	t.Run("key length", func(t *testing.T) {
		t.Setenv("WORKPAD_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
		_, err := Load("")
		assert.ErrorContains(t, err, "32 bytes")
	})
}

func TestStoreConfig_Key(t *testing.T) {
	raw := make([]byte, 32)
	s := StoreConfig{EncryptionKey: base64.StdEncoding.EncodeToString(raw)}
	key, err := s.Key()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	key, err = StoreConfig{}.Key()
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestLoad_DocumentBackends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workpad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: mongo
  mongo:
    uri: mongodb://db:27017
    database: canvas
backup:
  schedule: "@daily"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMongo, cfg.Store.Backend)
	assert.Equal(t, "mongodb://db:27017", cfg.Store.Mongo.URI)
	assert.Equal(t, "canvas", cfg.Store.Mongo.Database)
	assert.Equal(t, "@daily", cfg.Backup.Schedule)
	assert.Equal(t, Default().Backup.Path, cfg.Backup.Path)

	t.Setenv("WORKPAD_STORE", "postgres")
	t.Setenv("WORKPAD_POSTGRES_DSN", "postgres://localhost/workpad")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/workpad", cfg.Store.Postgres.DSN)
}
