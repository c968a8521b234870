package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends understood by the CLI.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WORKPAD_"

// Config is the CLI configuration, read from workpad.yaml and the environment.
type Config struct {
	LogLevel string      `yaml:"log_level" json:"log_level"`
	Store    StoreConfig `yaml:"store" json:"store"`
	HTTP     HTTPConfig  `yaml:"http" json:"http"`
	Backup   Backup      `yaml:"backup" json:"backup"`
	LockTTL  Duration    `yaml:"lock_ttl" json:"lock_ttl"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend string `yaml:"backend" json:"backend"`

	// Path is the directory of the file backend or the database file of the sqlite backend.
	Path string `yaml:"path" json:"path"`

	Redis    RedisConfig    `yaml:"redis" json:"redis"`
	Postgres PostgresConfig `yaml:"postgres" json:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo" json:"mongo"`

	// EncryptionKey is a base64 AES-256 key. When set, documents are encrypted at rest.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
}

// RedisConfig configures the redis backend and its distributed locker.
type RedisConfig struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	DSN   string `yaml:"dsn" json:"dsn"`
	Table string `yaml:"table" json:"table"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `yaml:"uri" json:"uri"`
	Database   string `yaml:"database" json:"database"`
	Collection string `yaml:"collection" json:"collection"`
}

// Backup schedules snapshots of the store into a directory of JSON files.
// An empty Schedule disables backups.
type Backup struct {
	Schedule string `yaml:"schedule" json:"schedule"`
	Path     string `yaml:"path" json:"path"`
}

// HTTPConfig configures `workpad serve`.
type HTTPConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	Metrics bool   `yaml:"metrics" json:"metrics"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    filepath.Join(".workpad", "workpads"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "workpad:",
			},
		},
		HTTP: HTTPConfig{
			Addr:    ":8080",
			Metrics: true,
		},
		Backup: Backup{
			Path: filepath.Join(".workpad", "backups"),
		},
		LockTTL: Duration(30 * time.Second),
	}
}

// Load reads the configuration file at path (YAML or JSON) over the defaults
// and applies WORKPAD_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, &cfg); err != nil {
				return Config{}, err
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"LOG_LEVEL":       &cfg.LogLevel,
		"STORE":           &cfg.Store.Backend,
		"STORE_PATH":      &cfg.Store.Path,
		"ENCRYPTION_KEY":  &cfg.Store.EncryptionKey,
		"REDIS_ADDR":      &cfg.Store.Redis.Addr,
		"REDIS_PASSWORD":  &cfg.Store.Redis.Password,
		"REDIS_PREFIX":    &cfg.Store.Redis.Prefix,
		"HTTP_ADDR":       &cfg.HTTP.Addr,
		"POSTGRES_DSN":    &cfg.Store.Postgres.DSN,
		"MONGO_URI":       &cfg.Store.Mongo.URI,
		"BACKUP_SCHEDULE": &cfg.Backup.Schedule,
		"BACKUP_PATH":     &cfg.Backup.Path,
	}
	for key, dst := range str {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", EnvPrefix, err)
		}
		cfg.Store.Redis.DB = db
	}
	if v, ok := lookup(EnvPrefix + "LOCK_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sLOCK_TTL: %w", EnvPrefix, err)
		}
		cfg.LockTTL = Duration(ttl)
	}
	return nil
}

// Validate checks backend names and the encryption key.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	case BackendPostgres:
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required for the postgres backend")
		}
	case BackendMongo:
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("store.mongo.uri is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Backup.Schedule != "" && c.Backup.Path == "" {
		return fmt.Errorf("backup.path is required when backup.schedule is set")
	}
	if _, err := c.Store.Key(); err != nil {
		return err
	}
	return nil
}

// Key decodes EncryptionKey. It returns nil when encryption is disabled.
func (s StoreConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
