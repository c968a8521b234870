package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/workpad/internal/config"
	"github.com/aretw0/workpad/internal/logging"
	"github.com/aretw0/workpad/pkg/adapters/file"
	"github.com/aretw0/workpad/pkg/adapters/memory"
	"github.com/aretw0/workpad/pkg/adapters/mongo"
	"github.com/aretw0/workpad/pkg/adapters/postgres"
	"github.com/aretw0/workpad/pkg/adapters/redis"
	"github.com/aretw0/workpad/pkg/adapters/sqlite"
	"github.com/aretw0/workpad/pkg/backup"
	"github.com/aretw0/workpad/pkg/persistence/middleware"
	"github.com/aretw0/workpad/pkg/ports"
	"github.com/aretw0/workpad/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Watcher streams the IDs of workpads changed outside the process.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Backend is the persistence stack selected by the configuration.
type Backend struct {
	Name  string
	Store ports.WorkpadStore

	// Locker is set for backends shared between processes (redis).
	Locker ports.DistributedLocker

	// Watcher is set for backends that can report external edits (file).
	Watcher Watcher

	summaries func(ctx context.Context) ([]sqlite.Summary, error)
	closers   []func() error
}

// OpenBackend builds the configured store and wraps it with the encryption
// and metrics middlewares. reg may be nil to skip store metrics.
func OpenBackend(ctx context.Context, cfg config.StoreConfig, reg prometheus.Registerer) (*Backend, error) {
	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}

	b := &Backend{Name: cfg.Backend}
	var store ports.WorkpadStore

	switch cfg.Backend {
	case config.BackendMemory:
		store = memory.NewStore()

	case config.BackendFile:
		fs := file.New(cfg.Path)
		store = fs
		b.Watcher = fs

	case config.BackendRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix)}
		if ttl := time.Duration(cfg.Redis.TTL); ttl > 0 {
			opts = append(opts, redis.WithTTL(ttl))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		store = rs
		b.Locker = redis.NewLocker(rs.Client(), cfg.Redis.Prefix)
		b.closers = append(b.closers, rs.Close)

	case config.BackendSQLite:
		path := cfg.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "workpads.db")
		}
		ss, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		store = ss
		b.summaries = ss.Summaries
		b.closers = append(b.closers, ss.Close)

	case config.BackendPostgres:
		ps, err := postgres.Open(ctx, cfg.Postgres.DSN, postgres.WithTable(cfg.Postgres.Table))
		if err != nil {
			return nil, err
		}
		store = ps
		b.closers = append(b.closers, ps.Close)

	case config.BackendMongo:
		ms, err := mongo.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, err
		}
		store = ms
		b.closers = append(b.closers, ms.Close)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	var mws []middleware.Middleware
	if reg != nil {
		mws = append(mws, middleware.NewMetricsMiddleware(reg, cfg.Backend))
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	b.Store = middleware.Chain(store, mws...)
	return b, nil
}

// UpdatedAt reports when the workpad was last saved, or the zero time when
// the backend does not track it.
func (b *Backend) UpdatedAt(ctx context.Context, id string) time.Time {
	if b.summaries == nil {
		return time.Time{}
	}
	list, err := b.summaries(ctx)
	if err != nil {
		return time.Time{}
	}
	for _, s := range list {
		if s.ID == id {
			return s.UpdatedAt
		}
	}
	return time.Time{}
}

// Close releases backend connections.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewManager wires a session manager over the backend.
func NewManager(cfg config.Config, b *Backend, applier ports.Applier, logger *slog.Logger) *session.Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(time.Duration(cfg.LockTTL)),
	}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	return session.NewManager(b.Store, applier, opts...)
}

// StartBackup schedules snapshots of the backend into cfg.Path. It returns
// nil when no schedule is configured.
func StartBackup(cfg config.Backup, b *Backend, logger *slog.Logger) (*backup.Scheduler, error) {
	if cfg.Schedule == "" {
		return nil, nil
	}
	s, err := backup.NewScheduler(cfg.Schedule, b.Store, file.New(cfg.Path), logger)
	if err != nil {
		return nil, err
	}
	s.Start()
	logger.Info("Backups scheduled", "schedule", cfg.Schedule, "path", cfg.Path)
	return s, nil
}
