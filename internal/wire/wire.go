// Package wire provides dependency injection for the todo application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/todoledger/internal/adapters/cli"
	"github.com/example/todoledger/internal/adapters/leveldb"
	"github.com/example/todoledger/internal/adapters/logging"
	"github.com/example/todoledger/internal/adapters/memory"
	"github.com/example/todoledger/internal/adapters/sqlite"
	"github.com/example/todoledger/internal/app"
	"github.com/example/todoledger/internal/config"
	"github.com/example/todoledger/internal/db"
	"github.com/example/todoledger/internal/ports/primary"
	"github.com/example/todoledger/internal/ports/secondary"
	"github.com/example/todoledger/internal/version"
)

var (
	configPath   string
	cfg          *config.Config
	cfgSource    string
	store        secondary.Store
	sqlDB        *sql.DB
	entryService primary.EntryService
	logService   primary.LogService
	once         sync.Once
)

// SetConfigPath sets an explicit config file. Must be called before any accessor.
func SetConfigPath(path string) {
	configPath = path
}

// Config returns the resolved configuration and the file it came from ("" for defaults).
func Config() (*config.Config, string) {
	once.Do(initServices)
	return cfg, cfgSource
}

// Store returns the singleton entry store.
func Store() secondary.Store {
	once.Do(initServices)
	return store
}

// SQLDB returns the SQLite handle, or nil when another backend is configured.
func SQLDB() *sql.DB {
	once.Do(initServices)
	return sqlDB
}

// EntryService returns the singleton EntryService instance.
func EntryService() primary.EntryService {
	once.Do(initServices)
	return entryService
}

// LogService returns the singleton LogService instance.
// Only the sqlite backend keeps a queryable audit trail.
func LogService() (primary.LogService, error) {
	once.Do(initServices)
	if logService == nil {
		return nil, fmt.Errorf("audit history needs the sqlite backend (configured: %s)", cfg.Storage.Backend)
	}
	return logService, nil
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cwd, err := os.Getwd()
	if err != nil {
		fatal("failed to get working directory", err)
	}

	cfg, cfgSource, err = config.Resolve(configPath, cwd)
	if err != nil {
		fatal("failed to load config", err)
	}

	opened, err := OpenStore(context.Background(), cfg)
	if err != nil {
		fatal("failed to initialize store", err)
	}
	store = opened.Store
	sqlDB = opened.DB

	entryService = app.NewEntryService(opened.Store, opened.LogWriter)
	if reader, ok := opened.LogWriter.(secondary.AuditLogReader); ok {
		logService = app.NewLogService(reader)
	}
}

// OpenedStore bundles a store with its audit writer.
type OpenedStore struct {
	Store     secondary.Store
	LogWriter secondary.LogWriter
	DB        *sql.DB // Set for the sqlite backend only
}

// OpenStore opens the configured backend and runs setup.
func OpenStore(ctx context.Context, cfg *config.Config) (*OpenedStore, error) {
	info := secondary.ContractInfo{Name: version.Name, Version: version.Version}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return &OpenedStore{
			Store:     memory.NewStore(info),
			LogWriter: logging.NewLogWriter(slog.Default()),
		}, nil

	case config.BackendLevelDB:
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		s, err := leveldb.Open(path, info)
		if err != nil {
			return nil, err
		}
		return &OpenedStore{
			Store:     s,
			LogWriter: logging.NewLogWriter(slog.Default()),
		}, nil

	case config.BackendSQLite:
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		database, err := db.Open(path)
		if err != nil {
			return nil, err
		}
		s, err := sqlite.NewStore(ctx, database, info)
		if err != nil {
			database.Close()
			return nil, err
		}
		return &OpenedStore{
			Store:     s,
			LogWriter: sqlite.NewLogWriterAdapter(database),
			DB:        database,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

// EntryAdapter returns a new EntryAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func EntryAdapter() *cliadapter.EntryAdapter {
	return EntryAdapterWithOutput(os.Stdout)
}

// EntryAdapterWithOutput returns a new EntryAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func EntryAdapterWithOutput(out io.Writer) *cliadapter.EntryAdapter {
	once.Do(initServices)
	return cliadapter.NewEntryAdapter(entryService, out)
}
