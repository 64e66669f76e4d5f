package repositories

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/cbodonnell/landmark/migrations"
	"github.com/cbodonnell/landmark/pkg/store"
)

// Repository is a landmark and death store backed by a single database.
type Repository interface {
	store.LandmarkStore
	store.DeathStore
	Close(ctx context.Context) error
}

// New opens the repository named by connStr.
// An empty string or memory:// selects the volatile in-memory stores.
func New(ctx context.Context, connStr string) (Repository, error) {
	if connStr == "" {
		return NewMemoryRepository(), nil
	}

	scheme, rest, ok := strings.Cut(connStr, "://")
	if !ok {
		return nil, fmt.Errorf("database url %q has no scheme", connStr)
	}

	var repository Repository
	var err error
	switch scheme {
	case "memory":
		repository = NewMemoryRepository()
	case "sqlite", "sqlite3":
		repository, err = NewSQLiteRepository(ctx, rest)
	case "postgres", "postgresql":
		repository, err = NewPostgresRepository(ctx, connStr)
	case "redis", "rediss":
		repository, err = NewRedisRepository(ctx, connStr)
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
	if err != nil {
		return nil, err
	}
	return repository, nil
}

// migrationFiles returns the embedded migrations of a dialect in apply order.
func migrationFiles(dialect string) ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, path.Join(dialect, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// runMigrations executes every migration of a dialect with exec.
func runMigrations(ctx context.Context, dialect string, exec func(ctx context.Context, sql string) error) error {
	files, err := migrationFiles(dialect)
	if err != nil {
		return err
	}
	for _, file := range files {
		migration, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %v", file, err)
		}
		if err := exec(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", file, err)
		}
	}
	return nil
}

func landmarkNotFound(name string) error {
	return &store.ErrNotFound{Kind: store.KindLandmark, Key: name}
}

func deathNotFound(userID string) error {
	return &store.ErrNotFound{Kind: store.KindDeath, Key: userID}
}
