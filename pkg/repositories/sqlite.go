package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cbodonnell/landmark/migrations"
	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/store"
	_ "github.com/mattn/go-sqlite3"
)

var _ Repository = &SQLiteRepository{}

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at path and applies the schema.
// The path ":memory:" gives a private database that lives as long as the repository.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// sqlite allows a single writer; a shared connection also keeps :memory: alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	err = runMigrations(ctx, migrations.SQLite, func(ctx context.Context, q string) error {
		_, err := db.ExecContext(ctx, q)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) EnsureUser(ctx context.Context, userID string) error {
	q := `
	INSERT INTO users (user_id, created_at) VALUES (?, ?)
	ON CONFLICT (user_id) DO NOTHING;
	`
	if _, err := r.db.ExecContext(ctx, q, userID, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert user: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) Add(ctx context.Context, userID string, name string, pos kinematic.Vector) (bool, error) {
	if err := store.ValidateName(name); err != nil {
		return false, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	q := `
	INSERT INTO users (user_id, created_at) VALUES (?, ?)
	ON CONFLICT (user_id) DO NOTHING;
	`
	if _, err := tx.ExecContext(ctx, q, userID, now); err != nil {
		return false, fmt.Errorf("failed to insert user: %v", err)
	}

	var exists bool
	q = `SELECT EXISTS (SELECT 1 FROM landmarks WHERE user_id = ? AND name = ?);`
	if err := tx.QueryRowContext(ctx, q, userID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check landmark: %v", err)
	}

	q = `
	INSERT INTO landmarks (user_id, name, x, y, updated_at) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (user_id, name) DO UPDATE SET x = excluded.x, y = excluded.y, updated_at = excluded.updated_at;
	`
	if _, err := tx.ExecContext(ctx, q, userID, name, pos.X, pos.Y, now); err != nil {
		return false, fmt.Errorf("failed to upsert landmark: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return exists, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID string, name string) error {
	q := `DELETE FROM landmarks WHERE user_id = ? AND name = ?;`
	res, err := r.db.ExecContext(ctx, q, userID, name)
	if err != nil {
		return fmt.Errorf("failed to delete landmark: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %v", err)
	}
	if n == 0 {
		return landmarkNotFound(name)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string, name string) (kinematic.Vector, error) {
	q := `SELECT x, y FROM landmarks WHERE user_id = ? AND name = ?;`
	var pos kinematic.Vector
	if err := r.db.QueryRowContext(ctx, q, userID, name).Scan(&pos.X, &pos.Y); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kinematic.Vector{}, landmarkNotFound(name)
		}
		return kinematic.Vector{}, fmt.Errorf("failed to scan landmark: %v", err)
	}
	return pos, nil
}

func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]string, error) {
	q := `SELECT name FROM landmarks WHERE user_id = ?;`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query landmarks: %v", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan landmark: %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate landmarks: %v", err)
	}

	sort.Strings(names)
	return names, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, userID string) error {
	q := `DELETE FROM landmarks WHERE user_id = ?;`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("failed to clear landmarks: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) RecordDeath(ctx context.Context, userID string, pos kinematic.Vector) error {
	q := `
	INSERT OR REPLACE INTO deaths (user_id, x, y, died_at)
	VALUES (?, ?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, userID, pos.X, pos.Y, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to record death: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) GetLastDeath(ctx context.Context, userID string) (kinematic.Vector, error) {
	q := `SELECT x, y FROM deaths WHERE user_id = ?;`
	var pos kinematic.Vector
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&pos.X, &pos.Y); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kinematic.Vector{}, deathNotFound(userID)
		}
		return kinematic.Vector{}, fmt.Errorf("failed to scan death: %v", err)
	}
	return pos, nil
}
