package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cbodonnell/landmark/migrations"
	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Repository = &PostgresRepository{}

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to the database at connStr and applies the schema.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %v", err)
	}

	var username string
	var database string
	if err := pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}
	log.Info("Connected to %s as %s", database, username)

	err = runMigrations(ctx, migrations.Postgres, func(ctx context.Context, q string) error {
		_, err := pool.Exec(ctx, q)
		return err
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) EnsureUser(ctx context.Context, userID string) error {
	q := `
	INSERT INTO users (user_id, created_at) VALUES ($1, $2)
	ON CONFLICT (user_id) DO NOTHING;
	`
	if _, err := r.pool.Exec(ctx, q, userID, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert user: %v", err)
	}
	return nil
}

func (r *PostgresRepository) Add(ctx context.Context, userID string, name string, pos kinematic.Vector) (bool, error) {
	if err := store.ValidateName(name); err != nil {
		return false, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UnixMilli()
	q := `
	INSERT INTO users (user_id, created_at) VALUES ($1, $2)
	ON CONFLICT (user_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, q, userID, now); err != nil {
		return false, fmt.Errorf("failed to insert user: %v", err)
	}

	// xmax is only set on the row version written by the conflict update
	q = `
	INSERT INTO landmarks (user_id, name, x, y, updated_at) VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, name) DO UPDATE SET x = $3, y = $4, updated_at = $5
	RETURNING (xmax <> 0);
	`
	var overwritten bool
	if err := tx.QueryRow(ctx, q, userID, name, pos.X, pos.Y, now).Scan(&overwritten); err != nil {
		return false, fmt.Errorf("failed to upsert landmark: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return overwritten, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, name string) error {
	q := `DELETE FROM landmarks WHERE user_id = $1 AND name = $2;`
	tag, err := r.pool.Exec(ctx, q, userID, name)
	if err != nil {
		return fmt.Errorf("failed to delete landmark: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return landmarkNotFound(name)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, name string) (kinematic.Vector, error) {
	q := `SELECT x, y FROM landmarks WHERE user_id = $1 AND name = $2;`
	var pos kinematic.Vector
	if err := r.pool.QueryRow(ctx, q, userID, name).Scan(&pos.X, &pos.Y); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kinematic.Vector{}, landmarkNotFound(name)
		}
		return kinematic.Vector{}, fmt.Errorf("failed to scan landmark: %v", err)
	}
	return pos, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT name FROM landmarks WHERE user_id = $1", userID)
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

	// byte order, independent of the database collation
	sort.Strings(names)
	return names, nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM landmarks WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear landmarks: %v", err)
	}
	return nil
}

func (r *PostgresRepository) RecordDeath(ctx context.Context, userID string, pos kinematic.Vector) error {
	q := `
	INSERT INTO deaths (user_id, x, y, died_at) VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id) DO UPDATE SET x = $2, y = $3, died_at = $4;
	`
	if _, err := r.pool.Exec(ctx, q, userID, pos.X, pos.Y, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to record death: %v", err)
	}
	return nil
}

func (r *PostgresRepository) GetLastDeath(ctx context.Context, userID string) (kinematic.Vector, error) {
	var pos kinematic.Vector
	if err := r.pool.QueryRow(ctx, "SELECT x, y FROM deaths WHERE user_id = $1", userID).Scan(&pos.X, &pos.Y); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kinematic.Vector{}, deathNotFound(userID)
		}
		return kinematic.Vector{}, fmt.Errorf("failed to scan death: %v", err)
	}
	return pos, nil
}
