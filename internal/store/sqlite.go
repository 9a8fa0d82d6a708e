package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"todo/internal/task"
)

// SQLiteStore is a Store and Settings backed by a local SQLite database.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	opts options
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
// A leading ~ is expanded to the user's home directory.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[1:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Immediate transactions take the write lock before the title check, so
	// another process on the same file cannot slip a duplicate in between.
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	// One connection keeps writes strictly ordered at the driver level too.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	s := &SQLiteStore{db: db, opts: applyOptions(opts)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database %s: %w", path, err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			start_time DATETIME,
			end_time DATETIME,
			is_completed INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_title ON tasks(title);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListAll(ctx context.Context) []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, details, created_at, start_time, end_time, is_completed
		FROM tasks ORDER BY rowid
	`)
	if err != nil {
		s.opts.logger.Printf("warning: failed to list tasks: %v", err)
		return []task.Task{}
	}
	defer rows.Close()

	out := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			s.opts.logger.Printf("warning: failed to read task row: %v", err)
			return []task.Task{}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		s.opts.logger.Printf("warning: failed to list tasks: %v", err)
		return []task.Task{}
	}
	return out
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, details, created_at, start_time, end_time, is_completed
		FROM tasks WHERE id = ?
	`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("%w: %v", task.ErrStorage, err)
	}
	return t, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, title, details string, start, end *time.Time) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := task.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Details:   details,
		CreatedAt: s.opts.now().UTC(),
		StartTime: start,
		EndTime:   end,
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := titleTaken(ctx, tx, title, "")
		if err != nil {
			return err
		}
		if taken {
			return task.ErrDuplicateTitle
		}
		return insertTask(ctx, tx, t)
	})
	if err != nil {
		return task.Task{}, err
	}
	return t.Clone(), nil
}

func (s *SQLiteStore) Update(ctx context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE id = ?`, t.ID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return task.ErrNotFound
		}

		taken, err := titleTaken(ctx, tx, t.Title, t.ID)
		if err != nil {
			return err
		}
		if taken {
			return task.ErrDuplicateTitle
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE tasks
			SET title = ?, details = ?, start_time = ?, end_time = ?, is_completed = ?
			WHERE id = ?
		`, t.Title, t.Details, nullableTime(t.StartTime), nullableTime(t.EndTime), t.IsCompleted, t.ID)
		return err
	})
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		s.opts.logger.Printf("warning: failed to delete task %s: %v", id, err)
		return fmt.Errorf("%w: %v", task.ErrStorage, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.opts.logger.Printf("warning: delete of unknown task %s ignored", id)
	}
	return nil
}

func (s *SQLiteStore) BulkInsertIfAbsent(ctx context.Context, tasks []task.Task) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tasks {
			taken, err := titleTaken(ctx, tx, t.Title, "")
			if err != nil {
				return err
			}
			if taken {
				continue
			}
			if t.ID == "" {
				t.ID = uuid.NewString()
			} else {
				exists, err := idTaken(ctx, tx, t.ID)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
			}
			if t.CreatedAt.IsZero() {
				t.CreatedAt = s.opts.now().UTC()
			}
			if err := insertTask(ctx, tx, t); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *SQLiteStore) Bool(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", task.ErrStorage, err)
	}
	return value == "true", nil
}

func (s *SQLiteStore) SetBool(ctx context.Context, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, fmt.Sprintf("%t", value))
	if err != nil {
		return fmt.Errorf("%w: %v", task.ErrStorage, err)
	}
	return nil
}

// withTx runs fn in a transaction. Domain errors pass through unchanged;
// driver errors are wrapped with task.ErrStorage and logged.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.opts.logger.Printf("warning: failed to begin transaction: %v", err)
		return fmt.Errorf("%w: %v", task.ErrStorage, err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		if errors.Is(err, task.ErrDuplicateTitle) || errors.Is(err, task.ErrNotFound) {
			return err
		}
		s.opts.logger.Printf("warning: write abandoned: %v", err)
		return fmt.Errorf("%w: %v", task.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		s.opts.logger.Printf("warning: failed to commit: %v", err)
		return fmt.Errorf("%w: %v", task.ErrStorage, err)
	}
	return nil
}

func titleTaken(ctx context.Context, tx *sql.Tx, title, exceptID string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE title = ? AND id <> ?`, title, exceptID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func idTaken(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func insertTask(ctx context.Context, tx *sql.Tx, t task.Task) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, title, details, created_at, start_time, end_time, is_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Details, t.CreatedAt.UTC(), nullableTime(t.StartTime), nullableTime(t.EndTime), t.IsCompleted)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (task.Task, error) {
	var t task.Task
	var start, end sql.NullTime
	if err := r.Scan(&t.ID, &t.Title, &t.Details, &t.CreatedAt, &start, &end, &t.IsCompleted); err != nil {
		return task.Task{}, err
	}
	if start.Valid {
		v := start.Time
		t.StartTime = &v
	}
	if end.Valid {
		v := end.Time
		t.EndTime = &v
	}
	return t, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
