package bodies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    name       TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id           TEXT PRIMARY KEY,
    category     TEXT NOT NULL,
    title        TEXT NOT NULL,
    done         INTEGER NOT NULL DEFAULT 0,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS tasks_category ON tasks(category);
`

// Task is a single to-do item filed under a category.
type Task struct {
	ID          string     `json:"id"`
	Category    string     `json:"category"`
	Title       string     `json:"title"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskFilter narrows ListTasks. The zero value lists open tasks of every
// category.
type TaskFilter struct {
	Category    string
	IncludeDone bool
}

// Store keeps categories and tasks in a local SQLite database in WAL mode.
// A category is a body when it is declared or when any task refers to it.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at dbPath.
func OpenStore(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("bodies: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("bodies: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("bodies: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bodies: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddCategory declares a category. It reports false when the trimmed name
// already exists.
func (s *Store) AddCategory(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("bodies: add category: %w", ErrEmptyName)
	}
	res, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO categories (name) VALUES (?)", name)
	if err != nil {
		return false, fmt.Errorf("bodies: add category %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bodies: add category %q: %w", name, err)
	}
	return n > 0, nil
}

// RemoveCategory deletes a category together with every task filed under
// it, so its body disappears from Entries.
func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bodies: begin tx for remove category: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var removed int64
	for _, q := range []string{
		"DELETE FROM categories WHERE name = ?",
		"DELETE FROM tasks WHERE category = ?",
	} {
		res, err := tx.ExecContext(ctx, q, name)
		if err != nil {
			return fmt.Errorf("bodies: remove category %q: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("bodies: remove category %q: %w", name, err)
		}
		removed += n
	}
	if removed == 0 {
		return fmt.Errorf("bodies: remove category %q: %w", name, ErrUnknownCategory)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("bodies: commit remove category: %w", err)
	}
	return nil
}

// Categories lists declared categories by name.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("bodies: list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("bodies: scan category: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bodies: iterate categories: %w", err)
	}
	return out, nil
}

// AddTask files a new open task, declaring its category if needed.
func (s *Store) AddTask(ctx context.Context, category, title string) (Task, error) {
	category = strings.TrimSpace(category)
	title = strings.TrimSpace(title)
	if category == "" || title == "" {
		return Task{}, fmt.Errorf("bodies: add task: %w", ErrEmptyName)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Task{}, fmt.Errorf("bodies: begin tx for add task: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO categories (name) VALUES (?)", category); err != nil {
		return Task{}, fmt.Errorf("bodies: add task category %q: %w", category, err)
	}
	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO tasks (id, category, title) VALUES (?, ?, ?)", id, category, title); err != nil {
		return Task{}, fmt.Errorf("bodies: add task %q: %w", title, err)
	}
	if err := tx.Commit(); err != nil {
		return Task{}, fmt.Errorf("bodies: commit add task: %w", err)
	}
	return s.task(ctx, id)
}

// CompleteTasks marks every listed task done in one transaction. Unknown ids
// abort the whole batch with ErrTaskNotFound. Completing an already-done
// task is a no-op.
func (s *Store) CompleteTasks(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("bodies: begin tx for complete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var completed int
	for _, id := range ids {
		var done bool
		err := tx.QueryRowContext(ctx, "SELECT done FROM tasks WHERE id = ?", id).Scan(&done)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("bodies: complete %q: %w", id, ErrTaskNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("bodies: complete %q: %w", id, err)
		}
		if done {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE tasks SET done = 1, completed_at = CURRENT_TIMESTAMP WHERE id = ?", id); err != nil {
			return 0, fmt.Errorf("bodies: complete %q: %w", id, err)
		}
		completed++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("bodies: commit complete: %w", err)
	}
	return completed, nil
}

// ListTasks returns tasks oldest first.
func (s *Store) ListTasks(ctx context.Context, f TaskFilter) ([]Task, error) {
	q := "SELECT id, category, title, done, created_at, completed_at FROM tasks WHERE 1=1"
	var args []any
	if f.Category != "" {
		q += " AND category = ?"
		args = append(args, strings.TrimSpace(f.Category))
	}
	if !f.IncludeDone {
		q += " AND done = 0"
	}
	q += " ORDER BY created_at, rowid"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("bodies: list tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bodies: iterate tasks: %w", err)
	}
	return out, nil
}

// Entries returns the union of declared categories and categories of open
// or completed tasks, with completed counts, ordered by name.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	const q = `
		WITH names AS (
			SELECT name FROM categories
			UNION
			SELECT category FROM tasks
		)
		SELECT n.name, COALESCE(SUM(t.done), 0)
		FROM names n LEFT JOIN tasks t ON t.category = n.name
		GROUP BY n.name
		ORDER BY n.name`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("bodies: query entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Completed); err != nil {
			return nil, fmt.Errorf("bodies: scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bodies: iterate entries: %w", err)
	}
	return Normalize(out), nil
}

func (s *Store) task(ctx context.Context, id string) (Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, category, title, done, created_at, completed_at FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, fmt.Errorf("bodies: task %q: %w", id, ErrTaskNotFound)
	}
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (Task, error) {
	var (
		t         Task
		created   string
		completed sql.NullString
	)
	if err := sc.Scan(&t.ID, &t.Category, &t.Title, &t.Done, &created, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, err
		}
		return Task{}, fmt.Errorf("bodies: scan task: %w", err)
	}
	ts, err := parseTimestamp(created)
	if err != nil {
		return Task{}, fmt.Errorf("bodies: parse task timestamp: %w", err)
	}
	t.CreatedAt = ts
	if completed.Valid {
		ts, err := parseTimestamp(completed.String)
		if err != nil {
			return Task{}, fmt.Errorf("bodies: parse completion timestamp: %w", err)
		}
		t.CompletedAt = &ts
	}
	return t, nil
}

// timestampFormats lists what CURRENT_TIMESTAMP may come back as, depending
// on whether the driver converts TIMESTAMP columns to time.Time first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.DateTime,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
