package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"subforge/internal/config"
)

// timeLayout keeps a fixed-width fraction so lexicographic ordering of the
// stored strings matches chronological ordering. RFC3339Nano trims trailing
// zeros and breaks that property.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrTaskExists is returned when creating a task whose id is already taken.
var ErrTaskExists = errors.New("task already exists")

// ErrTaskNotFound is returned when a task id has no row.
var ErrTaskNotFound = errors.New("task not found")

// Store manages task persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the task database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "tasks.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// CreateTask inserts a new task at status queued. It fails with
// ErrTaskExists when the task id is already present.
func (s *Store) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task is nil")
	}
	if task.TaskID == "" {
		return errors.New("task id is required")
	}

	now := time.Now().UTC()
	timestamp := now.Format(timeLayout)
	status := task.Status
	if status == "" {
		status = StatusQueued
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tasks (
            task_id, original_filename, stored_filename, file_type, status,
            progress, message, target_lang, keep_original, model_name,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.TaskID,
		task.OriginalFilename,
		task.StoredFilename,
		string(task.FileType),
		string(status),
		task.Progress,
		nullableString(task.Message),
		nullableString(task.TargetLang),
		boolToInt(task.KeepOriginal),
		nullableString(task.ModelName),
		timestamp,
		timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create task %s: %w", task.TaskID, ErrTaskExists)
		}
		return fmt.Errorf("insert task: %w", err)
	}

	task.Status = status
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// UpdateStatus overwrites a task's lifecycle fields. Last write wins; the
// single worker that owns the task is the only writer.
func (s *Store) UpdateStatus(ctx context.Context, taskID string, upd StatusUpdate) error {
	now := time.Now().UTC().Format(timeLayout)

	var completedAt any
	var processTime any
	if upd.Status.IsTerminal() {
		completedAt = now
		processTime = upd.ProcessTime
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks
         SET status = ?, progress = ?, message = ?, error_message = ?,
             updated_at = ?, completed_at = COALESCE(?, completed_at),
             process_time = COALESCE(?, process_time)
         WHERE task_id = ?`,
		string(upd.Status),
		upd.Progress,
		nullableString(upd.Message),
		nullableString(upd.ErrorMessage),
		now,
		completedAt,
		processTime,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update task %s: %w", taskID, ErrTaskNotFound)
	}
	return nil
}

// GetTask fetches a task by id. Returns nil when the id has no row.
func (s *Store) GetTask(ctx context.Context, taskID string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListTasks returns tasks ordered newest first. A non-positive limit
// returns every task.
func (s *Store) ListTasks(ctx context.Context, limit int) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// IncompleteTasks returns every task whose status is non-terminal, oldest
// first, for the startup recovery pass.
func (s *Store) IncompleteTasks(ctx context.Context) ([]*Task, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE status NOT IN (?, ?) ORDER BY created_at ASC`,
		string(StatusCompleted),
		string(StatusError),
	)
	if err != nil {
		return nil, fmt.Errorf("list incomplete tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

const taskColumns = "task_id, original_filename, stored_filename, file_type, status, progress, message, target_lang, keep_original, model_name, created_at, updated_at, completed_at, error_message, process_time"

func scanTask(scanner interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		taskID       string
		originalName string
		storedName   string
		fileType     string
		statusStr    string
		progress     sql.NullInt64
		message      sql.NullString
		targetLang   sql.NullString
		keepOriginal sql.NullInt64
		modelName    sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		completedRaw sql.NullString
		errorMessage sql.NullString
		processTime  sql.NullFloat64
	)

	if err := scanner.Scan(
		&taskID,
		&originalName,
		&storedName,
		&fileType,
		&statusStr,
		&progress,
		&message,
		&targetLang,
		&keepOriginal,
		&modelName,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
		&errorMessage,
		&processTime,
	); err != nil {
		return nil, err
	}

	task := &Task{
		TaskID:           taskID,
		OriginalFilename: originalName,
		StoredFilename:   storedName,
		FileType:         MediaType(fileType),
		Status:           Status(statusStr),
		Progress:         int(progress.Int64),
		Message:          message.String,
		TargetLang:       targetLang.String,
		KeepOriginal:     keepOriginal.Int64 != 0,
		ModelName:        modelName.String,
		ErrorMessage:     errorMessage.String,
		ProcessTime:      processTime.Float64,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		task.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		task.UpdatedAt = updated
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			task.CompletedAt = &completed
		}
	}
	return task, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
