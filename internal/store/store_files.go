package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddFile records a physical file produced for or registered with a task.
// A generated id is assigned when the record carries none.
func (s *Store) AddFile(ctx context.Context, record *FileRecord) error {
	if record == nil {
		return errors.New("file record is nil")
	}
	if record.TaskID == "" {
		return errors.New("file record requires a task id")
	}
	if record.FileID == "" {
		record.FileID = uuid.NewString()
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO files (
            file_id, task_id, file_type, original_filename,
            stored_filename, file_path, is_temporary, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.FileID,
		record.TaskID,
		string(record.FileType),
		record.OriginalFilename,
		record.StoredFilename,
		record.FilePath,
		boolToInt(record.IsTemporary),
		now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}
	record.CreatedAt = now
	return nil
}

// TaskFiles returns every file record tied to a task, oldest first.
func (s *Store) TaskFiles(ctx context.Context, taskID string) ([]*FileRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+fileColumns+` FROM files WHERE task_id = ? ORDER BY created_at ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task files: %w", err)
	}
	defer rows.Close()

	var records []*FileRecord
	for rows.Next() {
		record, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CleanupTemporaryFiles atomically removes a task's temporary file records
// and returns the paths the caller must unlink.
func (s *Store) CleanupTemporaryFiles(ctx context.Context, taskID string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cleanup: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(
		ctx,
		`SELECT file_path FROM files WHERE task_id = ? AND is_temporary = 1`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query temporary files: %w", err)
	}
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return nil, err
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM files WHERE task_id = ? AND is_temporary = 1`,
		taskID,
	); err != nil {
		return nil, fmt.Errorf("delete temporary file records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cleanup: %w", err)
	}
	return paths, nil
}

// GenerateStoredFilename derives a collision-free stored name for an
// uploaded file by embedding a timestamp before the extension.
func GenerateStoredFilename(originalFilename string) string {
	base := filepath.Base(strings.TrimSpace(originalFilename))
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s_%s%s", name, time.Now().Format("20060102_150405"), ext)
}

const fileColumns = "file_id, task_id, file_type, original_filename, stored_filename, file_path, is_temporary, created_at"

func scanFile(scanner interface{ Scan(dest ...any) error }) (*FileRecord, error) {
	var (
		fileID       string
		taskID       string
		fileType     string
		originalName string
		storedName   string
		filePath     string
		isTemporary  sql.NullInt64
		createdRaw   sql.NullString
	)

	if err := scanner.Scan(
		&fileID,
		&taskID,
		&fileType,
		&originalName,
		&storedName,
		&filePath,
		&isTemporary,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	record := &FileRecord{
		FileID:           fileID,
		TaskID:           taskID,
		FileType:         FileKind(fileType),
		OriginalFilename: originalName,
		StoredFilename:   storedName,
		FilePath:         filePath,
		IsTemporary:      isTemporary.Int64 != 0,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	return record, nil
}
