package testsupport

import (
	"context"
	"testing"

	"subforge/internal/config"
	"subforge/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewTask creates a queued task row for tests.
func NewTask(t testing.TB, st *store.Store, taskID, storedFilename string, fileType store.MediaType) *store.Task {
	t.Helper()

	task := &store.Task{
		TaskID:           taskID,
		OriginalFilename: storedFilename,
		StoredFilename:   storedFilename,
		FileType:         fileType,
		Status:           store.StatusQueued,
		Message:          "Task queued",
		ModelName:        "large-v3-turbo",
	}
	if err := st.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("store.CreateTask: %v", err)
	}
	return task
}
