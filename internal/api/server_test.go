package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subforge/internal/api"
	"subforge/internal/config"
	"subforge/internal/orchestrator"
	"subforge/internal/store"
	"subforge/internal/testsupport"
)

type fakeSubmitter struct {
	last *orchestrator.Submission
	err  error
}

func (f *fakeSubmitter) Submit(_ context.Context, sub orchestrator.Submission) error {
	if f.err != nil {
		return f.err
	}
	f.last = &sub
	return nil
}

func newTestServer(t *testing.T, cfg *config.Config, st *store.Store, submitter api.Submitter) http.Handler {
	t.Helper()
	server, err := api.NewServer(cfg, st, submitter, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return server.Handler()
}

func multipartUpload(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("media bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestUploadVideoAccepted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	submitter := &fakeSubmitter{}
	handler := newTestServer(t, cfg, st, submitter)

	body, contentType := multipartUpload(t, "My Movie.mkv", map[string]string{
		"target_lang":   "en",
		"keep_original": "true",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TaskID   string `json:"task_id"`
		FileType string `json:"file_type"`
	}
	decodeJSON(t, rec, &resp)
	if resp.TaskID == "" {
		t.Error("expected a task id")
	}
	if resp.FileType != "video" {
		t.Errorf("expected video file type, got %q", resp.FileType)
	}

	if submitter.last == nil {
		t.Fatal("submitter was not invoked")
	}
	if submitter.last.FileType != store.MediaVideo {
		t.Errorf("unexpected media type %s", submitter.last.FileType)
	}
	if submitter.last.TargetLang != "en" || !submitter.last.KeepOriginal {
		t.Errorf("form fields not passed through: %+v", submitter.last)
	}
	if submitter.last.OriginalFilename != "My Movie.mkv" {
		t.Errorf("unexpected original filename %q", submitter.last.OriginalFilename)
	}

	// The upload must land in the configured upload directory under its
	// stored name.
	if _, err := os.Stat(submitter.last.FilePath); err != nil {
		t.Errorf("stored upload missing: %v", err)
	}
	if filepath.Dir(submitter.last.FilePath) != cfg.Paths.UploadDir {
		t.Errorf("upload stored outside upload dir: %s", submitter.last.FilePath)
	}
}

func TestUploadAudioDetected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	submitter := &fakeSubmitter{}
	handler := newTestServer(t, cfg, st, submitter)

	body, contentType := multipartUpload(t, "podcast.flac", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if submitter.last.FileType != store.MediaAudio {
		t.Errorf("expected audio detection, got %s", submitter.last.FileType)
	}
}

func TestUploadUnsupportedExtension(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	handler := newTestServer(t, cfg, st, &fakeSubmitter{})

	body, contentType := multipartUpload(t, "document.pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadMissingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	handler := newTestServer(t, cfg, st, &fakeSubmitter{})

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadAtCapacityReturns503AndRemovesFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	submitter := &fakeSubmitter{err: &orchestrator.CapacityError{Limit: 6}}
	handler := newTestServer(t, cfg, st, submitter)

	body, contentType := multipartUpload(t, "movie.mp4", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	entries, err := os.ReadDir(cfg.Paths.UploadDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected upload should be removed, found %d entries", len(entries))
	}
}

func TestStatusUnknownTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	handler := newTestServer(t, cfg, st, &fakeSubmitter{})

	req := httptest.NewRequest(http.MethodGet, "/status/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStatusReturnsTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	handler := newTestServer(t, cfg, st, &fakeSubmitter{})

	testsupport.NewTask(t, st, "st-1", "movie.mp4", store.MediaVideo)

	req := httptest.NewRequest(http.MethodGet, "/status/st-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp api.TaskStatus
	decodeJSON(t, rec, &resp)
	if resp.TaskID != "st-1" || resp.Status != "queued" {
		t.Errorf("unexpected payload: %+v", resp)
	}
}

func TestStatusAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	handler := newTestServer(t, cfg, st, &fakeSubmitter{})

	testsupport.NewTask(t, st, "all-1", "a.mp4", store.MediaVideo)
	testsupport.NewTask(t, st, "all-2", "b.mp3", store.MediaAudio)

	req := httptest.NewRequest(http.MethodGet, "/status/all", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp []api.TaskStatus
	decodeJSON(t, rec, &resp)
	if len(resp) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(resp))
	}
}

func TestDownloadRequiresCompletedTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	handler := newTestServer(t, cfg, st, &fakeSubmitter{})

	testsupport.NewTask(t, st, "dl-1", "movie.mp4", store.MediaVideo)

	req := httptest.NewRequest(http.MethodGet, "/download/dl-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for incomplete task, got %d", rec.Code)
	}
}

func TestDownloadPrefersProcessedSubtitle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	handler := newTestServer(t, cfg, st, &fakeSubmitter{})
	ctx := context.Background()

	testsupport.NewTask(t, st, "dl-2", "movie.mp4", store.MediaVideo)

	rawPath := filepath.Join(cfg.Paths.OutputDir, "movie.srt")
	processedPath := filepath.Join(cfg.Paths.OutputDir, "movie_English.srt")
	testsupport.WriteFile(t, rawPath, "raw subtitle")
	testsupport.WriteFile(t, processedPath, "processed subtitle")

	for _, rec := range []*store.FileRecord{
		{TaskID: "dl-2", FileType: store.FileSubtitle, StoredFilename: "movie.srt", FilePath: rawPath},
		{TaskID: "dl-2", FileType: store.FileSubtitleProcessed, StoredFilename: "movie_English.srt", FilePath: processedPath},
	} {
		if err := st.AddFile(ctx, rec); err != nil {
			t.Fatalf("AddFile: %v", err)
		}
	}
	if err := st.UpdateStatus(ctx, "dl-2", store.StatusUpdate{Status: store.StatusCompleted, Progress: 100}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/download/dl-2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "processed subtitle" {
		t.Errorf("expected processed artifact, got %q", body)
	}
	if disposition := rec.Header().Get("Content-Disposition"); !strings.Contains(disposition, "movie_English.srt") {
		t.Errorf("unexpected disposition %q", disposition)
	}
}

func TestModelsEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	handler := newTestServer(t, cfg, st, &fakeSubmitter{})

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
		Default string `json:"default"`
	}
	decodeJSON(t, rec, &resp)
	if len(resp.Models) != 6 {
		t.Errorf("expected 6 models, got %d", len(resp.Models))
	}
	if resp.Default != cfg.Whisper.Model {
		t.Errorf("expected default %s, got %s", cfg.Whisper.Model, resp.Default)
	}
}
