package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"subforge/internal/logging"
	"subforge/internal/orchestrator"
	"subforge/internal/store"
	"subforge/internal/transcribe"
)

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".avi": {}, ".mkv": {}, ".mov": {},
}

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".m4a": {}, ".aac": {}, ".flac": {},
}

// detectMediaType classifies an upload by its extension. The empty string
// means the extension is not supported.
func detectMediaType(filename string) store.MediaType {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := videoExtensions[ext]; ok {
		return store.MediaVideo
	}
	if _, ok := audioExtensions[ext]; ok {
		return store.MediaAudio
	}
	return ""
}

// TaskStatus is the JSON shape of one task in status responses.
type TaskStatus struct {
	TaskID           string  `json:"task_id"`
	OriginalFilename string  `json:"original_filename"`
	FileType         string  `json:"file_type"`
	Status           string  `json:"status"`
	Progress         int     `json:"progress"`
	Message          string  `json:"message"`
	TargetLang       string  `json:"target_lang,omitempty"`
	ModelName        string  `json:"model_name"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
	CompletedAt      string  `json:"completed_at,omitempty"`
	ErrorMessage     string  `json:"error_message,omitempty"`
	ProcessTime      float64 `json:"process_time,omitempty"`
}

func taskStatus(task *store.Task) TaskStatus {
	status := TaskStatus{
		TaskID:           task.TaskID,
		OriginalFilename: task.OriginalFilename,
		FileType:         string(task.FileType),
		Status:           string(task.Status),
		Progress:         task.Progress,
		Message:          task.Message,
		TargetLang:       task.TargetLang,
		ModelName:        task.ModelName,
		CreatedAt:        task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        task.UpdatedAt.UTC().Format(time.RFC3339),
		ErrorMessage:     task.ErrorMessage,
		ProcessTime:      task.ProcessTime,
	}
	if task.CompletedAt != nil {
		status.CompletedAt = task.CompletedAt.UTC().Format(time.RFC3339)
	}
	return status
}

// UploadResponse acknowledges an accepted submission.
type UploadResponse struct {
	TaskID   string `json:"task_id"`
	Message  string `json:"message"`
	FileType string `json:"file_type"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	originalName := filepath.Base(strings.TrimSpace(header.Filename))
	if originalName == "" || originalName == "." {
		s.writeError(w, http.StatusBadRequest, "no file selected")
		return
	}

	mediaType := detectMediaType(originalName)
	if mediaType == "" {
		s.writeError(w, http.StatusBadRequest, "unsupported file format")
		return
	}

	storedName := store.GenerateStoredFilename(originalName)
	storedPath := filepath.Join(s.cfg.Paths.UploadDir, storedName)
	if err := saveUpload(file, storedPath); err != nil {
		s.logger.Error("failed to store upload", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	taskID := strconv.FormatInt(time.Now().UnixMilli(), 10)
	sub := orchestrator.Submission{
		TaskID:           taskID,
		OriginalFilename: originalName,
		StoredFilename:   storedName,
		FilePath:         storedPath,
		FileType:         mediaType,
		TargetLang:       r.FormValue("target_lang"),
		KeepOriginal:     strings.EqualFold(r.FormValue("keep_original"), "true"),
		ModelName:        r.FormValue("model"),
	}

	if err := s.submitter.Submit(r.Context(), sub); err != nil {
		_ = os.Remove(storedPath)
		if orchestrator.IsCapacityError(err) {
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.logger.Error("submission rejected",
			logging.String("task_id", taskID),
			logging.Error(err),
		)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, UploadResponse{
		TaskID:   taskID,
		Message:  "task queued",
		FileType: string(mediaType),
	})
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return err
	}
	return dst.Close()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]
	task, err := s.store.GetTask(r.Context(), taskID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if task == nil {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	s.writeJSON(w, http.StatusOK, taskStatus(task))
}

func (s *Server) handleStatusAll(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context(), 0)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	statuses := make([]TaskStatus, 0, len(tasks))
	for _, task := range tasks {
		statuses = append(statuses, taskStatus(task))
	}
	s.writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]
	task, err := s.store.GetTask(r.Context(), taskID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if task == nil || task.Status != store.StatusCompleted {
		s.writeError(w, http.StatusNotFound, "file not found or task incomplete")
		return
	}

	files, err := s.store.TaskFiles(r.Context(), taskID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	artifact := pickSubtitleArtifact(files)
	if artifact == nil {
		s.writeError(w, http.StatusNotFound, "subtitle file not found")
		return
	}
	if _, err := os.Stat(artifact.FilePath); err != nil {
		s.writeError(w, http.StatusNotFound, "subtitle file not found")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.StoredFilename+`"`)
	http.ServeFile(w, r, artifact.FilePath)
}

// pickSubtitleArtifact prefers the processed subtitle, falling back to the
// raw transcription when no transform stage ran.
func pickSubtitleArtifact(files []*store.FileRecord) *store.FileRecord {
	var raw *store.FileRecord
	for _, f := range files {
		switch f.FileType {
		case store.FileSubtitleProcessed:
			return f
		case store.FileSubtitle:
			raw = f
		}
	}
	return raw
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"models":  transcribe.Catalog(),
		"default": s.cfg.Whisper.Model,
	})
}
