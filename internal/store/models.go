package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a task. Transitions are monotonic
// through the pipeline; error and completed are terminal.
type Status string

const (
	StatusQueued              Status = "queued"
	StatusExtractingAudio     Status = "extracting_audio"
	StatusGeneratingSubtitles Status = "generating_subtitles"
	StatusCorrectingSubtitles Status = "correcting_subtitles"
	StatusTranslating         Status = "translating"
	StatusCleaning            Status = "cleaning"
	StatusCompleted           Status = "completed"
	StatusError               Status = "error"
)

var allStatuses = []Status{
	StatusQueued,
	StatusExtractingAudio,
	StatusGeneratingSubtitles,
	StatusCorrectingSubtitles,
	StatusTranslating,
	StatusCleaning,
	StatusCompleted,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusError:     {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the task lifecycle.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// MediaType classifies the submitted input file.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// ParseMediaType converts a string into a known MediaType.
func ParseMediaType(value string) (MediaType, bool) {
	switch MediaType(strings.ToLower(strings.TrimSpace(value))) {
	case MediaVideo:
		return MediaVideo, true
	case MediaAudio:
		return MediaAudio, true
	}
	return "", false
}

// FileKind classifies a file record tied to a task.
type FileKind string

const (
	FileVideo             FileKind = "video"
	FileAudio             FileKind = "audio"
	FileSubtitle          FileKind = "subtitle"
	FileSubtitleProcessed FileKind = "subtitle_processed"
)

// Task is one end-to-end job from input media to final subtitle artifact.
type Task struct {
	TaskID           string
	OriginalFilename string
	StoredFilename   string
	FileType         MediaType
	Status           Status
	Progress         int
	Message          string
	TargetLang       string
	KeepOriginal     bool
	ModelName        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
	ErrorMessage     string
	ProcessTime      float64
}

// FileRecord is a physical file tied to a task. Temporary records are
// deleted (row and underlying file) during the cleanup stage.
type FileRecord struct {
	FileID           string
	TaskID           string
	FileType         FileKind
	OriginalFilename string
	StoredFilename   string
	FilePath         string
	IsTemporary      bool
	CreatedAt        time.Time
}

// StatusUpdate carries the fields a worker overwrites at a stage boundary.
// Updates are last-write-wins; exactly one worker owns a task at a time.
type StatusUpdate struct {
	Status       Status
	Progress     int
	Message      string
	ErrorMessage string
	ProcessTime  float64
}
