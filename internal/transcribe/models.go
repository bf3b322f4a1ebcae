package transcribe

import "strings"

// ModelInfo describes one entry in the transcription model catalog.
type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// The catalog mirrors the whisper model family: each entry trades accuracy
// against speed.
var modelCatalog = []ModelInfo{
	{Name: "tiny", Description: "Smallest model, fastest, lowest accuracy"},
	{Name: "base", Description: "Base model, fast, modest accuracy"},
	{Name: "small", Description: "Small model, balanced speed and accuracy"},
	{Name: "medium", Description: "Medium model, higher accuracy, slower"},
	{Name: "large-v3", Description: "Large model, highest accuracy, slowest"},
	{Name: "large-v3-turbo", Description: "Large model tuned for speed with near-large accuracy"},
}

var modelSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(modelCatalog))
	for _, model := range modelCatalog {
		set[model.Name] = struct{}{}
	}
	return set
}()

// Catalog returns the ordered list of selectable models.
func Catalog() []ModelInfo {
	cp := make([]ModelInfo, len(modelCatalog))
	copy(cp, modelCatalog)
	return cp
}

// ValidModel reports whether name is in the catalog.
func ValidModel(name string) bool {
	_, ok := modelSet[strings.TrimSpace(name)]
	return ok
}
