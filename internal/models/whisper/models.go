package whisper

import (
	"os"
	"path/filepath"
)

// ModelInfo holds metadata for a ggml whisper model
type ModelInfo struct {
	ID        string // model identifier, matches the whisper-cpp provider model IDs
	Name      string
	Filename  string
	Size      string // human readable size
	SizeBytes int64  // expected size, used when the server sends no length
}

// multilingual models from huggingface.co/ggerganov/whisper.cpp; songs are
// rarely English only so the .en variants are not offered
var models = []ModelInfo{
	{ID: "base", Name: "Base", Filename: "ggml-base.bin", Size: "142MB", SizeBytes: 142_000_000},
	{ID: "small", Name: "Small", Filename: "ggml-small.bin", Size: "466MB", SizeBytes: 466_000_000},
	{ID: "medium", Name: "Medium", Filename: "ggml-medium.bin", Size: "1.5GB", SizeBytes: 1_500_000_000},
	{ID: "large-v3-turbo", Name: "Large V3 Turbo", Filename: "ggml-large-v3-turbo.bin", Size: "1.6GB", SizeBytes: 1_620_000_000},
}

var modelByID = func() map[string]ModelInfo {
	m := make(map[string]ModelInfo, len(models))
	for _, model := range models {
		m[model.ID] = model
	}
	return m
}()

const baseDownloadURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// GetModelsDir returns $XDG_DATA_HOME/lyricsync/models, falling back to
// ~/.local/share when XDG_DATA_HOME is unset
func GetModelsDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "lyricsync", "models"), nil
}

// GetModel returns info for a model by ID, or nil if unknown
func GetModel(modelID string) *ModelInfo {
	info, ok := modelByID[modelID]
	if !ok {
		return nil
	}
	return &info
}

// ListModels returns all downloadable models
func ListModels() []ModelInfo {
	result := make([]ModelInfo, len(models))
	copy(result, models)
	return result
}

// FilenameFor returns the ggml file name of a model. Unknown IDs follow the
// same naming so custom models dropped in the directory are still found.
func FilenameFor(modelID string) string {
	if info, ok := modelByID[modelID]; ok {
		return info.Filename
	}
	return "ggml-" + modelID + ".bin"
}

// GetModelPath returns the full path a model is expected at, or "" when the
// models directory cannot be determined
func GetModelPath(modelID string) string {
	dir, err := GetModelsDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, FilenameFor(modelID))
}
