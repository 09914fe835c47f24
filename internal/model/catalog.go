// Package model locates and fetches ggml whisper model artifacts.
package model

import (
	"fmt"
	"path/filepath"
)

// hfBaseURL is the Hugging Face repository every artifact resolves against.
const hfBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Artifact identifies a whisper model by size and language tag and maps it to
// a deterministic file name, remote URL, and local path.
type Artifact struct {
	Size string
	Lang string
}

// Filename returns the ggml artifact name, e.g. "ggml-tiny.en.bin".
// An empty or "multi" lang tag selects the multilingual variant with no suffix.
func (a Artifact) Filename() string {
	if a.Lang == "" || a.Lang == "multi" {
		return fmt.Sprintf("ggml-%s.bin", a.Size)
	}
	return fmt.Sprintf("ggml-%s.%s.bin", a.Size, a.Lang)
}

// URL returns the remote artifact location. The template is fixed; unknown
// size/lang combinations still resolve, the server decides whether they exist.
func (a Artifact) URL() string {
	return hfBaseURL + "/" + a.Filename()
}

// LocalPath returns where the artifact lives under the given models directory.
func (a Artifact) LocalPath(modelsDir string) string {
	return filepath.Join(modelsDir, a.Filename())
}

// CatalogEntry describes a known model variant for display purposes.
type CatalogEntry struct {
	ID          string
	Artifact    Artifact
	SizeLabel   string
	Description string
}

// Catalog lists the commonly used whisper.cpp model variants.
func Catalog() []CatalogEntry {
	return []CatalogEntry{
		{
			ID:          "tiny.en",
			Artifact:    Artifact{Size: "tiny", Lang: "en"},
			SizeLabel:   "~75 MB",
			Description: "Fastest, English-only model.",
		},
		{
			ID:          "tiny",
			Artifact:    Artifact{Size: "tiny"},
			SizeLabel:   "~75 MB",
			Description: "Fastest multilingual model.",
		},
		{
			ID:          "base.en",
			Artifact:    Artifact{Size: "base", Lang: "en"},
			SizeLabel:   "~142 MB",
			Description: "Balanced speed/quality, English-only.",
		},
		{
			ID:          "base",
			Artifact:    Artifact{Size: "base"},
			SizeLabel:   "~142 MB",
			Description: "Balanced speed/quality, multilingual.",
		},
		{
			ID:          "small.en",
			Artifact:    Artifact{Size: "small", Lang: "en"},
			SizeLabel:   "~466 MB",
			Description: "Higher quality, English-only.",
		},
		{
			ID:          "small",
			Artifact:    Artifact{Size: "small"},
			SizeLabel:   "~466 MB",
			Description: "Higher quality multilingual model.",
		},
		{
			ID:          "medium.en",
			Artifact:    Artifact{Size: "medium", Lang: "en"},
			SizeLabel:   "~1.5 GB",
			Description: "High quality, English-only.",
		},
		{
			ID:          "medium",
			Artifact:    Artifact{Size: "medium"},
			SizeLabel:   "~1.5 GB",
			Description: "High quality multilingual model.",
		},
		{
			ID:          "large-v3",
			Artifact:    Artifact{Size: "large-v3"},
			SizeLabel:   "~3.1 GB",
			Description: "Best quality, multilingual only.",
		},
	}
}
