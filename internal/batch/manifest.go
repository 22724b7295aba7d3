package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one character in the output manifest.
type ManifestEntry struct {
	Index       int            `json:"index"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Bones       int            `json:"bones"`
	Animations  []ManifestClip `json:"animations"`
	Error       string         `json:"error,omitempty"`
}

// ManifestClip is one exported animation, relative to the output dir.
type ManifestClip struct {
	ID       int    `json:"id"`
	Frames   int    `json:"frames"`
	Finished bool   `json:"finished"`
	File     string `json:"file"`
}

// WriteManifest writes the results as JSON to path. File paths are made
// relative to the manifest's directory.
func WriteManifest(path string, results []Result) error {
	base := filepath.Dir(path)
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Index:       r.Index,
			Name:        r.Name,
			DisplayName: r.DisplayName,
			Bones:       r.Bones,
			Animations:  []ManifestClip{},
			Error:       r.Error,
		}
		for _, a := range r.Animations {
			file := a.File
			if rel, err := filepath.Rel(base, file); err == nil {
				file = filepath.ToSlash(rel)
			}
			e.Animations = append(e.Animations, ManifestClip{ID: a.ID, Frames: a.Frames, Finished: a.Finished, File: file})
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
