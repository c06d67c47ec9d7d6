// Package store persists pipeline results: one timestamped JSON
// artifact per run, plus a SQLite index of run history.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"contractlens/internal/risk"
)

type ResultStore struct {
	dir string
	now func() time.Time
}

func NewResultStore(dir string) *ResultStore {
	return &ResultStore{dir: dir, now: time.Now}
}

// Save writes the result keyed by a second-resolution timestamp. Two
// runs completing within the same second overwrite each other; that is
// the defined contract, not a bug to dedupe.
func (s *ResultStore) Save(result risk.PipelineResult) (string, error) {
	name := fmt.Sprintf("review_%s.json", s.now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)
	if err := WriteJSON(path, result); err != nil {
		return "", err
	}
	return path, nil
}

// WriteJSON writes v as indented UTF-8 JSON with full non-ASCII
// fidelity, atomically via a temp file rename.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
