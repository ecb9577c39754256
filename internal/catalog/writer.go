// Package catalog writes the catalog artifacts and their failure reports,
// and loads previously written artifacts back.
//
// Artifacts are JSON objects keyed by each record's natural key. Keys are
// emitted in sorted order so reruns over unchanged data are byte-identical.
// Every write goes to a temp file in the target directory and is renamed
// into place, so a crash never leaves a partial artifact behind.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Path returns the artifact path for kind, e.g. <dir>/species.json.
func Path(dir, kind string) string {
	return filepath.Join(dir, kind+".json")
}

// ReportPath returns the failure report path for kind.
func ReportPath(dir, kind string) string {
	return filepath.Join(dir, kind+".missing.json")
}

// WriteRecords serializes records keyed by natural key into the kind artifact.
func WriteRecords[T any](dir, kind string, records map[string]T) (string, error) {
	if records == nil {
		records = map[string]T{}
	}
	path := Path(dir, kind)
	if err := writeJSON(path, records); err != nil {
		return "", fmt.Errorf("write %s artifact: %w", kind, err)
	}
	return path, nil
}

// writeJSON marshals v with two-space indentation and atomically replaces path.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeAtomic(path, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
