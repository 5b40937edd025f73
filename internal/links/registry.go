package links

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Load reads the registry at path. A missing file is an empty registry.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, nil
}

// Save writes recs as indented JSON, replacing path atomically.
func Save(path string, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".links-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Merge prepends the records of fresh whose URL is not already in existing.
// Existing records are kept as they are. It returns the merged list and the
// records that were added.
func Merge(existing, fresh []Record) (merged, added []Record) {
	known := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		known[r.URL] = struct{}{}
	}
	for _, r := range fresh {
		if _, ok := known[r.URL]; ok {
			continue
		}
		known[r.URL] = struct{}{}
		added = append(added, r)
	}
	merged = make([]Record, 0, len(added)+len(existing))
	merged = append(merged, added...)
	merged = append(merged, existing...)
	return merged, added
}
