// Package jsonfile provides JSON file backed implementations of the
// redline store interfaces. Missing files read as empty stores and
// writes replace the file atomically.
package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// load reads a JSON data file into T. A missing or empty file yields
// the zero value of T.
func load[T any](path string) (T, error) {
	var file T

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, err
	}

	if len(data) == 0 {
		return file, nil
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return file, err
	}

	return file, nil
}

// save writes a JSON data file atomically via a temp file rename.
func save[T any](path string, file T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
