// Package textfile reads and writes the plain text files the stages hand
// over to each other. The whole file content is the payload.
package textfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadTrimmed returns the file content without surrounding whitespace.
// A missing file is reported with an error matching fs.ErrNotExist.
func ReadTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write replaces the file content, creating the parent directory if needed.
func Write(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
