// Package export appends kept packet summaries to a flat file.
package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exporter is an append-only line sink.
type Exporter struct {
	f    *os.File
	path string
}

// Prepare validates the export path and opens the file for appending. The
// parent directory must already exist and the path must not name a
// directory. clear truncates the file first. Any failure here is fatal to
// the caller before the capture loop starts.
func Prepare(path string, clear bool) (*Exporter, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("export parent directory %s does not exist", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("export parent %s is not a directory", dir)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("export location %s is a directory, expected a file path", path)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if clear {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("open export file %s: %w", path, err)
	}
	return &Exporter{f: f, path: path}, nil
}

// Append writes one summary line.
func (e *Exporter) Append(line string) error {
	if _, err := fmt.Fprintln(e.f, line); err != nil {
		return fmt.Errorf("append to %s: %w", e.path, err)
	}
	return nil
}

// Path returns the prepared export path.
func (e *Exporter) Path() string {
	return e.path
}

func (e *Exporter) Close() error {
	return e.f.Close()
}
