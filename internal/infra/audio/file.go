package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const processedSuffix = ".processed"

// Inbox hands out WAV files dropped into a directory, oldest name first.
type Inbox struct {
	dir       string
	interval  time.Duration
	processed map[string]bool
	mu        sync.Mutex
}

func NewInbox(dir string, interval time.Duration) *Inbox {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Inbox{
		dir:       dir,
		interval:  interval,
		processed: make(map[string]bool),
	}
}

func (f *Inbox) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating inbox dir: %w", err)
	}
	return nil
}

// Next blocks until a new WAV file appears and returns its path.
func (f *Inbox) Next(ctx context.Context) (string, error) {
	if path, err := f.checkForNewFile(); err != nil || path != "" {
		return path, err
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			path, err := f.checkForNewFile()
			if err != nil {
				return "", err
			}
			if path != "" {
				return path, nil
			}
		}
	}
}

// Done renames a handed out file so it is not picked up again after a restart.
func (f *Inbox) Done(path string) error {
	if err := os.Rename(path, path+processedSuffix); err != nil {
		return fmt.Errorf("marking %s processed: %w", path, err)
	}
	return nil
}

func (f *Inbox) checkForNewFile() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return "", fmt.Errorf("reading dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(f.dir, name)
		if f.processed[path] {
			continue
		}
		f.processed[path] = true
		return path, nil
	}

	return "", nil
}
