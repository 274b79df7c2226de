package director

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CutListPath creates a timestamped cut list filename in dir
func CutListPath(dir, sequence string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("cuts_%s_%s.yaml", sequence, timestamp))
}

// FindLatestCutList returns the most recently modified cut list in dir. Entries that vanish
// or cannot be read while scanning are skipped.
func FindLatestCutList(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read cut list directory: %w", err)
	}

	var latest string
	var latestTime time.Time
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "cuts_") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestTime) {
			latest, latestTime = filepath.Join(dir, name), info.ModTime()
		}
	}

	if latest == "" {
		return "", fmt.Errorf("no cut lists found in %s", dir)
	}
	return latest, nil
}

// LoadLatestCutList reads the newest cut list in dir and returns it with its path.
func LoadLatestCutList(dir string) (*CutList, string, error) {
	path, err := FindLatestCutList(dir)
	if err != nil {
		return nil, "", err
	}
	list, err := ReadCutList(path)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return list, path, nil
}
