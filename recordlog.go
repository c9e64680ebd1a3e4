package nbforge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/littlemissdragon/nbforge/internal/fileutil"
)

// Record files kept at the working root.
const (
	// ContainerRecordName holds the IDs of containers started by this tool.
	ContainerRecordName = ".nbforge-containers"
	// SyncManifestName holds the root-relative paths synced into the site tree.
	SyncManifestName = ".nbforge-synced"
)

// RecordLog is an append-only, line-oriented plain-text record file. It
// backs the running-container record and the synced-file manifest.
// There is no per-entry deletion: partial removals are expressed as
// Clear followed by Append of the remainder. Updates write the full
// content to a temp file in the same directory and rename it over the
// original, so readers never observe a half-written record.
type RecordLog struct {
	Path string
}

// Read returns the recorded entries in order. A missing file reads as
// empty. Blank lines are ignored.
func (l RecordLog) Read() ([]string, error) {
	data, err := os.ReadFile(l.Path) // #nosec G304 -- record path comes from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading record %s: %w", l.Path, err)
	}

	var entries []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}

// Append adds entries to the end of the record.
func (l RecordLog) Append(entries ...string) error {
	if len(entries) == 0 {
		return nil
	}
	current, err := l.Read()
	if err != nil {
		return err
	}
	return l.write(append(current, entries...))
}

// Clear removes the record file. A missing file is not an error.
func (l RecordLog) Clear() error {
	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing record %s: %w", l.Path, err)
	}
	return nil
}

func (l RecordLog) write(entries []string) error {
	dir := filepath.Dir(l.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing record %s: %w", l.Path, err)
	}
	tmpPath := tmp.Name()

	content := strings.Join(entries, "\n") + "\n"
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing record %s: %w", l.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing record %s: %w", l.Path, err)
	}
	if err := os.Chmod(tmpPath, fileutil.FilePermissions); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing record %s: %w", l.Path, err)
	}
	if err := os.Rename(tmpPath, l.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing record %s: %w", l.Path, err)
	}
	return nil
}
