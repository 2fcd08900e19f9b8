package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// DirSnapshot is the set of regular file names present in a directory at one moment
type DirSnapshot map[string]struct{}

// SnapshotDir lists the regular files directly inside dir.
// A directory that does not exist yet yields an empty snapshot.
func SnapshotDir(fs afero.Fs, dir string) (DirSnapshot, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return DirSnapshot{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	snapshot := make(DirSnapshot, len(entries))
	for _, entry := range entries {
		if entry.Mode().IsRegular() {
			snapshot[entry.Name()] = struct{}{}
		}
	}
	return snapshot, nil
}

// Added returns the names present in after but not in s, sorted
func (s DirSnapshot) Added(after DirSnapshot) []string {
	var added []string
	for name := range after {
		if _, existed := s[name]; !existed {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	return added
}

// JoinAll prefixes each name with dir
func JoinAll(dir string, names []string) []string {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths
}

// FileSize returns the size of path on fs, or 0 when it cannot be read
func FileSize(fs afero.Fs, path string) int64 {
	info, err := fs.Stat(path)
	if err != nil || info.IsDir() {
		return 0
	}
	return info.Size()
}

// TotalSize sums the sizes of the given files
func TotalSize(fs afero.Fs, paths []string) int64 {
	var total int64
	for _, path := range paths {
		total += FileSize(fs, path)
	}
	return total
}

// fileExists checks if a file exists
func fileExists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}
