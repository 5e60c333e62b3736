package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/pkg/errors"

	"github.com/justyntemme/spotter/internal/debug"
)

// OutputsDirName is the subdirectory of a loaded folder that holds
// detection-engine outputs.
const OutputsDirName = "outputs"

// imageExts lists recognized image extensions (lower-case, with dot).
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// Entry is a single image file found by ListImages.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// IsImage reports whether name has a recognized image extension.
// The comparison is case-insensitive.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// OutputsDir returns the outputs directory derived from folder.
func OutputsDir(folder string) string {
	return filepath.Join(folder, OutputsDirName)
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ListImages returns the image files directly inside dir, sorted by path.
// Subdirectories are never descended into.
func ListImages(dir string) ([]Entry, error) {
	dir = filepath.Clean(dir)
	debug.Log(debug.FS, "ListImages: reading %q", dir)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list images in %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("list images in %s: not a directory", dir)
	}

	var result []Entry
	var mu sync.Mutex

	// Symlinked directories are never entered; symlinked files are stat'ed
	// through to their target below.
	conf := &fastwalk.Config{
		Follow: false,
	}

	err = fastwalk.Walk(conf, dir, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.Log(debug.FS_ENTRY, "ListImages: walk error at %q: %v", fullPath, err)
			return nil
		}
		if fullPath == dir {
			return nil
		}
		if filepath.Dir(fullPath) != dir {
			return fastwalk.SkipDir
		}
		if d.IsDir() {
			return fastwalk.SkipDir
		}
		if !IsImage(d.Name()) {
			debug.Log(debug.FS_ENTRY, "ListImages: skipping %q: not an image", d.Name())
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			debug.Log(debug.FS_ENTRY, "ListImages: skipping %q: stat error: %v", d.Name(), err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		mu.Lock()
		result = append(result, Entry{
			Name:    d.Name(),
			Path:    fullPath,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list images in %s", dir)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})

	debug.Log(debug.FS, "ListImages: %d images in %q", len(result), dir)
	return result, nil
}

// Paths extracts the paths of entries, preserving order.
func Paths(entries []Entry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

// RemoveDir deletes path recursively. A missing directory is not an error;
// removed reports whether anything was there to delete.
func RemoveDir(path string) (removed bool, err error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			debug.Log(debug.FS, "RemoveDir: %q does not exist", path)
			return false, nil
		}
		return false, errors.Wrapf(err, "remove %s", path)
	}
	if err := os.RemoveAll(path); err != nil {
		return false, errors.Wrapf(err, "remove %s", path)
	}
	debug.Log(debug.FS, "RemoveDir: removed %q", path)
	return true, nil
}
