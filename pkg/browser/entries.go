// Package browser implements the interactive disk-usage explorer.
package browser

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"shea/pkg/sizecache"
)

// ParentName is the label of the synthetic entry leading one level up.
const ParentName = ".."

// Entry is one row of a directory view.
type Entry struct {
	Name  string
	Path  string
	Size  int64
	IsDir bool
	// Parent marks the synthetic ".." entry.
	Parent bool
}

// Loader lists directories and computes the size of their entries.
type Loader struct {
	Cache *sizecache.SyncCache
	// Workers bounds how many subdirectories are walked at once.
	Workers int
}

// Load returns the entries of dir ordered for display: the parent entry
// first (unless dir is the filesystem root), then by size, largest first.
// Symbolic links are not listed. An error is returned only if dir itself
// cannot be read or ctx is cancelled.
func (l *Loader) Load(ctx context.Context, dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if de.Type()&fs.ModeSymlink != 0 {
			continue
		}
		e := Entry{
			Name:  de.Name(),
			Path:  filepath.Join(dir, de.Name()),
			IsDir: de.IsDir(),
		}
		if !e.IsDir {
			info, err := de.Info()
			if err != nil {
				slog.Debug("Skipping entry", "path", e.Path, "err", err)
				continue
			}
			e.Size = info.Size()
		}
		entries = append(entries, e)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.Workers, 1))
	for i := range entries {
		if !entries[i].IsDir {
			continue
		}
		g.Go(func() error {
			res, err := l.Cache.Size(gctx, entries[i].Path)
			if err != nil && gctx.Err() == nil {
				// joined a walk that its owner cancelled
				res, err = l.Cache.Size(gctx, entries[i].Path)
			}
			if err != nil {
				return err
			}
			if res.Inaccessible > 0 {
				slog.Debug("Partial size", "path", entries[i].Path, "inaccessible", res.Inaccessible)
			}
			entries[i].Size = res.Bytes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortBySize(entries)
	return WithParent(dir, entries), nil
}

// SortBySize orders entries largest first, breaking ties by name.
func SortBySize(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Size != entries[j].Size {
			return entries[i].Size > entries[j].Size
		}
		return entries[i].Name < entries[j].Name
	})
}

// WithParent prepends the ".." entry unless dir is the filesystem root.
func WithParent(dir string, entries []Entry) []Entry {
	parent := filepath.Dir(dir)
	if parent == dir {
		return entries
	}
	return append([]Entry{{Name: ParentName, Path: parent, IsDir: true, Parent: true}}, entries...)
}

// Refresh drops the cached sizes of the direct children of dir and returns
// how many entries were removed. Deeper descendants stay cached.
func Refresh(cache *sizecache.SyncCache, dir string) int {
	des, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("Cannot refresh directory", "path", dir, "err", err)
		return 0
	}
	n := 0
	for _, de := range des {
		if cache.Invalidate(filepath.Join(dir, de.Name())) {
			n++
		}
	}
	return n
}
