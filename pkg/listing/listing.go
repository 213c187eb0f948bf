// Package listing prints directory contents as a flat list or as a tree.
package listing

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	IconDir  = "📁"
	IconFile = "📄"
)

// Options control what is listed.
type Options struct {
	// ShowAll includes names starting with '.'.
	ShowAll bool
	// Depth limits tree recursion; nil means unlimited and 0 prints only the root.
	Depth *int
	// Err receives diagnostics such as permission errors. Defaults to os.Stderr.
	Err io.Writer
}

func (o Options) errOut() io.Writer {
	if o.Err == nil {
		return os.Stderr
	}
	return o.Err
}

// Hidden reports whether name is hidden by POSIX convention.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Entries returns the visible children of dir, directories first, each group
// ordered by case-insensitive name. Symbolic links are grouped with files.
func Entries(dir string, showAll bool) ([]fs.DirEntry, error) {
	all, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := all[:0]
	for _, e := range all {
		if showAll || !Hidden(e.Name()) {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
	return entries, nil
}

func icon(e fs.DirEntry) string {
	if e.IsDir() {
		return IconDir
	}
	return IconFile
}

// ErrNotFound is returned when the listed path does not exist.
var ErrNotFound = errors.New("no such file or directory")

// List prints a flat listing of path to w. A file is printed on its own.
func List(w io.Writer, path string, opts Options) error {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(opts.errOut(), "shea: %v: %s\n", ErrNotFound, path)
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "%s %s\n", IconFile, filepath.Base(path))
		return nil
	}
	for _, e := range readVisible(path, opts) {
		fmt.Fprintf(w, "%s %s\n", icon(e), e.Name())
	}
	return nil
}

func readVisible(dir string, opts Options) []fs.DirEntry {
	entries, err := Entries(dir, opts.ShowAll)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			fmt.Fprintf(opts.errOut(), "shea: permission denied: %s\n", dir)
		} else {
			slog.Debug("cannot read directory", "path", dir, "err", err)
		}
		return nil
	}
	return entries
}
