package listing

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Connectors used to draw the tree.
const (
	BoxTree = "├── "
	BoxLast = "└── "
	BoxItem = "│   "
	BoxNone = "    "
)

// Tree prints path and, if it is a directory, its descendants to w.
// Symbolic links to directories are shown but not descended into.
func Tree(w io.Writer, path string, opts Options) error {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(opts.errOut(), "shea: %v: %s\n", ErrNotFound, path)
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "%s %s\n", IconFile, filepath.Base(path))
		return nil
	}

	fmt.Fprintln(w, rootLabel(path))
	if opts.Depth != nil && *opts.Depth == 0 {
		return nil
	}
	left := -1
	if opts.Depth != nil {
		left = *opts.Depth - 1
	}
	walk(w, path, "", left, opts)
	return nil
}

// rootLabel is the name printed on the first line: the path's base name,
// or "." for paths without one.
func rootLabel(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "."
	}
	return base
}

// walk prints the children of dir. left is the number of further levels to
// descend below dir; a negative value means unlimited.
func walk(w io.Writer, dir, prefix string, left int, opts Options) {
	entries := readVisible(dir, opts)
	for i, e := range entries {
		last := i == len(entries)-1
		connector, indent := BoxTree, BoxItem
		if last {
			connector, indent = BoxLast, BoxNone
		}
		fmt.Fprintf(w, "%s%s%s %s\n", prefix, connector, icon(e), e.Name())

		if e.IsDir() && left != 0 {
			next := left - 1
			if left < 0 {
				next = -1
			}
			walk(w, filepath.Join(dir, e.Name()), prefix+indent, next, opts)
		}
	}
}
