package sizecache

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Result is the outcome of a size computation.
type Result struct {
	// Bytes is the sum of all regular files below the directory.
	Bytes int64
	// Inaccessible counts directories and files that could not be read
	// and therefore contributed nothing to Bytes.
	Inaccessible int
}

// Size returns the total size in bytes of the directory at path.
//
// Symbolic links are never followed or counted. Directories and files that
// cannot be read are skipped, so the result may undercount but is never an
// error. Pass NoCache to disable memoization.
func Size(path string, c Cache) int64 {
	res, _ := Measure(context.Background(), path, c)
	return res.Bytes
}

// frame is one directory on the traversal stack.
type frame struct {
	key     string
	entries []os.DirEntry
	next    int
	total   int64
}

// Measure is Size with a report of skipped entries. The walk checks ctx
// before descending into each uncached directory; on cancellation the partial
// result is returned together with ctx.Err(), and only directories that were
// fully walked have been stored in c.
func Measure(ctx context.Context, path string, c Cache) (Result, error) {
	if c == nil {
		c = NoCache
	}
	var res Result

	root := Key(path)
	if size, ok := c.Lookup(root); ok {
		res.Bytes = size
		return res, nil
	}

	stack := []*frame{openFrame(root, &res)}
	for {
		top := stack[len(stack)-1]

		if top.next == len(top.entries) {
			stack = stack[:len(stack)-1]
			c.Store(top.key, top.total)
			if len(stack) == 0 {
				res.Bytes = top.total
				return res, nil
			}
			stack[len(stack)-1].total += top.total
			continue
		}

		entry := top.entries[top.next]
		top.next++
		child := filepath.Join(top.key, entry.Name())
		mode := entry.Type()

		switch {
		case mode&fs.ModeSymlink != 0:
			continue
		case mode.IsDir():
			if size, ok := c.Lookup(child); ok {
				top.total += size
				continue
			}
			if err := ctx.Err(); err != nil {
				res.Bytes = partial(stack)
				return res, err
			}
			stack = append(stack, openFrame(child, &res))
		case mode.IsRegular():
			info, err := entry.Info()
			if err != nil {
				slog.Debug("skipping unreadable file", "path", child, "err", err)
				res.Inaccessible++
				continue
			}
			// the entry may have been replaced since it was listed
			if info.Mode().IsRegular() {
				top.total += info.Size()
			}
		}
	}
}

func openFrame(dir string, res *Result) *frame {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("skipping unreadable directory", "path", dir, "err", err)
		res.Inaccessible++
	}
	// entries read before the error still count
	return &frame{key: dir, entries: entries}
}

func partial(stack []*frame) int64 {
	var total int64
	for _, f := range stack {
		total += f.total
	}
	return total
}
