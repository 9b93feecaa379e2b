package feed

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transitcal/pkg/dag"
	"github.com/matzehuels/transitcal/pkg/dag/transform"
	fterrors "github.com/matzehuels/transitcal/pkg/errors"
	"github.com/matzehuels/transitcal/pkg/observability"
)

// maxArchiveFileSize bounds a single unpacked table.
var maxArchiveFileSize int64 = 2 << 30

// Options configures Load.
type Options struct {
	// View lists table filters, applied as successive layers in order.
	View View

	// Graph is the dependency graph. Nil means DefaultGraph().
	Graph *dag.DAG

	// Logger receives debug messages. Nil means log.Default().
	Logger *log.Logger
}

// Load opens the feed at path, which is a directory of table files or a zip
// archive of them, and composes a filtered view over it.
//
// The graph is validated before path is touched. Each View entry adds a
// layer rerooted at its table, so filtering one table narrows every table
// linked to it. A last layer over the full graph runs value converters.
//
// Archives are unpacked into a staging directory owned by the returned Feed;
// call Feed.Close to remove it.
func Load(ctx context.Context, path string, opts Options) (*Feed, error) {
	graph := opts.Graph
	if graph == nil {
		graph = DefaultGraph()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	if err := graph.Validate(); err != nil {
		return nil, fterrors.Wrap(fterrors.ErrCodeInvalidGraph, err, "invalid dependency graph")
	}
	for _, tf := range opts.View {
		if err := fterrors.ValidateTableName(tf.Table); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	observability.Feed().OnLoadStart(ctx, path, len(opts.View))
	f, err := load(ctx, path, graph, opts.View, logger)
	observability.Feed().OnLoadComplete(ctx, path, time.Since(start), err)
	return f, err
}

// LoadRaw opens the feed at path with no filters and EmptyGraph(): every
// table is read as-is, without cascading or conversion.
func LoadRaw(ctx context.Context, path string) (*Feed, error) {
	return Load(ctx, path, Options{Graph: EmptyGraph()})
}

func load(ctx context.Context, path string, graph *dag.DAG, view View, logger *log.Logger) (*Feed, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fterrors.New(fterrors.ErrCodeFileNotFound, "feed not found: %s", path)
	}
	if err != nil {
		return nil, fterrors.Wrap(fterrors.ErrCodeInvalidInput, err, "stat %s", path)
	}

	var root, staging string
	switch {
	case info.IsDir():
		root = path
	case info.Mode().IsRegular():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		staging, err = os.MkdirTemp("", "transitcal-")
		if err != nil {
			return nil, fterrors.Wrap(fterrors.ErrCodeInternal, err, "create staging directory")
		}
		start := time.Now()
		n, err := unzip(path, staging)
		observability.Feed().OnUnpack(ctx, path, n, time.Since(start), err)
		if err != nil {
			_ = os.RemoveAll(staging)
			return nil, err
		}
		root = feedRoot(staging)
		logger.Debug("unpacked archive", "path", path, "files", n, "dir", staging)
	default:
		return nil, fterrors.New(fterrors.ErrCodeInvalidInput, "not a directory or regular file: %s", path)
	}

	filterOnly := transform.StripAttribute(graph, dag.AttrConverters)

	var current TableSource = NewFilteredView(NewDirSource(root, logger), filterOnly, nil, logger)
	for i, tf := range view {
		layer := transform.Reroot(filterOnly, tf.Table)
		current = NewFilteredView(current, layer, map[string]ColumnFilter{tf.Table: tf.Filter}, logger)
		logger.Debug("added view layer", "layer", i+1, "table", tf.Table, "columns", len(tf.Filter))
	}
	final := NewFilteredView(current, graph, nil, logger)

	return newFeed(final, path, root, staging, logger), nil
}

// unzip extracts every regular file of the archive at src into dst and
// returns the number of files written.
func unzip(src, dst string) (int, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return 0, fterrors.Wrap(fterrors.ErrCodeInvalidInput, err, "open archive %s", src)
	}
	defer zr.Close()

	n := 0
	for _, zf := range zr.File {
		if err := fterrors.ValidateArchivePath(zf.Name); err != nil {
			return n, err
		}
		target := filepath.Join(dst, filepath.FromSlash(zf.Name))
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return n, fterrors.Wrap(fterrors.ErrCodeInternal, err, "create %s", zf.Name)
			}
			continue
		}
		if !zf.Mode().IsRegular() {
			continue
		}
		if err := extract(zf, target); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func extract(zf *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fterrors.Wrap(fterrors.ErrCodeInternal, err, "create directory for %s", zf.Name)
	}
	rc, err := zf.Open()
	if err != nil {
		return fterrors.Wrap(fterrors.ErrCodeInvalidInput, err, "read %s from archive", zf.Name)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fterrors.Wrap(fterrors.ErrCodeInternal, err, "create %s", zf.Name)
	}
	n, err := io.Copy(out, io.LimitReader(rc, maxArchiveFileSize+1))
	if err != nil {
		out.Close()
		return fterrors.Wrap(fterrors.ErrCodeInvalidInput, err, "extract %s", zf.Name)
	}
	if n > maxArchiveFileSize {
		out.Close()
		return fterrors.New(fterrors.ErrCodeInvalidInput, "%s exceeds %d bytes", zf.Name, maxArchiveFileSize)
	}
	return out.Close()
}

// feedRoot descends into a lone top-level directory, which is how many
// agencies zip their feeds.
func feedRoot(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return dir
	}
	return filepath.Join(dir, entries[0].Name())
}
