// Package adapter contains filesystem, parsing and storage adapters for the
// testscope engine.
package adapter

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	m "testscope.dev/pkg/testscope/internal/model"
)

// ManifestPath is the archive entry holding packaging metadata.
const ManifestPath = "META-INF/MANIFEST.MF"

// LocationFSAdapter abstracts the filesystem operations the classifier and
// the source indexer rely on. Every method goes through an afero.Fs so the
// domain can be tested without touching the disk.
//
//nolint:interfacebloat // Classification and indexing share one view of the filesystem.
type LocationFSAdapter interface {
	// Walk traverses root recursively.
	Walk(ctx context.Context, root m.Path, fn FilepathWalkFunc) error

	// ReadFile loads a file and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// Exists reports whether path is reachable. A failed probe is reported as
	// an error so callers can decide how to treat it.
	Exists(ctx context.Context, path m.Path) (bool, error)

	// IsDir reports whether the location is a plain directory.
	IsDir(ctx context.Context, loc m.Location) bool

	// OpenResolver opens an isolated resolver that only sees loc. Callers
	// must release it with CloseResolver.
	OpenResolver(ctx context.Context, loc m.Location) (ResourceResolver, error)

	// ReadManifest returns the main attributes of an archive's manifest.
	// A location without a manifest yields an empty map.
	ReadManifest(ctx context.Context, loc m.Location) (map[string]string, error)

	// WriteFile writes content to a file, creating parent directories.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// ResourceResolver looks up resources inside exactly one location.
type ResourceResolver interface {
	HasResource(ctx context.Context, name string) (bool, error)
}

// CloseResolver releases r. Resolvers without a close operation are left
// alone.
func CloseResolver(r ResourceResolver) error {
	closer, ok := r.(io.Closer)
	if !ok {
		return nil
	}

	return closer.Close()
}

// LocalLocationFSAdapter is the afero-backed LocationFSAdapter.
type LocalLocationFSAdapter struct {
	fs afero.Fs
}

// NewLocalLocationFSAdapter constructs an adapter over the OS filesystem.
func NewLocalLocationFSAdapter() *LocalLocationFSAdapter {
	return NewLocationFSAdapter(afero.NewOsFs())
}

// NewLocationFSAdapter constructs an adapter over fs.
func NewLocationFSAdapter(fs afero.Fs) *LocalLocationFSAdapter {
	return &LocalLocationFSAdapter{fs: fs}
}

// Walk iterates over files under root.
func (a *LocalLocationFSAdapter) Walk(ctx context.Context, root m.Path, fn FilepathWalkFunc) error {
	return afero.Walk(a.fs, string(root), func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return fn(path, info, err)
	})
}

// ReadFile loads file contents.
func (a *LocalLocationFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return afero.ReadFile(a.fs, string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalLocationFSAdapter) FileInfo(_ context.Context, path m.Path) (os.FileInfo, error) {
	return a.fs.Stat(string(path))
}

// Exists reports whether path can be reached.
func (a *LocalLocationFSAdapter) Exists(_ context.Context, path m.Path) (bool, error) {
	_, err := a.fs.Stat(string(path))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// IsDir reports whether loc is a directory.
func (a *LocalLocationFSAdapter) IsDir(_ context.Context, loc m.Location) bool {
	ok, err := afero.IsDir(a.fs, string(loc.Clean()))
	return err == nil && ok
}

// OpenResolver opens a resolver over a directory or an archive.
func (a *LocalLocationFSAdapter) OpenResolver(ctx context.Context, loc m.Location) (ResourceResolver, error) {
	root := string(loc.Clean())

	info, err := a.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	if info.IsDir() {
		return &dirResolver{fs: a.fs, root: root}, nil
	}

	return openArchiveResolver(ctx, a.fs, root, info.Size())
}

// ReadManifest reads the main section of an archive manifest.
func (a *LocalLocationFSAdapter) ReadManifest(ctx context.Context, loc m.Location) (map[string]string, error) {
	root := string(loc.Clean())

	info, err := a.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	if info.IsDir() {
		return map[string]string{}, nil
	}

	archive, err := openArchiveResolver(ctx, a.fs, root, info.Size())
	if err != nil {
		return nil, err
	}

	defer func() { _ = archive.Close() }()

	entry, err := archive.reader.Open(ManifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("open manifest in %s: %w", root, err)
	}

	defer func() { _ = entry.Close() }()

	return ParseManifest(entry)
}

// WriteFile writes content to a file, creating parent directories first.
func (a *LocalLocationFSAdapter) WriteFile(_ context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := a.fs.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return afero.WriteFile(a.fs, string(path), content, perm)
}

// JoinPath joins path elements into a single path.
func (a *LocalLocationFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

// dirResolver sees the files below one directory. It holds no handle and
// therefore has no Close method.
type dirResolver struct {
	fs   afero.Fs
	root string
}

func (r *dirResolver) HasResource(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	// Rooting the name keeps lookups inside the directory.
	clean := path.Clean("/" + filepath.ToSlash(name))[1:]
	target := filepath.Join(r.root, filepath.FromSlash(clean))

	_, err := r.fs.Stat(target)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// archiveResolver sees the entries of one zip archive.
type archiveResolver struct {
	file   afero.File
	reader *zip.Reader
}

func openArchiveResolver(ctx context.Context, fs afero.Fs, root string, size int64) (*archiveResolver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - root is a classpath entry supplied by the caller
	file, err := fs.Open(root)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", root, err)
	}

	reader, err := zip.NewReader(file, size)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("read archive %s: %w", root, err)
	}

	return &archiveResolver{file: file, reader: reader}, nil
}

func (r *archiveResolver) HasResource(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	want := path.Clean(strings.TrimPrefix(name, "/"))
	for _, f := range r.reader.File {
		if f.Name == want {
			return true, nil
		}
	}

	return false, nil
}

func (r *archiveResolver) Close() error {
	return r.file.Close()
}
