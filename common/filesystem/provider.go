package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/afero"
)

var (
	ErrReadlinkUnsupported = errors.New("underlying file system does not support reading symlinks")
	ErrLstatUnsupported    = errors.New("underlying file system does not support lstat")
)

// Provider is the read-only file system capability consumed by the boot file resolution engine.
// All paths are absolute paths on the underlying file system.
type Provider interface {
	// Glob returns the paths whose directory matches the literal directory of pattern and whose
	// base name matches the glob in the final path element. Results are sorted.
	Glob(pattern string) ([]string, error)
	// ReadDir returns the entries of a directory sorted by name.
	ReadDir(path string) ([]fs.FileInfo, error)
	// Readlink returns the target of the symlink at path without resolving it further.
	Readlink(path string) (string, error)
	// Exists reports if path exists after following symlinks (dangling links do not exist).
	Exists(path string) (bool, error)
	ReadFile(path string) ([]byte, error)
	// FileSize returns the size of the file at path following symlinks, or zero if it is missing.
	FileSize(path string) (int64, error)
	Lstat(path string) (fs.FileInfo, error)
	// Birthtime returns the creation time of path itself (symlinks are not followed). When the
	// platform or file system does not record a birth time the modification time is returned.
	Birthtime(path string) (time.Time, error)
}

// AferoProvider implements Provider on top of an afero.Fs. Symlink operations require the Fs to
// implement afero.LinkReader and afero.Lstater (afero.OsFs does).
type AferoProvider struct {
	fs afero.Fs
}

var _ Provider = &AferoProvider{}

func NewAferoProvider(fs afero.Fs) *AferoProvider {
	return &AferoProvider{fs: fs}
}

// NewOsProvider returns a provider for the local file system.
func NewOsProvider() *AferoProvider {
	return NewAferoProvider(afero.NewOsFs())
}

func (p *AferoProvider) Fs() afero.Fs {
	return p.fs
}

func (p *AferoProvider) Glob(pattern string) ([]string, error) {
	return Glob(p, pattern)
}

func (p *AferoProvider) ReadDir(path string) ([]fs.FileInfo, error) {
	return afero.ReadDir(p.fs, path)
}

func (p *AferoProvider) Readlink(path string) (string, error) {
	reader, ok := p.fs.(afero.LinkReader)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrReadlinkUnsupported, p.fs.Name())
	}
	return reader.ReadlinkIfPossible(path)
}

func (p *AferoProvider) Exists(path string) (bool, error) {
	return afero.Exists(p.fs, path)
}

func (p *AferoProvider) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(p.fs, path)
}

func (p *AferoProvider) FileSize(path string) (int64, error) {
	info, err := p.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return info.Size(), nil
}

func (p *AferoProvider) Lstat(path string) (fs.FileInfo, error) {
	lstater, ok := p.fs.(afero.Lstater)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLstatUnsupported, p.fs.Name())
	}
	info, _, err := lstater.LstatIfPossible(path)
	return info, err
}

func (p *AferoProvider) Birthtime(path string) (time.Time, error) {
	if _, ok := p.fs.(*afero.OsFs); ok {
		btime, ok, err := birthtime(path)
		if err != nil {
			return time.Time{}, &os.PathError{Op: "birthtime", Path: path, Err: err}
		}
		if ok {
			return btime, nil
		}
	}
	info, err := p.Lstat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
