// Package pseudostore models the flattened copies of Nix store files that bootloader
// integrations place on the boot partition (generally the ESP), because the bootloader cannot
// address the nested content-addressed store directly. Different integrations use different
// directories for their pseudo-store.
package pseudostore

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bootusage/bootusage/common/filesystem"
)

const (
	// KernelsLayout is the pseudo-store used by the grub integration.
	KernelsLayout = "kernels"
	// SystemdBootLayout is the pseudo-store used by the systemd-boot integration.
	SystemdBootLayout = "EFI/nixos"
)

// DefaultLayouts are the recognized pseudo-store directories relative to the boot partition.
var DefaultLayouts = []string{KernelsLayout, SystemdBootLayout}

// FileName maps a Nix store path to the flat file name it is copied to in a pseudo-store. The
// store directory prefix is removed and all remaining separators become hyphens, for example
// /nix/store/abc-linux-6.6/bzImage becomes abc-linux-6.6-bzImage.
func FileName(storeDir string, storePath string) string {
	prefix := strings.TrimSuffix(storeDir, "/") + "/"
	return strings.ReplaceAll(strings.TrimPrefix(storePath, prefix), "/", "-")
}

// Store is one pseudo-store directory.
type Store struct {
	// Layout is the path of the store relative to the boot partition.
	Layout string
	// Path is the absolute path of the store directory.
	Path string
	fs   filesystem.Provider
}

// Entry describes a single file found in a pseudo-store.
type Entry struct {
	Layout string
	Path   string
	Name   string
	Size   int64
	Mtime  time.Time
	Btime  time.Time
}

// Files returns the names of the entries directly inside the store directory, sorted. Hidden
// entries are skipped. A store whose directory does not exist has no files.
func (s *Store) Files() ([]string, error) {
	exists, err := s.fs.Exists(s.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to check pseudo-store %q: %w", s.Path, err)
	}
	if !exists {
		return []string{}, nil
	}

	infos, err := s.fs.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to list pseudo-store %q: %w", s.Path, err)
	}
	files := make([]string, 0, len(infos))
	for _, info := range infos {
		if strings.HasPrefix(info.Name(), ".") {
			continue
		}
		files = append(files, info.Name())
	}
	return files, nil
}

// Find returns the absolute path of name inside the store if it exists.
func (s *Store) Find(name string) (string, bool, error) {
	qualified := filepath.Join(s.Path, name)
	exists, err := s.fs.Exists(qualified)
	if err != nil {
		return "", false, fmt.Errorf("unable to look up %q in pseudo-store %q: %w", name, s.Path, err)
	}
	if !exists {
		return "", false, nil
	}
	return qualified, true, nil
}

// Entries returns Files() with size and timestamps of each file.
func (s *Store) Entries() ([]Entry, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(files))
	for _, name := range files {
		path := filepath.Join(s.Path, name)
		info, err := s.fs.Lstat(path)
		if err != nil {
			return nil, fmt.Errorf("unable to stat pseudo-store entry %q: %w", path, err)
		}
		btime, err := s.fs.Birthtime(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read creation time of pseudo-store entry %q: %w", path, err)
		}
		entries = append(entries, Entry{
			Layout: s.Layout,
			Path:   path,
			Name:   name,
			Size:   info.Size(),
			Mtime:  info.ModTime(),
			Btime:  btime,
		})
	}
	return entries, nil
}

// Set is the fixed collection of pseudo-stores on one boot partition. It is built once and never
// modified afterwards.
type Set struct {
	stores []*Store
}

// NewSet returns a Set with one Store per layout rooted at bootPartition. If no layouts are given
// DefaultLayouts are used.
func NewSet(fs filesystem.Provider, bootPartition string, layouts ...string) *Set {
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	stores := make([]*Store, 0, len(layouts))
	for _, layout := range layouts {
		stores = append(stores, &Store{
			Layout: layout,
			Path:   filepath.Join(bootPartition, layout),
			fs:     fs,
		})
	}
	return &Set{stores: stores}
}

// Stores returns the stores in layout order.
func (s *Set) Stores() []*Store {
	return s.stores
}

// Store returns the store for a layout.
func (s *Set) Store(layout string) (*Store, bool) {
	for _, store := range s.stores {
		if store.Layout == layout {
			return store, true
		}
	}
	return nil, false
}

// Files returns the files of all stores in layout order.
func (s *Set) Files() ([]string, error) {
	all := []string{}
	for _, store := range s.stores {
		files, err := store.Files()
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	return all, nil
}

// Find returns the path of name in every store that contains it. A file may legitimately be
// present in more than one store.
func (s *Set) Find(name string) ([]string, error) {
	found := []string{}
	for _, store := range s.stores {
		path, ok, err := store.Find(name)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, path)
		}
	}
	return found, nil
}

// Entries returns the entries of all stores in layout order.
func (s *Set) Entries() ([]Entry, error) {
	all := []Entry{}
	for _, store := range s.stores {
		entries, err := store.Entries()
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}
