package profile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/bootusage/bootusage/common/filesystem"
	"github.com/stretchr/testify/require"
)

// fixture builds a miniature Nix installation in a temporary directory: a store, a state
// directory with profile links and a boot partition.
type fixture struct {
	t     *testing.T
	root  string
	store string
	state string
	boot  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		t:     t,
		root:  root,
		store: filepath.Join(root, "nix", "store"),
		state: filepath.Join(root, "nix", "var", "nix"),
		boot:  filepath.Join(root, "boot"),
	}
	for _, dir := range []string{f.store, filepath.Join(f.state, "profiles"), f.boot} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	return f
}

func (f *fixture) config(fs filesystem.Provider) Config {
	if fs == nil {
		fs = filesystem.NewOsProvider()
	}
	return Config{
		FS:            fs,
		StateDir:      f.state,
		StoreDir:      f.store,
		BootPartition: f.boot,
	}
}

// storeFile creates a file at <store>/<rel> and returns its absolute path.
func (f *fixture) storeFile(rel string) string {
	f.t.Helper()
	path := filepath.Join(f.store, rel)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(f.t, os.WriteFile(path, []byte(rel), 0644))
	return path
}

// system creates a system closure directory in the store with optional kernel/initrd links and
// boot.json, returning its absolute path.
func (f *fixture) system(name string, kernel string, initrd string, bootJSON string) string {
	f.t.Helper()
	dir := filepath.Join(f.store, name)
	require.NoError(f.t, os.MkdirAll(dir, 0755))
	if kernel != "" {
		require.NoError(f.t, os.Symlink(kernel, filepath.Join(dir, "kernel")))
	}
	if initrd != "" {
		require.NoError(f.t, os.Symlink(initrd, filepath.Join(dir, "initrd")))
	}
	if bootJSON != "" {
		require.NoError(f.t, os.WriteFile(filepath.Join(dir, "boot.json"), []byte(bootJSON), 0644))
	}
	return dir
}

// generation links <profile>-<id>-link to the system.
func (f *fixture) generation(profile string, id int, system string) string {
	f.t.Helper()
	link := filepath.Join(f.state, "profiles", profile+"-"+strconv.Itoa(id)+"-link")
	require.NoError(f.t, os.Symlink(system, link))
	return link
}

// current points the profile symlink at a generation link using a relative target like Nix does.
func (f *fixture) current(profile string, id int) {
	f.t.Helper()
	link := filepath.Join(f.state, "profiles", profile)
	_ = os.Remove(link)
	require.NoError(f.t, os.Symlink(profile+"-"+strconv.Itoa(id)+"-link", link))
}

// bootFile creates a pseudo-store file of the given size on the boot partition.
func (f *fixture) bootFile(layout string, name string, size int) {
	f.t.Helper()
	dir := filepath.Join(f.boot, layout)
	require.NoError(f.t, os.MkdirAll(dir, 0755))
	require.NoError(f.t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644))
}

// countingProvider counts every call made to the wrapped provider.
type countingProvider struct {
	filesystem.Provider
	calls int
}

func (c *countingProvider) Glob(pattern string) ([]string, error) {
	c.calls++
	return c.Provider.Glob(pattern)
}

func (c *countingProvider) ReadDir(path string) ([]os.FileInfo, error) {
	c.calls++
	return c.Provider.ReadDir(path)
}

func (c *countingProvider) Readlink(path string) (string, error) {
	c.calls++
	return c.Provider.Readlink(path)
}

func (c *countingProvider) Exists(path string) (bool, error) {
	c.calls++
	return c.Provider.Exists(path)
}

func (c *countingProvider) ReadFile(path string) ([]byte, error) {
	c.calls++
	return c.Provider.ReadFile(path)
}

func (c *countingProvider) FileSize(path string) (int64, error) {
	c.calls++
	return c.Provider.FileSize(path)
}

func (c *countingProvider) Lstat(path string) (os.FileInfo, error) {
	c.calls++
	return c.Provider.Lstat(path)
}

func (c *countingProvider) Birthtime(path string) (time.Time, error) {
	c.calls++
	return c.Provider.Birthtime(path)
}

const (
	k1 = "k1hash-linux-6.6/bzImage"
	k2 = "k2hash-linux-zen/bzImage"
	i1 = "i1hash-initrd/initrd"
	i2 = "i2hash-initrd/initrd"
	i3 = "i3hash-initrd/initrd"

	k1File = "k1hash-linux-6.6-bzImage"
	k2File = "k2hash-linux-zen-bzImage"
	i1File = "i1hash-initrd-initrd"
	i2File = "i2hash-initrd-initrd"
	i3File = "i3hash-initrd-initrd"
)

// standardProfile creates a "system" profile with generations 1, 2, 9 and 10 (current):
//
//	1:  kernel/initrd links only        -> i1, k1
//	2:  bootspec only, labelled         -> i2, k1
//	9:  kernel/initrd links only        -> i1, k2
//	10: bootspec with a specialisation  -> i2, i3, k1, k2 (plus a duplicate kernel link to k1)
//
// It also adds noise links that must not be picked up as generations of "system".
func standardProfile(t *testing.T) *fixture {
	f := newFixture(t)
	k1Path, k2Path := f.storeFile(k1), f.storeFile(k2)
	i1Path, i2Path, i3Path := f.storeFile(i1), f.storeFile(i2), f.storeFile(i3)

	f.generation("system", 1, f.system("aaa-nixos-system-host-23.11", k1Path, i1Path, ""))
	f.generation("system", 2, f.system("bbb-nixos-system-host-24.05", "", "", `{
		"org.nixos.bootspec.v1": {"label": "Gen Two", "kernel": "`+k1Path+`", "initrd": "`+i2Path+`"}
	}`))
	f.generation("system", 9, f.system("ccc-nixos-system-host-24.05", k2Path, i1Path, ""))
	f.generation("system", 10, f.system("ddd-nixos-system-host-24.11", k1Path, "", `{
		"org.nixos.bootspec.v1": {"kernel": "`+k1Path+`", "initrd": "`+i3Path+`"},
		"org.nixos.specialisation.v1": {
			"zen": {"org.nixos.bootspec.v1": {"label": "zen", "kernel": "`+k2Path+`", "initrd": "`+i2Path+`"}}
		}
	}`))
	f.current("system", 10)

	// Generations of other profiles sharing the prefix.
	f.generation("system-foo", 3, f.system("eee-nixos-system-foo", k1Path, i1Path, ""))
	require.NoError(t, os.Symlink(f.store, filepath.Join(f.state, "profiles", "system-x-link")))

	f.bootFile("kernels", k1File, 2048)
	f.bootFile("kernels", i2File, 1024)
	f.bootFile("kernels", i3File, 3000)
	f.bootFile("EFI/nixos", k2File, 4096)
	return f
}
