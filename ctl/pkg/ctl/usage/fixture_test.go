package usage

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/bootusage/bootusage/common/pseudostore"
	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/stretchr/testify/require"
)

const (
	k1File = "k1hash-linux-bzImage"
	k2File = "k2hash-linux-zen-bzImage"
	i1File = "i1hash-initrd-initrd"
	i2File = "i2hash-initrd-initrd"
)

// newTestEnvironment builds an installation with three generations of "system", the last one
// current:
//
//	1: i1, k1
//	2: i2, k1 (labelled "Second")
//	3: i2, k2
//
// The kernels pseudo-store holds every boot file plus an orphan, EFI/nixos holds a copy of k2 and
// an orphan.
func newTestEnvironment(t *testing.T) *config.Environment {
	t.Helper()
	root := t.TempDir()
	paths := config.Paths{
		Root:          root,
		BootPartition: filepath.Join(root, "boot"),
		StateDir:      filepath.Join(root, "nix", "var", "nix"),
		StoreDir:      filepath.Join(root, "nix", "store"),
		PseudoStores:  pseudostore.DefaultLayouts,
	}
	profiles := filepath.Join(paths.StateDir, "profiles")
	require.NoError(t, os.MkdirAll(profiles, 0755))

	storeFile := func(rel string) string {
		path := filepath.Join(paths.StoreDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(rel), 0644))
		return path
	}
	k1, k2 := storeFile("k1hash-linux/bzImage"), storeFile("k2hash-linux-zen/bzImage")
	i1, i2 := storeFile("i1hash-initrd/initrd"), storeFile("i2hash-initrd/initrd")

	generation := func(id int, system string, kernel string, initrd string, bootJSON string) {
		dir := filepath.Join(paths.StoreDir, system)
		require.NoError(t, os.MkdirAll(dir, 0755))
		if kernel != "" {
			require.NoError(t, os.Symlink(kernel, filepath.Join(dir, "kernel")))
		}
		if initrd != "" {
			require.NoError(t, os.Symlink(initrd, filepath.Join(dir, "initrd")))
		}
		if bootJSON != "" {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "boot.json"), []byte(bootJSON), 0644))
		}
		require.NoError(t, os.Symlink(dir, filepath.Join(profiles, "system-"+strconv.Itoa(id)+"-link")))
	}
	generation(1, "aaa-nixos-system-first", k1, i1, "")
	generation(2, "bbb-nixos-system-second", "", "", `{
		"org.nixos.bootspec.v1": {"label": "Second", "kernel": "`+k1+`", "initrd": "`+i2+`"}
	}`)
	generation(3, "ccc-nixos-system-third", k2, i2, "")
	require.NoError(t, os.Symlink("system-3-link", filepath.Join(profiles, "system")))

	bootFile := func(layout string, name string, size int) {
		dir := filepath.Join(paths.BootPartition, layout)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644))
	}
	bootFile("kernels", k1File, 2048)
	bootFile("kernels", k2File, 4096)
	bootFile("kernels", i1File, 1024)
	bootFile("kernels", i2File, 512)
	bootFile("kernels", "old-linux-bzImage", 100)
	bootFile("EFI/nixos", k2File, 4096)
	bootFile("EFI/nixos", "stale-initrd", 300)

	return config.NewEnvironment(paths, nil, nil)
}
