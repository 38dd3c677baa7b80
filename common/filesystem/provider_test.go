package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoProviderOnOsFs(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	require.NoError(t, os.WriteFile(target, []byte("0123456789"), 0644))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")))

	p := NewOsProvider()

	dest, err := p.Readlink(filepath.Join(root, "link"))
	require.NoError(t, err)
	assert.Equal(t, target, dest)

	_, err = p.Readlink(target)
	assert.Error(t, err, "reading a regular file as a link should fail")

	exists, err := p.Exists(filepath.Join(root, "link"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = p.Exists(filepath.Join(root, "dangling"))
	require.NoError(t, err)
	assert.False(t, exists, "dangling symlinks should not exist")

	size, err := p.FileSize(filepath.Join(root, "link"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	size, err = p.FileSize(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	info, err := p.Lstat(filepath.Join(root, "link"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	btime, err := p.Birthtime(filepath.Join(root, "link"))
	require.NoError(t, err)
	assert.False(t, btime.IsZero())
	assert.WithinDuration(t, time.Now(), btime, time.Hour)

	_, err = p.Birthtime(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestGlob(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"system-1-link", "system-10-link", "system-2-link", "system", "other-3-link", "system-x-link"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/profiles", name), nil, 0644))
	}
	p := NewAferoProvider(fs)

	matches, err := p.Glob("/profiles/system-*-link")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/profiles/system-1-link",
		"/profiles/system-10-link",
		"/profiles/system-2-link",
		"/profiles/system-x-link",
	}, matches)

	matches, err = p.Glob("/does/not/exist/system-*-link")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = p.Glob("/prof*/system-*-link")
	assert.Error(t, err)

	_, err = p.Glob("/profiles/system-[-link")
	assert.Error(t, err)
}

func TestEscapeGlob(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"a[1-1-link", "a{x,y}-2-link", "ax-3-link", "a*-4-link", "ab-5-link", `a\-6-link`} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/profiles", name), nil, 0644))
	}
	p := NewAferoProvider(fs)

	tests := map[string][]string{
		"a[1":    {"/profiles/a[1-1-link"},
		"a{x,y}": {"/profiles/a{x,y}-2-link"},
		"a*":     {"/profiles/a*-4-link"},
		`a\`:     {`/profiles/a\-6-link`},
	}
	for name, want := range tests {
		matches, err := p.Glob("/profiles/" + EscapeGlob(name) + "-*-link")
		require.NoError(t, err, name)
		assert.Equal(t, want, matches, name)
	}
	assert.Equal(t, `a\[1\]\*\?\{b\}\\`, EscapeGlob(`a[1]*?{b}\`))
}

func TestIsGlobPattern(t *testing.T) {
	assert.True(t, IsGlobPattern("system-*-link"))
	assert.True(t, IsGlobPattern("file?"))
	assert.True(t, IsGlobPattern("[ab]"))
	assert.False(t, IsGlobPattern("/nix/var/nix/profiles/system"))
}
