package bootspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDocument = `{
  "org.nixos.bootspec.v1": {
    "init": "/nix/store/aaa-nixos-system/init",
    "initrd": "/nix/store/bbb-initrd-linux-6.6/initrd",
    "kernel": "/nix/store/ccc-linux-6.6/bzImage",
    "kernelParams": ["loglevel=4"],
    "label": "NixOS 24.05 (Linux 6.6)",
    "system": "x86_64-linux",
    "toplevel": "/nix/store/aaa-nixos-system"
  },
  "org.nixos.specialisation.v1": {
    "zen": {
      "org.nixos.bootspec.v1": {
        "initrd": "/nix/store/ddd-initrd-linux-zen/initrd",
        "kernel": "/nix/store/eee-linux-zen/bzImage",
        "label": "NixOS zen"
      }
    },
    "lts": {
      "org.nixos.bootspec.v1": {
        "initrd": "/nix/store/fff-initrd-linux-lts/initrd",
        "kernel": "/nix/store/ccc-linux-6.6/bzImage",
        "label": "NixOS lts"
      }
    }
  }
}`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(fullDocument))
	require.NoError(t, err)
	require.NotNil(t, doc.V1)

	assert.Equal(t, "NixOS 24.05 (Linux 6.6)", doc.Label())
	assert.Equal(t, []string{"loglevel=4"}, doc.V1.KernelParams)
	assert.Equal(t, []string{"lts", "zen"}, doc.SpecialisationNames())
	assert.Equal(t, []string{
		"/nix/store/fff-initrd-linux-lts/initrd",
		"/nix/store/ccc-linux-6.6/bzImage",
		"/nix/store/ddd-initrd-linux-zen/initrd",
		"/nix/store/eee-linux-zen/bzImage",
		"/nix/store/bbb-initrd-linux-6.6/initrd",
		"/nix/store/ccc-linux-6.6/bzImage",
	}, doc.StorePaths())
}

func TestParseMissingKeys(t *testing.T) {
	doc, err := Parse([]byte(`{"org.nixos.bootspec.v1": {"kernel": "/nix/store/abc-kernel"}}`))
	require.NoError(t, err)
	assert.Equal(t, "", doc.Label())
	assert.Empty(t, doc.SpecialisationNames())
	assert.Equal(t, []string{"/nix/store/abc-kernel"}, doc.StorePaths())

	doc, err = Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, doc.V1)
	assert.Equal(t, "", doc.Label())
	assert.Empty(t, doc.StorePaths())

	// Specialisations without a nested bootspec contribute nothing.
	doc, err = Parse([]byte(`{"org.nixos.specialisation.v1": {"empty": {}}}`))
	require.NoError(t, err)
	assert.Empty(t, doc.StorePaths())
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{
		`{"org.nixos.bootspec.v1": `,
		`not json`,
		`[]`,
		`{"org.nixos.bootspec.v1": {"label": 42}}`,
	} {
		_, err := Parse([]byte(input))
		assert.ErrorIs(t, err, ErrMalformed, "input: %s", input)
	}
}

func TestNilDocument(t *testing.T) {
	var doc *Document
	assert.Equal(t, "", doc.Label())
	assert.Nil(t, doc.StorePaths())
}
