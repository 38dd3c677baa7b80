// Package bootspec models the versioned boot.json document NixOS writes into each system
// generation (RFC 0125). Only the fields needed to resolve boot files are given typed accessors;
// the remaining v1 fields are kept so the document can be reported as-is.
package bootspec

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

const (
	FileName          = "boot.json"
	V1Key             = "org.nixos.bootspec.v1"
	SpecialisationKey = "org.nixos.specialisation.v1"
)

var ErrMalformed = errors.New("malformed bootspec document")

// Document is the top level of a boot.json file.
type Document struct {
	V1              *V1                       `json:"org.nixos.bootspec.v1,omitempty"`
	Specialisations map[string]Specialisation `json:"org.nixos.specialisation.v1,omitempty"`
}

// V1 is the org.nixos.bootspec.v1 record describing how to boot one system.
type V1 struct {
	Label        string   `json:"label"`
	Kernel       string   `json:"kernel"`
	Initrd       string   `json:"initrd,omitempty"`
	Init         string   `json:"init,omitempty"`
	System       string   `json:"system,omitempty"`
	KernelParams []string `json:"kernelParams,omitempty"`
	Toplevel     string   `json:"toplevel,omitempty"`
}

// Specialisation is a named variant of the system with its own nested bootspec.
type Specialisation struct {
	V1 *V1 `json:"org.nixos.bootspec.v1,omitempty"`
}

// Parse decodes a boot.json document. Any decoding failure wraps ErrMalformed.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return doc, nil
}

// Label returns the top level v1 label or an empty string.
func (d *Document) Label() string {
	if d == nil || d.V1 == nil {
		return ""
	}
	return d.V1.Label
}

// StorePaths returns the raw kernel and initrd references of every specialisation followed by
// the top level ones. Specialisations are visited in name order. Empty references are omitted.
func (d *Document) StorePaths() []string {
	if d == nil {
		return nil
	}
	paths := []string{}
	for _, name := range d.SpecialisationNames() {
		paths = d.Specialisations[name].V1.appendBootFiles(paths)
	}
	return d.V1.appendBootFiles(paths)
}

// SpecialisationNames returns the specialisation names sorted.
func (d *Document) SpecialisationNames() []string {
	names := make([]string, 0, len(d.Specialisations))
	for name := range d.Specialisations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (v *V1) appendBootFiles(paths []string) []string {
	if v == nil {
		return paths
	}
	for _, p := range []string{v.Initrd, v.Kernel} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
