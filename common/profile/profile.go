// Package profile resolves the boot files required by each generation of a Nix profile and
// attributes boot partition usage between generations. Everything is computed lazily on first
// access and cached for the lifetime of the object; nothing is ever refreshed. Profiles and
// generations are not safe for concurrent use.
package profile

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/bootusage/bootusage/common/filesystem"
	"go.uber.org/zap"
)

const (
	DefaultStoreDir = "/nix/store"
	profilesDir     = "profiles"
)

var linkIDRegex = regexp.MustCompile(`-(\d+)-link$`)

// ParseGenerationID extracts the generation number from a path ending in -<N>-link.
func ParseGenerationID(path string) (string, error) {
	match := linkIDRegex.FindStringSubmatch(path)
	if match == nil {
		return "", fmt.Errorf("%w: %q", ErrPatternMismatch, path)
	}
	return match[1], nil
}

// Config describes where profiles, the store and the boot partition are found.
type Config struct {
	FS filesystem.Provider
	// StateDir is the absolute Nix state directory; profiles live in <StateDir>/profiles.
	StateDir string
	// StoreDir is the store prefix stripped from store paths to build pseudo-store file names.
	// Defaults to /nix/store.
	StoreDir string
	// BootPartition is the absolute path of the mounted boot partition.
	BootPartition string
	Logger        *zap.Logger
}

// Profile is a named family of generation links sharing the <path>-<N>-link prefix.
type Profile struct {
	Name string
	// Path is the profile symlink pointing at the current generation link.
	Path string
	cfg  Config
	log  *zap.Logger

	generationsCached bool
	generations       []*Generation
	byID              map[string]*Generation
}

// New returns the profile with the given name. No file system access happens until the first
// accessor is called.
func New(name string, cfg Config) *Profile {
	if cfg.StoreDir == "" {
		cfg.StoreDir = DefaultStoreDir
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Profile{
		Name: name,
		Path: filepath.Join(cfg.StateDir, profilesDir, name),
		cfg:  cfg,
		log:  cfg.Logger.With(zap.String("profile", name)),
	}
}

// Generations returns every generation of the profile ordered by ascending numeric id. The
// result is computed once.
func (p *Profile) Generations() ([]*Generation, error) {
	if p.generationsCached {
		return p.generations, nil
	}

	pattern := filepath.Join(filepath.Dir(p.Path), filesystem.EscapeGlob(filepath.Base(p.Path))+"-*-link")
	paths, err := p.cfg.FS.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("unable to list generations of profile %q: %w", p.Name, err)
	}

	// Only links named exactly <profile>-<N>-link belong to this profile. Without anchoring on
	// the profile name "system-*-link" would also pick up generations of a "system-foo" profile.
	ownLink := regexp.MustCompile(`^` + regexp.QuoteMeta(filepath.Base(p.Path)) + `-(\d+)-link$`)
	type numbered struct {
		num uint64
		gen *Generation
	}
	found := []numbered{}
	for _, path := range paths {
		match := ownLink.FindStringSubmatch(filepath.Base(path))
		if match == nil {
			p.log.Debug("ignoring link that does not belong to profile", zap.String("path", path))
			continue
		}
		num, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse generation number of %q: %w", path, err)
		}
		found = append(found, numbered{num: num, gen: newGeneration(p, path, match[1])})
	}
	slices.SortFunc(found, func(a, b numbered) int {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	})

	p.generations = make([]*Generation, 0, len(found))
	p.byID = make(map[string]*Generation, len(found))
	for _, n := range found {
		p.generations = append(p.generations, n.gen)
		p.byID[n.gen.ID()] = n.gen
	}
	p.generationsCached = true
	p.log.Debug("discovered generations", zap.Int("count", len(p.generations)))
	return p.generations, nil
}

// Generation returns the generation with the given id.
func (p *Profile) Generation(id string) (*Generation, error) {
	if _, err := p.Generations(); err != nil {
		return nil, err
	}
	gen, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s generation %s", ErrGenerationNotFound, p.Name, id)
	}
	return gen, nil
}

// CurrentGeneration follows the profile symlink to determine the active generation.
func (p *Profile) CurrentGeneration() (*Generation, error) {
	target, err := p.cfg.FS.Readlink(p.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve current generation of profile %q: %w", p.Name, err)
	}
	id, err := ParseGenerationID(target)
	if err != nil {
		return nil, err
	}
	return p.Generation(id)
}

// BootFiles lists every boot file needed by any generation, sorted and without duplicates.
func (p *Profile) BootFiles() ([]string, error) {
	generations, err := p.Generations()
	if err != nil {
		return nil, err
	}
	all := []string{}
	for _, gen := range generations {
		files, err := gen.BootFiles()
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	slices.Sort(all)
	return slices.Compact(all), nil
}
