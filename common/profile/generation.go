package profile

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/bootusage/bootusage/common/bootspec"
	"github.com/bootusage/bootusage/common/pseudostore"
	"github.com/bootusage/bootusage/common/size"
	"go.uber.org/zap"
)

var storeHashPrefix = regexp.MustCompile(`^[^-]+-`)

// Generation is one immutable snapshot of a profile, identified by its numbered link.
type Generation struct {
	Path string
	id   string
	// profile is only used to enumerate sibling generations.
	profile *Profile
	log     *zap.Logger

	dateCached bool
	date       time.Time

	storePathCached bool
	storePath       string

	bootspecCached bool
	bootspec       *bootspec.Document

	bootFilesCached bool
	bootFiles       []string
}

// Usage splits the boot files of a generation into files no other generation of the profile
// references and files that are shared, mapped to the ids of the generations sharing them.
type Usage struct {
	Unique []string            `json:"unique"`
	Shared map[string][]string `json:"shared"`
}

func newGeneration(p *Profile, path string, id string) *Generation {
	return &Generation{
		Path:    path,
		id:      id,
		profile: p,
		log:     p.log.With(zap.String("generation", id)),
	}
}

func (g *Generation) ID() string {
	return g.id
}

func (g *Generation) Profile() *Profile {
	return g.profile
}

// Date is the creation time of the generation link.
func (g *Generation) Date() (time.Time, error) {
	if g.dateCached {
		return g.date, nil
	}
	date, err := g.profile.cfg.FS.Birthtime(g.Path)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to determine date of generation %s: %w", g.id, err)
	}
	g.date, g.dateCached = date, true
	return g.date, nil
}

// StorePath is the store path of the system closure the generation link points to.
func (g *Generation) StorePath() (string, error) {
	if g.storePathCached {
		return g.storePath, nil
	}
	target, err := g.profile.cfg.FS.Readlink(g.Path)
	if err != nil {
		return "", fmt.Errorf("unable to resolve store path of generation %s: %w", g.id, err)
	}
	g.storePath, g.storePathCached = target, true
	return g.storePath, nil
}

// Bootspec returns the parsed boot.json of the generation or nil if the generation has none.
// The result, including its absence, is cached. A boot.json that cannot be parsed is an error.
func (g *Generation) Bootspec() (*bootspec.Document, error) {
	if g.bootspecCached {
		return g.bootspec, nil
	}
	fs := g.profile.cfg.FS
	file := filepath.Join(g.Path, bootspec.FileName)
	exists, err := fs.Exists(file)
	if err != nil {
		return nil, fmt.Errorf("unable to check for %s of generation %s: %w", bootspec.FileName, g.id, err)
	}
	if exists {
		data, err := fs.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("unable to read %q: %w", file, err)
		}
		doc, err := bootspec.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedManifest, file, err)
		}
		g.bootspec = doc
	} else {
		g.log.Debug("generation has no bootspec, falling back to kernel and initrd links")
	}
	g.bootspecCached = true
	return g.bootspec, nil
}

// Label is the bootspec label, or the name of the store path without its hash.
func (g *Generation) Label() (string, error) {
	spec, err := g.Bootspec()
	if err != nil {
		return "", err
	}
	if label := spec.Label(); label != "" {
		return label, nil
	}
	storePath, err := g.StorePath()
	if err != nil {
		return "", err
	}
	return storeHashPrefix.ReplaceAllString(filepath.Base(storePath), ""), nil
}

// BootFiles returns the pseudo-store file names this generation needs on the boot partition,
// sorted and without duplicates. They are gathered from the bootspec (specialisations first, then
// the top level system) and from the kernel and initrd links of the generation if present.
func (g *Generation) BootFiles() ([]string, error) {
	if g.bootFilesCached {
		return g.bootFiles, nil
	}

	spec, err := g.Bootspec()
	if err != nil {
		return nil, err
	}
	storePaths := spec.StorePaths()

	fs := g.profile.cfg.FS
	for _, name := range []string{"initrd", "kernel"} {
		needle := filepath.Join(g.Path, name)
		exists, err := fs.Exists(needle)
		if err != nil {
			return nil, fmt.Errorf("unable to check for %s of generation %s: %w", name, g.id, err)
		}
		if !exists {
			continue
		}
		target, err := fs.Readlink(needle)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve %s of generation %s: %w", name, g.id, err)
		}
		storePaths = append(storePaths, target)
	}

	files := make([]string, 0, len(storePaths))
	for _, storePath := range storePaths {
		if storePath == "" {
			continue
		}
		files = append(files, pseudostore.FileName(g.profile.cfg.StoreDir, storePath))
	}
	slices.Sort(files)
	g.bootFiles, g.bootFilesCached = slices.Compact(files), true
	return g.bootFiles, nil
}

// BootFilesUsage checks each boot file against every other generation of the profile.
func (g *Generation) BootFilesUsage() (Usage, error) {
	usage := Usage{Unique: []string{}, Shared: map[string][]string{}}

	files, err := g.BootFiles()
	if err != nil {
		return usage, err
	}
	siblings, err := g.profile.Generations()
	if err != nil {
		return usage, err
	}

	for _, file := range files {
		for _, other := range siblings {
			if other.ID() == g.ID() {
				continue
			}
			otherFiles, err := other.BootFiles()
			if err != nil {
				return usage, err
			}
			if _, found := slices.BinarySearch(otherFiles, file); found {
				usage.Shared[file] = append(usage.Shared[file], other.ID())
			}
		}
		if _, shared := usage.Shared[file]; !shared {
			usage.Unique = append(usage.Unique, file)
		}
	}
	return usage, nil
}

// SizeUsage returns the bytes used by the unique and the shared boot files of the generation.
// Sizes are only looked up in the kernels pseudo-store; missing files count as zero.
func (g *Generation) SizeUsage() (unique int64, shared int64, err error) {
	usage, err := g.BootFilesUsage()
	if err != nil {
		return 0, 0, err
	}
	sizeOf := func(file string) (int64, error) {
		path := filepath.Join(g.profile.cfg.BootPartition, pseudostore.KernelsLayout, file)
		n, err := g.profile.cfg.FS.FileSize(path)
		if err != nil {
			return 0, fmt.Errorf("unable to determine size of %q: %w", path, err)
		}
		return n, nil
	}

	for _, file := range usage.Unique {
		n, err := sizeOf(file)
		if err != nil {
			return 0, 0, err
		}
		unique += n
	}
	for file := range usage.Shared {
		n, err := sizeOf(file)
		if err != nil {
			return 0, 0, err
		}
		shared += n
	}
	return unique, shared, nil
}

// FormattedSizeUsage renders SizeUsage as "(<unique>+<shared>)".
func (g *Generation) FormattedSizeUsage() (string, error) {
	unique, shared, err := g.SizeUsage()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s+%s)", size.Format(unique), size.Format(shared)), nil
}

// IsCurrent reports if the profile symlink points at this generation.
func (g *Generation) IsCurrent() (bool, error) {
	current, err := g.profile.CurrentGeneration()
	if err != nil {
		if errors.Is(err, ErrGenerationNotFound) {
			return false, nil
		}
		return false, err
	}
	return current.ID() == g.ID(), nil
}
