package usage

import (
	"fmt"

	"github.com/bootusage/bootusage/common/pseudostore"
	"github.com/bootusage/bootusage/ctl/pkg/config"
	"go.uber.org/zap"
)

type FilesCfg struct {
	Profile string
	// Orphaned only returns files no generation of the profile references.
	Orphaned bool
	Filter   string
}

type FileResult struct {
	pseudostore.Entry
	// Generations lists the ids of the generations referencing the file, in profile order.
	Generations []string
}

func (f *FileResult) Refs() int {
	return len(f.Generations)
}

// GetFiles lists the content of every pseudo-store and which generations of the profile
// reference each file.
func GetFiles(env *config.Environment, cfg FilesCfg) ([]*FileResult, error) {
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}
	var filter pseudostore.FileInfoFilter
	if cfg.Filter != "" {
		var err error
		filter, err = pseudostore.CompileFilter(cfg.Filter)
		if err != nil {
			return nil, fmt.Errorf("invalid file filter: %w", err)
		}
	}

	refs, err := referencingGenerations(env, cfg.Profile)
	if err != nil {
		return nil, err
	}
	entries, err := env.PseudoStores.Entries()
	if err != nil {
		return nil, err
	}

	results := make([]*FileResult, 0, len(entries))
	for _, entry := range entries {
		result := &FileResult{Entry: entry, Generations: refs[entry.Name]}
		if result.Generations == nil {
			result.Generations = []string{}
		}
		if cfg.Orphaned && result.Refs() != 0 {
			continue
		}
		keep, err := pseudostore.ApplyFilter(entry.FileInfo(result.Refs()), filter)
		if err != nil {
			return nil, err
		}
		if !keep {
			env.Logger.Debug("file filtered out", zap.String("path", entry.Path))
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// referencingGenerations maps each boot file name to the generations that need it.
func referencingGenerations(env *config.Environment, profileName string) (map[string][]string, error) {
	generations, err := env.Profile(profileName).Generations()
	if err != nil {
		return nil, err
	}
	refs := make(map[string][]string)
	for _, gen := range generations {
		files, err := gen.BootFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			refs[f] = append(refs[f], gen.ID())
		}
	}
	return refs, nil
}
