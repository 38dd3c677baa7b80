// Package usage implements the boot partition usage reports on top of the profile engine.
package usage

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bootusage/bootusage/common/profile"
	"github.com/bootusage/bootusage/ctl/pkg/config"
	"go.uber.org/zap"
)

const DefaultProfile = "system"

type GenerationsCfg struct {
	Profile string
	// Filter is an optional expression, see GenerationFilterHelp.
	Filter string
}

type GenerationResult struct {
	ID          string        `json:"id"`
	Current     bool          `json:"current"`
	Path        string        `json:"path"`
	StorePath   string        `json:"store_path"`
	Date        time.Time     `json:"date"`
	Label       string        `json:"label"`
	BootFiles   []string      `json:"boot_files"`
	Usage       profile.Usage `json:"boot_files_usage"`
	UniqueBytes int64         `json:"unique_bytes"`
	SharedBytes int64         `json:"shared_bytes"`
	// SizeUsage is the "(<unique>+<shared>)" summary of the kernels pseudo-store usage.
	SizeUsage string `json:"size_usage"`
}

// GetGenerations resolves every generation of a profile, oldest first.
func GetGenerations(env *config.Environment, cfg GenerationsCfg) ([]*GenerationResult, error) {
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}
	filter, err := CompileGenerationFilter(cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("invalid generation filter: %w", err)
	}

	p := env.Profile(cfg.Profile)
	current, err := p.CurrentGeneration()
	if err != nil {
		return nil, err
	}
	generations, err := p.Generations()
	if err != nil {
		return nil, err
	}

	results := make([]*GenerationResult, 0, len(generations))
	for _, gen := range generations {
		result, err := newGenerationResult(gen, current.ID())
		if err != nil {
			return nil, err
		}
		keep, err := filter(result.filterInfo())
		if err != nil {
			return nil, err
		}
		if !keep {
			env.Logger.Debug("generation filtered out", zap.String("generation", result.ID))
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// GetGeneration resolves a single generation of a profile.
func GetGeneration(env *config.Environment, profileName string, id string) (*GenerationResult, error) {
	if profileName == "" {
		profileName = DefaultProfile
	}
	p := env.Profile(profileName)
	gen, err := p.Generation(id)
	if err != nil {
		return nil, err
	}
	current, err := p.CurrentGeneration()
	if err != nil {
		return nil, err
	}
	return newGenerationResult(gen, current.ID())
}

func newGenerationResult(gen *profile.Generation, currentID string) (*GenerationResult, error) {
	serialized, err := gen.Serialize()
	if err != nil {
		return nil, err
	}
	unique, shared, err := gen.SizeUsage()
	if err != nil {
		return nil, err
	}
	sizeUsage, err := gen.FormattedSizeUsage()
	if err != nil {
		return nil, err
	}
	return &GenerationResult{
		ID:          gen.ID(),
		Current:     gen.ID() == currentID,
		Path:        serialized.Path,
		StorePath:   serialized.StorePath,
		Date:        serialized.Date,
		Label:       serialized.Label,
		BootFiles:   serialized.BootFiles,
		Usage:       serialized.BootFilesUsage,
		UniqueBytes: unique,
		SharedBytes: shared,
		SizeUsage:   sizeUsage,
	}, nil
}

func (r *GenerationResult) filterInfo() GenerationInfo {
	// Ids are always digits, Generations() only accepts links matching -<N>-link.
	id, _ := strconv.Atoi(r.ID)
	return GenerationInfo{
		ID:      id,
		Label:   r.Label,
		Current: r.Current,
		Date:    r.Date,
		Files:   len(r.BootFiles),
		Unique:  r.UniqueBytes,
		Shared:  r.SharedBytes,
	}
}

// Serialize returns the profile snapshot used for JSON output.
func Serialize(env *config.Environment, profileName string) (*profile.SerializedProfile, error) {
	if profileName == "" {
		profileName = DefaultProfile
	}
	return env.Profile(profileName).Serialize()
}
