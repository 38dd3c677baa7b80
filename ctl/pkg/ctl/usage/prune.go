package usage

import (
	"time"

	"github.com/bootusage/bootusage/ctl/pkg/config"
)

type PruneCandidate struct {
	ID    string
	Date  time.Time
	Label string
	// UniqueBytes is what removing only this generation frees in the kernels pseudo-store.
	UniqueBytes int64
	// CumulativeBytes is what removing this and every older candidate frees across all
	// pseudo-stores.
	CumulativeBytes int64
	// Files are the boot files that become unreferenced once this and every older candidate is
	// removed.
	Files []string
}

// GetPruneCandidates lists the generations that could be removed, oldest first. The current
// generation is never a candidate. Nothing is removed.
func GetPruneCandidates(env *config.Environment, profileName string) ([]*PruneCandidate, error) {
	if profileName == "" {
		profileName = DefaultProfile
	}
	p := env.Profile(profileName)
	current, err := p.CurrentGeneration()
	if err != nil {
		return nil, err
	}
	generations, err := p.Generations()
	if err != nil {
		return nil, err
	}

	// Remaining references per boot file, decremented as candidates are removed in order.
	remaining := make(map[string]int)
	for _, gen := range generations {
		files, err := gen.BootFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			remaining[f]++
		}
	}

	candidates := []*PruneCandidate{}
	var cumulative int64
	freed := []string{}
	for _, gen := range generations {
		if gen.ID() == current.ID() {
			continue
		}
		files, err := gen.BootFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			remaining[f]--
			if remaining[f] != 0 {
				continue
			}
			n, err := fileBytes(env, f)
			if err != nil {
				return nil, err
			}
			cumulative += n
			freed = append(freed, f)
		}
		unique, _, err := gen.SizeUsage()
		if err != nil {
			return nil, err
		}
		date, err := gen.Date()
		if err != nil {
			return nil, err
		}
		label, err := gen.Label()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, &PruneCandidate{
			ID:              gen.ID(),
			Date:            date,
			Label:           label,
			UniqueBytes:     unique,
			CumulativeBytes: cumulative,
			Files:           append([]string(nil), freed...),
		})
	}
	return candidates, nil
}

// fileBytes sums the size of every copy of a boot file over all pseudo-stores.
func fileBytes(env *config.Environment, name string) (int64, error) {
	paths, err := env.PseudoStores.Find(name)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, path := range paths {
		n, err := env.FS.FileSize(path)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
