package profile

import (
	"bytes"
	"encoding/json"
	"time"
)

// SerializedGeneration is the external view of a generation.
type SerializedGeneration struct {
	Profile        string    `json:"profile"`
	Path           string    `json:"path"`
	StorePath      string    `json:"store_path"`
	Date           time.Time `json:"date"`
	Label          string    `json:"label"`
	BootFiles      []string  `json:"boot_files"`
	BootFilesUsage Usage     `json:"boot_files_usage"`
}

// SerializedProfile is the external view of a profile.
type SerializedProfile struct {
	Name        string             `json:"name"`
	Path        string             `json:"path"`
	CurrentID   string             `json:"current_id"`
	Generations OrderedGenerations `json:"generations"`
}

// OrderedGenerations maps generation ids to serialized generations while keeping the numeric id
// order of the profile, including when encoded as a JSON object.
type OrderedGenerations []IDGeneration

type IDGeneration struct {
	ID         string
	Generation *SerializedGeneration
}

// Get returns the serialized generation with the given id.
func (o OrderedGenerations) Get(id string) (*SerializedGeneration, bool) {
	for _, g := range o {
		if g.ID == id {
			return g.Generation, true
		}
	}
	return nil, false
}

func (o OrderedGenerations) IDs() []string {
	ids := make([]string, 0, len(o))
	for _, g := range o {
		ids = append(ids, g.ID)
	}
	return ids
}

func (o OrderedGenerations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.ID)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(g.Generation)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Serialize snapshots every field of the generation.
func (g *Generation) Serialize() (*SerializedGeneration, error) {
	storePath, err := g.StorePath()
	if err != nil {
		return nil, err
	}
	date, err := g.Date()
	if err != nil {
		return nil, err
	}
	label, err := g.Label()
	if err != nil {
		return nil, err
	}
	bootFiles, err := g.BootFiles()
	if err != nil {
		return nil, err
	}
	usage, err := g.BootFilesUsage()
	if err != nil {
		return nil, err
	}
	return &SerializedGeneration{
		Profile:        g.profile.Path,
		Path:           g.Path,
		StorePath:      storePath,
		Date:           date,
		Label:          label,
		BootFiles:      bootFiles,
		BootFilesUsage: usage,
	}, nil
}

// Serialize snapshots the profile and all of its generations.
func (p *Profile) Serialize() (*SerializedProfile, error) {
	current, err := p.CurrentGeneration()
	if err != nil {
		return nil, err
	}
	generations, err := p.Generations()
	if err != nil {
		return nil, err
	}
	serialized := make(OrderedGenerations, 0, len(generations))
	for _, gen := range generations {
		s, err := gen.Serialize()
		if err != nil {
			return nil, err
		}
		serialized = append(serialized, IDGeneration{ID: gen.ID(), Generation: s})
	}
	return &SerializedProfile{
		Name:        p.Name,
		Path:        p.Path,
		CurrentID:   current.ID(),
		Generations: serialized,
	}, nil
}
