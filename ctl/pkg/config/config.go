// Package config holds the configuration keys shared by the CLI frontend and the backends, and
// builds the environment (file system, paths, pseudo-stores, logger) a command operates on.
package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Viper keys for global configuration. The CLI binds a persistent flag to each of them.
const (
	RootKey          = "root"
	BootPartitionKey = "boot-partition"
	StateDirKey      = "state-dir"
	StoreDirKey      = "store-dir"
	PseudoStoresKey  = "pseudo-stores"
	ConfigFileKey    = "config-file"
	DebugKey         = "debug"
	RawKey           = "raw"
	ColumnsKey       = "columns"
	PageSizeKey      = "page-size"
	OutputKey        = "output"
	LogLevelKey      = "log-level"
	LogFileKey       = "log-file"
	LogDeveloperKey  = "log-developer"
)

const (
	OutputTable      = "table"
	OutputJSON       = "json"
	OutputJSONPretty = "json-pretty"
)

// Paths are the locations a command inspects. BootPartition and StateDir are absolute and already
// include Root. StoreDir is never prefixed with Root because generation links point at absolute
// store paths.
type Paths struct {
	Root          string   `mapstructure:"root"`
	BootPartition string   `mapstructure:"boot-partition"`
	StateDir      string   `mapstructure:"state-dir"`
	StoreDir      string   `mapstructure:"store-dir"`
	PseudoStores  []string `mapstructure:"pseudo-stores"`
}

// GetPaths decodes the path configuration from viper and resolves it against the root.
func GetPaths() (Paths, error) {
	settings := map[string]any{}
	for _, key := range []string{RootKey, BootPartitionKey, StateDirKey, StoreDirKey, PseudoStoresKey} {
		settings[key] = viper.Get(key)
	}
	return decodePaths(settings)
}

func decodePaths(settings map[string]any) (Paths, error) {
	paths := Paths{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			trimStringHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &paths,
	})
	if err != nil {
		return paths, err
	}
	if err := decoder.Decode(settings); err != nil {
		return paths, fmt.Errorf("invalid path configuration: %w", err)
	}
	return paths.resolve()
}

// trimStringHookFunc strips surrounding whitespace so "kernels, EFI/nixos" works as expected.
func trimStringHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		return strings.TrimSpace(data.(string)), nil
	}
}

func (p Paths) resolve() (Paths, error) {
	if p.Root == "" {
		p.Root = "/"
	}
	if !filepath.IsAbs(p.Root) {
		abs, err := filepath.Abs(p.Root)
		if err != nil {
			return p, fmt.Errorf("unable to resolve root %q: %w", p.Root, err)
		}
		p.Root = abs
	}
	if p.StoreDir == "" {
		return p, fmt.Errorf("%s must not be empty", StoreDirKey)
	}
	if !filepath.IsAbs(p.StoreDir) {
		return p, fmt.Errorf("%s must be an absolute path: %q", StoreDirKey, p.StoreDir)
	}
	p.BootPartition = filepath.Join(p.Root, p.BootPartition)
	p.StateDir = filepath.Join(p.Root, p.StateDir)

	layouts := make([]string, 0, len(p.PseudoStores))
	for _, layout := range p.PseudoStores {
		layout = strings.Trim(strings.TrimSpace(layout), "/")
		if layout != "" {
			layouts = append(layouts, layout)
		}
	}
	p.PseudoStores = layouts
	return p, nil
}
