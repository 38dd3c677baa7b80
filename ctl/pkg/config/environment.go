package config

import (
	"fmt"

	"github.com/bootusage/bootusage/common/filesystem"
	"github.com/bootusage/bootusage/common/profile"
	"github.com/bootusage/bootusage/common/pseudostore"
	"go.uber.org/zap"
)

// Environment is everything a backend needs to inspect one installation. It is built once per
// command invocation and passed to the backends explicitly. Nothing in it is modified after
// construction.
type Environment struct {
	FS           filesystem.Provider
	Paths        Paths
	PseudoStores *pseudostore.Set
	Logger       *zap.Logger
}

// NewEnvironment builds an Environment from explicit paths. If fs is nil the local file system is
// used, if log is nil logging is disabled.
func NewEnvironment(paths Paths, fs filesystem.Provider, log *zap.Logger) *Environment {
	if fs == nil {
		fs = filesystem.NewOsProvider()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Environment{
		FS:           fs,
		Paths:        paths,
		PseudoStores: pseudostore.NewSet(fs, paths.BootPartition, paths.PseudoStores...),
		Logger:       log,
	}
}

// GetEnvironment builds an Environment from the global configuration.
func GetEnvironment() (*Environment, error) {
	paths, err := GetPaths()
	if err != nil {
		return nil, err
	}
	log, err := GetLogger()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize logger: %w", err)
	}
	log.Debug("using paths", zap.Any("paths", paths))
	return NewEnvironment(paths, nil, log), nil
}

// Profile returns a new, not yet inspected, profile.
func (e *Environment) Profile(name string) *profile.Profile {
	return profile.New(name, profile.Config{
		FS:            e.FS,
		StateDir:      e.Paths.StateDir,
		StoreDir:      e.Paths.StoreDir,
		BootPartition: e.Paths.BootPartition,
		Logger:        e.Logger,
	})
}
