package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/bootusage/bootusage/common/profile"
	"github.com/bootusage/bootusage/common/pseudostore"
	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// This package handles the global command line tool config - the global flags, environment
// variable bindings and config file handling.

const (
	envPrefix      = "bootusage"
	configFileName = "config.toml"
)

// Defines all the global flags and binds them to the backends config singleton
func InitGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(config.RootKey, "/", `The root of the installation to inspect.
	The boot partition and state directory are resolved relative to it, which allows inspecting a mounted system from a rescue environment.`)

	cmd.PersistentFlags().String(config.BootPartitionKey, "boot", "The boot partition (generally the ESP) relative to the root.")

	cmd.PersistentFlags().String(config.StateDirKey, "nix/var/nix", "The Nix state directory relative to the root. Profiles are read from its profiles/ subdirectory.")

	cmd.PersistentFlags().String(config.StoreDirKey, profile.DefaultStoreDir, `The absolute Nix store directory generation links point into.
	It is never resolved relative to the root and is stripped from store paths to derive pseudo-store file names.`)

	cmd.PersistentFlags().StringSlice(config.PseudoStoresKey, pseudostore.DefaultLayouts, "The pseudo-store directories relative to the boot partition bootloader integrations copy boot files to.")

	cmd.PersistentFlags().String(config.ConfigFileKey, "", fmt.Sprintf(`An optional configuration file using the flag names as keys.
	Defaults to %q if it exists.`, defaultConfigFile()))

	cmd.PersistentFlags().Bool(config.DebugKey, false, "Print additional details that are normally hidden.")

	cmd.PersistentFlags().Bool(config.RawKey, false, "Print raw values without IEC prefixes and relative dates.")

	cmd.PersistentFlags().StringSlice(config.ColumnsKey, []string{}, "When printing structured data, the columns/fields to include (use 'all' to include everything).")
	cmd.PersistentFlags().Uint(config.PageSizeKey, 100, `The number of rows/elements to print before output is flushed to stdout.
	When printing using a table, the header will be repeated after printing this many rows (no headers are printed when set to 0).`)
	cmd.PersistentFlags().String(config.OutputKey, config.OutputTable, fmt.Sprintf("How output normally rendered using a table is printed (%s, %s, %s).",
		config.OutputTable, config.OutputJSON, config.OutputJSONPretty))

	cmd.PersistentFlags().Int8(config.LogLevelKey, 0, fmt.Sprintf(`By default all logging is disabled except for fatal errors.
	Optionally additional logging to stderr can be enabled to assist with debugging (0=Fatal, 1=Error, 2=Warn, 3=Info, 4+5=Debug).
	When enabling logging you may wish to set --%s=0 to ensure output and log messages are synchronized.`, config.PageSizeKey))
	cmd.PersistentFlags().String(config.LogFileKey, "", "Write log messages to this file instead of stderr. The file is rotated when it grows too large.")

	cmd.PersistentFlags().Bool(config.LogDeveloperKey, false, "Enable logging at DebugLevel and above and print stack traces at WarnLevel and above.")
	cmd.PersistentFlags().MarkHidden(config.LogDeveloperKey)

	// Environment variables should start with BOOTUSAGE_
	viper.SetEnvPrefix(envPrefix)
	// Environment variables cannot use "-", replace with "_"
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Bind all persistent pflags to viper
	cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		viper.BindEnv(flag.Name)
		viper.BindPFlag(flag.Name, flag)
	})
}

func defaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "bootusage", configFileName)
}

// ReadConfigFile merges the configuration file into viper. Flags and environment variables take
// precedence over values from the file. A missing default configuration file is not an error, a
// missing explicitly configured one is.
func ReadConfigFile() error {
	path := viper.GetString(config.ConfigFileKey)
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile()
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("unable to read configuration file %q: %w", path, err)
	}
	return nil
}

func Cleanup() {
	config.Cleanup()
}
