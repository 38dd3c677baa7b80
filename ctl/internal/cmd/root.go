// Package cmd assembles the bootusage command tree.
package cmd

import (
	"github.com/bootusage/bootusage/ctl/internal/cmd/export"
	"github.com/bootusage/bootusage/ctl/internal/cmd/files"
	"github.com/bootusage/bootusage/ctl/internal/cmd/generation"
	"github.com/bootusage/bootusage/ctl/internal/cmd/profile"
	"github.com/bootusage/bootusage/ctl/internal/cmd/prune"
	"github.com/bootusage/bootusage/ctl/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd returns the root command with all global flags and subcommands registered.
func NewRootCmd(binaryName string, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   binaryName,
		Short: "Attribute boot partition usage to the generations of Nix profiles",
		Long: `Attribute boot partition usage to the generations of Nix profiles.
Bootloader integrations copy the kernels and initrds of every generation into pseudo-stores on the
boot partition. This tool determines which of those files each generation needs, which are only
needed by a single generation and how much space removing generations would free.

Configuration may be set using flags, environment variables prefixed with BOOTUSAGE_ (for example
BOOTUSAGE_BOOT_PARTITION=efi) or a configuration file, in that order of precedence.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadConfigFile()
		},
	}
	config.InitGlobalFlags(cmd)

	cmd.AddCommand(
		generation.NewListCmd(),
		generation.NewCmd(),
		files.NewCmd(),
		profile.NewJSONCmd(),
		export.NewCmd(),
		prune.NewCmd(),
	)
	return cmd
}
