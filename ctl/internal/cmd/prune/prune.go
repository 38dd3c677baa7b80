package prune

import (
	"github.com/bootusage/bootusage/ctl/internal/cmdfmt"
	"github.com/bootusage/bootusage/ctl/internal/util"
	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/bootusage/bootusage/ctl/pkg/ctl/usage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Creates new "prune-candidates" command
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune-candidates [profile]",
		Short: "List the generations that could be removed to free space on the boot partition",
		Long: `List the generations that could be removed to free space on the boot partition, oldest first.
The unique column is what removing only that generation frees. The cumulative column is what
removing it together with every older candidate frees across all pseudo-stores. Nothing is removed,
use nix-collect-garbage or nix-env --delete-generations followed by reinstalling the bootloader.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := usage.DefaultProfile
			if len(args) == 1 {
				name = args[0]
			}
			return runPruneCmd(name)
		},
	}
	return cmd
}

func runPruneCmd(name string) error {
	env, err := config.GetEnvironment()
	if err != nil {
		return err
	}
	candidates, err := usage.GetPruneCandidates(env, name)
	if err != nil {
		return err
	}

	allColumns := []string{"id", "date", "age", "label", "unique", "cumulative", "freed_files"}
	defaultColumns := []string{"id", "date", "age", "label", "unique", "cumulative"}
	if viper.GetBool(config.DebugKey) {
		defaultColumns = allColumns
	}
	tbl := cmdfmt.NewPrintomatic(allColumns, defaultColumns)
	for _, c := range candidates {
		tbl.AddItem(
			c.ID,
			util.FormatDate(c.Date),
			util.FormatAge(c.Date),
			c.Label,
			util.FormatBytes(c.UniqueBytes),
			util.FormatBytes(c.CumulativeBytes),
			len(c.Files),
		)
	}
	tbl.PrintRemaining()
	if len(candidates) == 0 && viper.GetString(config.OutputKey) == config.OutputTable {
		cmdfmt.Printf("Only the current generation exists, nothing to prune.\n")
	}
	return nil
}
