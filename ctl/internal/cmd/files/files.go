package files

import (
	"fmt"
	"strings"

	"github.com/bootusage/bootusage/common/pseudostore"
	"github.com/bootusage/bootusage/ctl/internal/cmdfmt"
	"github.com/bootusage/bootusage/ctl/internal/util"
	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/bootusage/bootusage/ctl/pkg/ctl/usage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type filesConfig struct {
	check bool
}

// Creates new "files" command
func NewCmd() *cobra.Command {
	frontendCfg := filesConfig{}
	backendCfg := usage.FilesCfg{}

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the files in the pseudo-stores on the boot partition",
		Long: `List the files in the pseudo-stores on the boot partition and the generations referencing them.
Files no generation references are left over from generations that were already removed and are
normally cleaned up the next time the bootloader configuration is installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if frontendCfg.check {
				backendCfg.Orphaned = true
			}
			return runFilesCmd(frontendCfg, backendCfg)
		},
	}
	cmd.Flags().StringVar(&backendCfg.Profile, "profile", usage.DefaultProfile, "The profile whose generations are checked for references.")
	cmd.Flags().BoolVar(&backendCfg.Orphaned, "orphaned", false, "Only list files no generation references.")
	cmd.Flags().BoolVar(&frontendCfg.check, "check", false, fmt.Sprintf("Implies --orphaned and exits with status %d if any orphaned file is found.", util.OrphansFound))
	cmd.Flags().StringVar(&backendCfg.Filter, "filter", "", pseudostore.FilterFilesHelp)
	return cmd
}

func runFilesCmd(frontendCfg filesConfig, backendCfg usage.FilesCfg) error {
	env, err := config.GetEnvironment()
	if err != nil {
		return err
	}
	results, err := usage.GetFiles(env, backendCfg)
	if err != nil {
		return err
	}

	allColumns := []string{"layout", "name", "size", "refs", "generations", "modified", "created", "path"}
	defaultColumns := []string{"layout", "name", "size", "refs", "generations"}
	if viper.GetBool(config.DebugKey) {
		defaultColumns = allColumns
	}
	tbl := cmdfmt.NewPrintomatic(allColumns, defaultColumns)
	var orphanedBytes int64
	for _, f := range results {
		if f.Refs() == 0 {
			orphanedBytes += f.Size
		}
		tbl.AddItem(
			f.Layout,
			f.Name,
			util.FormatBytes(f.Size),
			f.Refs(),
			strings.Join(f.Generations, ","),
			util.FormatDate(f.Mtime),
			util.FormatDate(f.Btime),
			f.Path,
		)
	}
	tbl.PrintRemaining()

	if frontendCfg.check && len(results) != 0 {
		return util.NewCtlError(
			fmt.Errorf("found %d orphaned files using %s", len(results), util.FormatBytes(orphanedBytes)),
			util.OrphansFound)
	}
	if len(results) == 0 && viper.GetString(config.OutputKey) == config.OutputTable {
		cmdfmt.Printf("No matching files found.\n")
	}
	return nil
}
