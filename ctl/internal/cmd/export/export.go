package export

import (
	"github.com/bootusage/bootusage/ctl/internal/cmdfmt"
	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/bootusage/bootusage/ctl/pkg/ctl/usage"
	"github.com/spf13/cobra"
)

// Creates new "export" command
func NewCmd() *cobra.Command {
	cfg := usage.ExportCfg{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write boot partition usage metrics for the node exporter textfile collector",
		Long: `Write boot partition usage metrics for the node exporter textfile collector.
Per generation the unique and shared bytes, the number of boot files and whether it is current are
exported, per pseudo-store the total and orphaned bytes. The file is replaced atomically so it can
be written periodically, for example from a systemd timer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.GetEnvironment()
			if err != nil {
				return err
			}
			if err := usage.Export(env, cfg); err != nil {
				return err
			}
			cmdfmt.Printf("Wrote metrics to %s\n", cfg.Textfile)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Textfile, "textfile", "", "The file to write the metrics to (generally in the node exporter textfile directory and ending in .prom).")
	cmd.Flags().StringSliceVar(&cfg.Profiles, "profiles", []string{usage.DefaultProfile}, "The profiles to export metrics for.")
	cmd.MarkFlagRequired("textfile")
	return cmd
}
