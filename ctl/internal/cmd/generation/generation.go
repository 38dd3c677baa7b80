package generation

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bootusage/bootusage/ctl/internal/cmdfmt"
	"github.com/bootusage/bootusage/ctl/internal/util"
	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/bootusage/bootusage/ctl/pkg/ctl/usage"
	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const defaultWidth = 80

type generationConfig struct {
	profile string
}

// Creates new "generation" command
func NewCmd() *cobra.Command {
	cfg := generationConfig{}

	cmd := &cobra.Command{
		Use:   "generation <id>",
		Short: "Show the boot files of a generation and which other generations share them",
		Long: `Show the boot files of a generation and which other generations share them.
Files only needed by this generation are freed from the boot partition once the generation is
garbage collected. Shared files stay as long as any of the listed generations exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerationCmd(cfg, args[0])
		},
	}
	cmd.Flags().StringVar(&cfg.profile, "profile", usage.DefaultProfile, "The profile the generation belongs to.")
	return cmd
}

func runGenerationCmd(cfg generationConfig, id string) error {
	env, err := config.GetEnvironment()
	if err != nil {
		return err
	}
	gen, err := usage.GetGeneration(env, cfg.profile, id)
	if err != nil {
		return err
	}

	switch viper.GetString(config.OutputKey) {
	case config.OutputJSON:
		cmdfmt.Printf("%s\n", cmdfmt.MarshalJSON(gen, false))
		return nil
	case config.OutputJSONPretty:
		cmdfmt.Printf("%s\n", cmdfmt.MarshalJSON(gen, true))
		return nil
	}

	current := ""
	if gen.Current {
		current = " (current)"
	}
	cmdfmt.Printf("Generation:  %s%s\n", gen.ID, current)
	cmdfmt.Printf("Profile:     %s\n", cfg.profile)
	cmdfmt.Printf("Label:       %s\n", gen.Label)
	cmdfmt.Printf("Date:        %s (%s)\n", util.FormatDate(gen.Date), util.FormatAge(gen.Date))
	cmdfmt.Printf("Size usage:  %s\n", gen.SizeUsage)
	if viper.GetBool(config.DebugKey) {
		cmdfmt.Printf("Path:        %s\n", gen.Path)
		cmdfmt.Printf("Store path:  %s\n", gen.StorePath)
	}

	cmdfmt.Printf("\nUnique boot files (%d, %s):\n", len(gen.Usage.Unique), util.FormatBytes(gen.UniqueBytes))
	for _, f := range gen.Usage.Unique {
		cmdfmt.Printf("  %s\n", f)
	}

	shared := make([]string, 0, len(gen.Usage.Shared))
	for f := range gen.Usage.Shared {
		shared = append(shared, f)
	}
	sort.Strings(shared)
	cmdfmt.Printf("\nShared boot files (%d, %s):\n", len(shared), util.FormatBytes(gen.SharedBytes))
	width := terminalWidth()
	for _, f := range shared {
		cmdfmt.Printf("  %s\n", f)
		siblings := wordwrap.WrapString("shared with "+strings.Join(gen.Usage.Shared[f], ", "), uint(width-4))
		for _, line := range strings.Split(siblings, "\n") {
			cmdfmt.Printf("    %s\n", line)
		}
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

type generationsConfig struct {
	filter string
}

// Creates new "generations" command
func NewListCmd() *cobra.Command {
	cfg := generationsConfig{}

	cmd := &cobra.Command{
		Use:   "generations [profile]",
		Short: "List the generations of a profile with their boot partition usage",
		Long: fmt.Sprintf(`List the generations of a profile (default %q) with their boot partition usage.
The usage column shows the size of the boot files only this generation needs followed by the size
of the boot files it shares with other generations.`, usage.DefaultProfile),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backendCfg := usage.GenerationsCfg{Filter: cfg.filter}
			if len(args) == 1 {
				backendCfg.Profile = args[0]
			}
			return runGenerationsCmd(backendCfg)
		},
	}
	cmd.Flags().StringVar(&cfg.filter, "filter", "", usage.GenerationFilterHelp)
	return cmd
}

func runGenerationsCmd(cfg usage.GenerationsCfg) error {
	env, err := config.GetEnvironment()
	if err != nil {
		return err
	}
	generations, err := usage.GetGenerations(env, cfg)
	if err != nil {
		return err
	}

	allColumns := []string{"id", "current", "date", "age", "label", "files", "usage", "unique", "shared", "store_path"}
	defaultColumns := []string{"id", "current", "date", "age", "label", "files", "usage"}
	if viper.GetBool(config.DebugKey) {
		defaultColumns = allColumns
	}
	tbl := cmdfmt.NewPrintomatic(allColumns, defaultColumns)
	for _, gen := range generations {
		tbl.AddItem(
			gen.ID,
			gen.Current,
			util.FormatDate(gen.Date),
			util.FormatAge(gen.Date),
			gen.Label,
			len(gen.BootFiles),
			gen.SizeUsage,
			util.FormatBytes(gen.UniqueBytes),
			util.FormatBytes(gen.SharedBytes),
			gen.StorePath,
		)
	}
	tbl.PrintRemaining()
	return nil
}
