package profile

import (
	"github.com/bootusage/bootusage/ctl/internal/cmdfmt"
	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/bootusage/bootusage/ctl/pkg/ctl/usage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Creates new "json" command
func NewJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "json [profile]",
		Short: "Print every generation of a profile with its boot files and their usage as JSON",
		Long: `Print every generation of a profile with its boot files and their usage as JSON.
Generations are keyed by id in ascending numeric order. Use --output=json-pretty for indented output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := usage.DefaultProfile
			if len(args) == 1 {
				name = args[0]
			}
			return runJSONCmd(name)
		},
	}
	return cmd
}

func runJSONCmd(name string) error {
	env, err := config.GetEnvironment()
	if err != nil {
		return err
	}
	serialized, err := usage.Serialize(env, name)
	if err != nil {
		return err
	}
	pretty := viper.GetString(config.OutputKey) == config.OutputJSONPretty
	cmdfmt.Printf("%s\n", cmdfmt.MarshalJSON(serialized, pretty))
	return nil
}
