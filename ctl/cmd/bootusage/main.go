package main

import (
	"fmt"
	"os"

	"github.com/bootusage/bootusage/ctl/internal/cmd"
	"github.com/bootusage/bootusage/ctl/internal/config"
	"github.com/bootusage/bootusage/ctl/internal/util"
)

// Set by the build process using ldflags.
var (
	binaryName = "bootusage"
	version    = "unknown"
	commit     = "unknown"
	buildTime  = "unknown"
)

func main() {
	root := cmd.NewRootCmd(binaryName, fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime))
	err := root.Execute()
	config.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(int(util.GetExitCode(err)))
}
