package commands

import (
	"github.com/spf13/cobra"
	"github.com/xornet-io/xornet/src/config"
)

var (
	_config = config.NewDefaultConfig()
)

// RootCmd is the root command for xornet
var RootCmd = &cobra.Command{
	Use:              "xornet",
	Short:            "xornet section routing",
	TraverseChildren: true,
}
