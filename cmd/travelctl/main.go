// Command travelctl runs operational tasks against the booking database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	intconfig "travelagency/internal/config"
	"travelagency/internal/utils"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "travelctl",
		Short:         "Operational commands for the travel agency backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env := intconfig.LoadEnv()
			utils.InitLogger(utils.LoggerOptions{Level: env.Log.Level})
		},
	}
	root.AddCommand(dbCmd(), adminCmd())
	return root
}
