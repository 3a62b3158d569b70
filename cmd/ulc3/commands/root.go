package commands

import (
	"github.com/spf13/cobra"

	"utools/internal/logging"
)

var debug bool

func Execute() error {
	root := &cobra.Command{
		Use:          "ulc3 <image>",
		Short:        "Run an LC-3 executable image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Configure(debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0])
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	return root.Execute()
}
