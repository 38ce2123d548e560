package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.StandardLogger()

var rootVerbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "polygen",
		Short: "Generate packrat PEG parsers from a grammar file",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if rootVerbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newTestCmd())
	return root
}
