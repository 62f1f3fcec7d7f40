package main

import (
	"context"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app holds the state shared by every subcommand.
type app struct {
	ctx        context.Context
	log        *log.Logger
	verbose    bool
	configPath string
}

func newRootCmd(ctx context.Context) *cobra.Command {
	a := &app{ctx: ctx, log: log.New()}
	a.log.Out = os.Stderr

	root := &cobra.Command{
		Use:          "sonlib",
		Short:        "Phylogeny algorithms and a record store",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if a.verbose {
				a.log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to the store config file (default .sonlib.yaml)")

	root.AddCommand(
		newNJCmd(a),
		newSplitsCmd(a),
		newReconcileCmd(a),
		newKVCmd(a),
	)

	return root
}

// openInput opens path, or stdin for "" and "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	return os.Open(path)
}
