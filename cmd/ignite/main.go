package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ignite/config"
	"github.com/shashiranjanraj/ignite/pkg/app"
)

func main() {
	if err := newRootCmd(app.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd wires the CLI around a. Running the root command with no
// subcommand serves a over HTTP.
func newRootCmd(a *app.Application) *cobra.Command {
	serve := newServeCmd(a)

	root := &cobra.Command{
		Use:           "ignite",
		Short:         "Bind the application to $PORT (default 8080) and serve it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load()
		},
		RunE: serve.RunE,
	}

	root.AddCommand(serve)
	root.AddCommand(newGRPCCmd())
	root.AddCommand(newRouteListCmd(a))
	return root
}
