package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ignite/config"
	"github.com/shashiranjanraj/ignite/internal/server"
	"github.com/shashiranjanraj/ignite/pkg/app"
	"github.com/shashiranjanraj/ignite/pkg/grpc"
)

// ignite serve — bind the HTTP application.
func newServeCmd(a *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start", "run"},
		Short:   "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Start(a, config.Port())
		},
	}
}

// ignite grpc — bind a gRPC server exposing reflection only.
func newGRPCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grpc",
		Short: "Start the gRPC server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Start(grpc.New(), config.Port())
		},
	}
}

// ignite route:list — print the application's routes.
func newRouteListCmd(a *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "route:list",
		Aliases: []string{"routes"},
		Short:   "List registered routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := a.RouteList()
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No routes registered.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tNAME")
			fmt.Fprintln(w, "------\t----\t----")
			for _, ri := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
			}
			return w.Flush()
		},
	}
}
