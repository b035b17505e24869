package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Mayankkcode/Lane-detection/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long:  "Serves the lane and planner tools over the MCP protocol (JSON-RPC 2.0, one message per line). Configure it in your MCP client; logs go to stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			log.Printf("lane-tools MCP server %s starting", Version)
			return server.New(cfg, Version).Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
