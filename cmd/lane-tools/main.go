package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mayankkcode/Lane-detection/internal/config"
	"github.com/Mayankkcode/Lane-detection/internal/lane"
	"github.com/Mayankkcode/Lane-detection/internal/planner"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// logLevelEnv enables debug logging when set to "debug".
const logLevelEnv = "LANE_TOOLS_LOG_LEVEL"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

// loadConfig reads --config, falling back to the built-in defaults.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "lane-tools",
		Short:         "Lane-marking detection and RRT path planning",
		Long:          "lane-tools extracts lane markings from road images with Canny edges and a probabilistic Hough transform, and grows Rapidly-exploring Random Trees on a toy obstacle map. It can also serve both as MCP tools over stdio.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging()
		},
		// No Run: prints help by default.
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML or JSON config file (default: built-in settings)")

	cmd.AddCommand(newLanesCmd(opts))
	cmd.AddCommand(newPlanCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// configureLogging sends log output to stderr (stdout carries results and the
// MCP protocol) and turns on package diagnostics when debug logging is requested.
func configureLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if os.Getenv(logLevelEnv) == "debug" {
		lane.EnableDebugLogging()
		planner.SetLogger(log.Printf)
		log.Printf("lane-tools v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lane-tools %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}
