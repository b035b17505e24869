package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mayankkcode/Lane-detection/internal/planner"
)

type planOptions struct {
	seed     uint64
	maxIter  int
	plotFile string
	path     bool
}

func newPlanCmd(root *rootOptions) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Grow an RRT on the configured obstacle map",
		Long:  "Grows a Rapidly-exploring Random Tree from the configured start toward the goal, prints the outcome and optionally renders the tree to an image.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			// Flags override the file only when given.
			pc := cfg.Planner
			if cmd.Flags().Changed("seed") {
				pc.Seed = opts.seed
			}
			if cmd.Flags().Changed("max-iter") {
				pc.MaxIter = opts.maxIter
			}
			if cmd.Flags().Changed("plot") {
				pc.PlotFile = opts.plotFile
			}
			cfg.Planner = pc
			if err := cfg.Validate(); err != nil {
				return err
			}

			tree := pc.New()
			nodes := tree.Plan()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state: %s\n", tree.State())
			fmt.Fprintf(out, "iterations: %d\n", tree.Iterations())
			fmt.Fprintf(out, "nodes: %d\n", len(nodes))

			if opts.path {
				fmt.Fprintln(out, "path:")
				for _, p := range tree.Path() {
					fmt.Fprintf(out, "  %.4f %.4f\n", p.X, p.Y)
				}
			}

			if pc.PlotFile != "" {
				if err := planner.SavePlot(tree, pc.PlotFile, planner.PlotOptions{Edges: true, Path: opts.path}); err != nil {
					return err
				}
				fmt.Fprintf(out, "plot: %s\n", pc.PlotFile)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (default: from config)")
	cmd.Flags().IntVar(&opts.maxIter, "max-iter", 0, "iteration cap (default: from config)")
	cmd.Flags().StringVar(&opts.plotFile, "plot", "", "write a plot of the tree to this file (png, svg, pdf)")
	cmd.Flags().BoolVar(&opts.path, "path", false, "print and plot the branch ending at the last node")
	return cmd
}
