package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "worldgen",
		Short:        "Voronoi world surface and biome generator",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [project-path]",
		Short: "Generate a world and write its snapshot and GeoJSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seedSet = cmd.Flags().Changed("seed")
			return runGenerate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "override the project seed")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write a snapshot here (.zst compresses)")
	cmd.Flags().StringVar(&opts.geojson, "geojson", "", "write a GeoJSON export here")
	cmd.Flags().StringVar(&opts.index, "index", "", "record attempts in this SQLite index")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "development logging")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a world config without generating",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var (
		port    int
		idxPath string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local dev server with a live world stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), args[0], port, idxPath, verbose)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	cmd.Flags().StringVar(&idxPath, "index", "", "record attempts in this SQLite index")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "development logging")
	return cmd
}

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [db-path]",
		Short: "List recent generation attempts from a run index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd.Context(), args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list")
	return cmd
}
