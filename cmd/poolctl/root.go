package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshuapare/poolalloc/alloc"
	"github.com/joshuapare/poolalloc/layout"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	poolsFlag  string
	configPath string
	presetName string
	elemSize   int
)

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Inspect and exercise fixed-region pool allocators",
	Long: `poolctl builds a pool allocator from a layout and reports on it.
A layout is an ordered list of pools, each a number of equal-size chunks.
It can come from a preset, a compact string like "64x8,16x64", or a YAML file.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVarP(&poolsFlag, "pools", "p", "", `Pool layout as COUNTxSIZE list, e.g. "64x8,16x64"`)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML layout file")
	rootCmd.PersistentFlags().
		StringVar(&presetName, "preset", "", "Layout preset (small, balanced, wide)")
	rootCmd.PersistentFlags().
		IntVar(&elemSize, "elem-size", 0, "Element size in bytes (overrides the layout)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveLayout picks the layout from --config, then --pools, then --preset,
// falling back to the default preset.
func resolveLayout() (layout.Layout, error) {
	var (
		l   layout.Layout
		err error
	)
	switch {
	case configPath != "":
		l, err = layout.Load(configPath)
	case poolsFlag != "":
		l, err = layout.Parse(poolsFlag)
	case presetName != "":
		l, err = layout.Preset(presetName)
	default:
		l, err = layout.Preset(layout.Default.Name)
	}
	if err != nil {
		return layout.Layout{}, fmt.Errorf("failed to resolve layout: %w", err)
	}
	if elemSize < 0 {
		return layout.Layout{}, fmt.Errorf("invalid --elem-size %d", elemSize)
	}
	if elemSize > 0 {
		l.ElemSize = elemSize
	}
	return l, nil
}

// buildAllocator resolves the layout and constructs an allocator from it.
func buildAllocator(log *zap.Logger) (layout.Layout, *alloc.Allocator, error) {
	l, err := resolveLayout()
	if err != nil {
		return layout.Layout{}, nil, err
	}
	a, err := l.Build(alloc.WithLogger(log))
	if err != nil {
		return layout.Layout{}, nil, fmt.Errorf("failed to build allocator: %w", err)
	}
	return l, a, nil
}

// newLogger returns a development logger in verbose mode and a no-op otherwise.
func newLogger() *zap.Logger {
	if !verbose || quiet {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
