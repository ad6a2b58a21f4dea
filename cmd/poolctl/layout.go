package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolalloc/layout"
)

func init() {
	rootCmd.AddCommand(newLayoutCmd())
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the pools of a layout",
		Long: `The layout command resolves a layout and prints each pool's chunk
count, chunk size and capacity, in selection order.

Example:
  poolctl layout --preset wide
  poolctl layout --pools 64x8,16x64 --json
  poolctl layout --config pools.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(args)
		},
	}
	return cmd
}

// layoutReport is the JSON form of the layout command.
type layoutReport struct {
	Name     string            `json:"name,omitempty"`
	Compact  string            `json:"compact"`
	ElemSize int               `json:"elem_size"`
	Capacity int               `json:"capacity"`
	Pools    []layout.PoolSpec `json:"pools"`
}

func runLayout(args []string) error {
	l, err := resolveLayout()
	if err != nil {
		return err
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	if jsonOut {
		return printJSON(layoutReport{
			Name:     l.Name,
			Compact:  l.String(),
			ElemSize: max(l.ElemSize, 1),
			Capacity: l.Capacity(),
			Pools:    l.Pools,
		})
	}

	if l.Name != "" {
		printInfo("Layout: %s\n", l.Name)
	}
	printInfo("Compact: %s\n", l.String())
	printInfo("Element size: %d B\n", max(l.ElemSize, 1))
	printInfo("Total capacity: %s\n\n", formatBytes(int64(l.Capacity())))

	printInfo("Pools:\n")
	for i, p := range l.Pools {
		printInfo("  %d: %s chunks × %s = %s\n", i,
			formatNumber(int64(p.Chunks)),
			formatBytes(int64(p.ChunkSize)),
			formatBytes(int64(p.Chunks*p.ChunkSize)))
	}
	return nil
}
