package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolalloc/alloc"
	"github.com/joshuapare/poolalloc/trace"
)

var (
	simEvict   bool
	simShowMap bool
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().BoolVar(&simEvict, "evict", false, "Free the oldest live block and retry when out of memory")
	cmd.Flags().BoolVar(&simShowMap, "map", false, "Print each pool's chunk occupancy map")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <trace>",
		Short: "Replay an allocation trace",
		Long: `The simulate command builds an allocator from the layout and replays
a trace script against it, one operation per line:

  alloc <name> <count>
  free <name>
  check <name>

Use "-" to read the trace from stdin.

Example:
  poolctl simulate workload.trace --preset small
  poolctl simulate workload.trace --pools 16x8,4x64 --evict --map`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(args)
		},
	}
	return cmd
}

// simulateReport is the JSON form of the simulate command.
type simulateReport struct {
	Layout string       `json:"layout"`
	Trace  trace.Report `json:"trace"`
	Stats  alloc.Stats  `json:"stats"`
	Errors []string     `json:"errors,omitempty"`
}

func runSimulate(args []string) error {
	path := args[0]
	printVerbose("Reading trace: %s\n", path)

	ops, err := readTrace(path)
	if err != nil {
		return err
	}

	log := newLogger()
	defer func() { _ = log.Sync() }()

	l, a, err := buildAllocator(log)
	if err != nil {
		return err
	}
	defer a.Close()

	r := trace.NewReplayer(a, trace.WithEvict(simEvict), trace.WithLogger(log))
	rep := r.Run(ops)
	stats := a.Stats()

	var failures []string
	for _, res := range rep.Results {
		if res.Err != nil {
			failures = append(failures, fmt.Sprintf("line %d: %s %s: %v", res.Op.Line, res.Op.Kind, res.Op.Name, res.Err))
		}
	}

	if jsonOut {
		return printJSON(simulateReport{Layout: l.String(), Trace: rep, Stats: stats, Errors: failures})
	}

	printInfo("Layout: %s (elem size %d B)\n", l.String(), a.ElemSize())
	printInfo("Operations: %s (alloc %s, free %s, check %s)\n",
		formatNumber(int64(rep.Ops)), formatNumber(int64(rep.Allocs)),
		formatNumber(int64(rep.Frees)), formatNumber(int64(rep.Checks)))
	printInfo("Failures: %s  Evictions: %s  Corruptions: %s\n",
		formatNumber(int64(rep.Failures)), formatNumber(int64(rep.Evictions)), formatNumber(int64(rep.Corruptions)))
	printInfo("Out of memory: %s (fragmented: %s)\n",
		formatNumber(int64(stats.OutOfMemory)), formatNumber(int64(stats.Fragmented)))
	printInfo("Live blocks: %s, bytes in use: %s\n\n", formatNumber(int64(rep.Live)), formatBytes(stats.InUse()))

	for i, p := range stats.Pools {
		printInfo("Pool %d: %s free of %s chunks × %s, largest run %s\n", i,
			formatNumber(int64(p.FreeChunks)), formatNumber(int64(p.ChunkCount)),
			formatBytes(int64(p.ChunkSize)), formatNumber(int64(p.LargestFreeRun)))
		if simShowMap {
			printInfo("  %s\n", a.Pools()[i].OccupancyMap())
		}
	}

	if verbose && !quiet {
		printInfo("\n")
		if _, err := stats.WriteTo(os.Stdout); err != nil {
			return err
		}
		for _, f := range failures {
			printInfo("  %s\n", f)
		}
	}
	return nil
}

func readTrace(path string) ([]trace.Op, error) {
	if path == "-" {
		ops, err := trace.Parse(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trace: %w", err)
		}
		return ops, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()
	ops, err := trace.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trace %s: %w", strings.TrimSpace(path), err)
	}
	return ops, nil
}
