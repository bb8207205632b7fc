package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var graphOut string

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Build the event relationship graph of a dataset",
	Long: `Graph writes the node/link model of the filtered events as JSON:
event, category, country and keyword nodes, with links from each event to
its category, its country and its recurring keywords.

Example:
  hotbild graph events.json --out graph.json
  hotbild graph events.json --min-keyword 2 --country Finland`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVarP(&graphOut, "out", "o", "", "output path (default: stdout)")
	addAssessFlags(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts, err := assessOptions(cmd)
	if err != nil {
		return err
	}
	p, _, err := newPipeline()
	if err != nil {
		return err
	}

	report, err := p.Assess(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("assess failed: %w", err)
	}

	data, err := json.MarshalIndent(report.Result.Graph, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}

	stats := report.Result.Graph.Stats
	if err := writeOutput(cmd, graphOut, data); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ %d nodes, %d links (%d keyword nodes, %d pruned)\n",
		stats.NodeCount, stats.LinkCount, stats.KeywordNodes, stats.PrunedNodes)
	return nil
}

// writeOutput writes data to path, or to the command's stdout when path is empty
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
