package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hotbild/internal/model"
	"github.com/ppiankov/hotbild/internal/pipeline"
	"github.com/ppiankov/hotbild/internal/score"
)

var (
	outJSON  string
	outMD    string
	timeout  time.Duration
	noCache  bool
	noFooter bool

	// Filter, scope and scoring flags shared by assess, graph, phenomena and batch
	query       string
	category    string
	country     string
	dateFrom    string
	dateTo      string
	limit       int
	minKeyword  int
	scenario    string
	mode        string
	sliders     []int
	scopeNodeID string
)

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess <file>",
	Short: "Assess an event dataset and generate a threat picture report",
	Long: `Assess loads an event dataset (JSON, YAML or a JavaScript EVENTS literal) and:
- Normalizes records with aliased or missing fields
- Classifies each event into a dimension, likelihood tier and risk score
- Applies filters and an optional graph node scope
- Computes best, likely and worst case projections per dimension
- Scores the dimensions in auto, manual or blend mode
- Builds the event relationship graph

Example:
  hotbild assess events.json
  hotbild assess events.js --category INFRA --from 2024-01-01 --md report.md
  hotbild assess events.json --node country:Sverige --scenario likely
  hotbild assess events.yaml --mode blend --sliders 60,50,40,50`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	// Output flags
	assessCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (empty to skip)")
	assessCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	assessCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	addAssessFlags(assessCmd)
}

// addAssessFlags registers the dataset, filter and scoring flags on cmd
func addAssessFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the classification cache")

	cmd.Flags().StringVarP(&query, "query", "q", "", "free text filter over title, summary, category and country")
	cmd.Flags().StringVar(&category, "category", "", "category filter (all for none)")
	cmd.Flags().StringVar(&country, "country", "", "country filter (all for none)")
	cmd.Flags().StringVar(&dateFrom, "from", "", "earliest date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateTo, "to", "", "latest date, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "result cap (default: dataset size bounded to the configured range)")
	cmd.Flags().IntVar(&minKeyword, "min-keyword", 0, "minimum keyword frequency for keyword nodes (default from config, 0 disables keywords)")

	cmd.Flags().StringVar(&scenario, "scenario", string(model.ScenarioWorst), "scenario to report (best, likely, worst)")
	cmd.Flags().StringVar(&mode, "mode", string(score.ModeAuto), "scoring mode (auto, manual, blend)")
	cmd.Flags().IntSliceVar(&sliders, "sliders", nil, "four slider percentages for manual or blend mode")
	cmd.Flags().StringVar(&scopeNodeID, "node", "", "scope to a graph node, e.g. category:INFRA, country:Sverige or event:12")
}

// assessOptions builds pipeline options from the shared flags
func assessOptions(cmd *cobra.Command) (pipeline.Options, error) {
	opts := pipeline.Options{
		Query:    query,
		Category: category,
		Country:  country,
		From:     dateFrom,
		To:       dateTo,
		Limit:    limit,
		Scenario: scenario,
		Mode:     mode,
		Node:     scopeNodeID,
	}
	if cmd.Flags().Changed("min-keyword") {
		freq := minKeyword
		opts.MinKeywordFrequency = &freq
	}
	if len(sliders) > 0 {
		p, err := parseSliders(sliders)
		if err != nil {
			return opts, err
		}
		opts.Sliders = p
	}
	return opts, nil
}

// parseSliders expects one value per dimension
func parseSliders(values []int) (score.Percentages, error) {
	var p score.Percentages
	if len(values) != len(p) {
		return p, fmt.Errorf("--sliders wants %d values (intentions, facilitation, resources, opportunity), got %d", len(p), len(values))
	}
	copy(p[:], values)
	return p.Clamp(), nil
}

// newPipeline loads config and applies the flags that override it
func newPipeline() (*pipeline.Pipeline, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	p, err := pipeline.NewPipeline(cfg, newLogger(cfg.Output.Verbose))
	if err != nil {
		return nil, nil, fmt.Errorf("create pipeline: %w", err)
	}
	return p, cfg, nil
}

func runAssess(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts, err := assessOptions(cmd)
	if err != nil {
		return err
	}

	p, cfg, err := newPipeline()
	if err != nil {
		return err
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Assessing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Scenario: %s, mode: %s\n", opts.Scenario, opts.Mode)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	report, err := p.Assess(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("assess failed: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
