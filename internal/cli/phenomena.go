package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hotbild/internal/phenomena"
)

var phenomenaOut string

// phenomenaCmd represents the phenomena command
var phenomenaCmd = &cobra.Command{
	Use:   "phenomena",
	Short: "Export and import the phenomena/links model",
	Long: `The phenomena model lists one phenomenon per scoped event (dimension,
name, likelihood tier, risk and a note) plus undirected links between the
phenomena of events sharing a category and country.

It is the one persisted artifact and round-trips through export and import.`,
}

var phenomenaExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the phenomena of a dataset's scoped events",
	Long: `Export assesses the dataset with the given filters and scope and writes the
phenomena model of the scoped events as JSON.

Example:
  hotbild phenomena export events.json --node category:INFRA -o infra.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		store := phenomena.NewStore()
		store.Replace(report.Phenomena)
		data, err := store.Export()
		if err != nil {
			return fmt.Errorf("export phenomena: %w", err)
		}
		if err := writeOutput(cmd, phenomenaOut, data); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Exported %d phenomena\n", store.Len())
		return nil
	},
}

var phenomenaImportCmd = &cobra.Command{
	Use:     "import <file>",
	Aliases: []string{"check"},
	Short:   "Validate a phenomena file and write it back normalized",
	Long: `Import parses a phenomena JSON file (an object with phenomena and links, or
a bare array of phenomena). The whole file is rejected when any phenomenon
lacks an id, an id repeats, or a link references an unknown phenomenon.

Example:
  hotbild phenomena import model.json
  hotbild phenomena import model.json -o normalized.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		store := phenomena.NewStore()
		if err := store.Import(data); err != nil {
			return fmt.Errorf("import rejected: %w", err)
		}
		m := store.Snapshot()
		fmt.Fprintf(os.Stderr, "✓ Imported %d phenomena, %d links\n", len(m.Phenomena), len(m.Links))

		if phenomenaOut == "" {
			return nil
		}
		out, err := store.Export()
		if err != nil {
			return fmt.Errorf("export phenomena: %w", err)
		}
		return writeOutput(cmd, phenomenaOut, out)
	},
}

func init() {
	rootCmd.AddCommand(phenomenaCmd)
	phenomenaCmd.AddCommand(phenomenaExportCmd)
	phenomenaCmd.AddCommand(phenomenaImportCmd)

	phenomenaCmd.PersistentFlags().StringVarP(&phenomenaOut, "out", "o", "", "output path (export default: stdout)")
	addAssessFlags(phenomenaExportCmd)
}
