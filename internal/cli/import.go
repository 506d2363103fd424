package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/store"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import plants from a CSV file",
		Long: `Import plant records from a CSV file.

Two column layouts are recognized automatically: the canonical layout
(scientific_name, common_name, description, light, water, feeding,
temperature, humidity, toxicity) and the retail export layout (Botanical
Name, Common Name, ..., Fertilizer, Cat Friendly, Dog Friendly).

Rows with problems are skipped and reported; the rest import normally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "open CSV file")
			}
			defer f.Close()

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := store.ImportCSV(ctx, st, f)
			if err != nil {
				return err
			}

			printSuccess("Imported %d plant(s)", result.Imported)
			for _, e := range result.Errors {
				printWarning("%s", e)
			}
			return nil
		},
	}
}
