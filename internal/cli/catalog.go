package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/leafvessel/carecard/pkg/card"
)

// catalogCommand creates the catalog command.
func (c *CLI) catalogCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Generate a multi-page catalog of every stored plant",
		Long: `Generate a single PDF with one care card page per stored plant.
Catalog pages use the same layout as individual cards but carry no card
back template.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			plants, err := st.List(ctx)
			if err != nil {
				return err
			}

			// Stored records are already limited; apply again so a
			// database touched by other tools still renders in bounds.
			limits := c.Config.FieldLimits()
			for i, rec := range plants {
				plants[i], _ = limits.Apply(rec)
			}

			dir := output
			if dir == "" {
				dir = c.Config.Paths.OutputDir
			}
			outPath := card.CatalogPath(dir, time.Now())

			if err := c.newEngine().RenderCatalog(ctx, plants, outPath); err != nil {
				return err
			}
			printSuccess("Catalog generated with %d page(s)", len(plants))
			printFile(outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default from config)")
	return cmd
}
