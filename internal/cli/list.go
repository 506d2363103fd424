package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all plants in the database",
		Args:  cobra.NoArgs,
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
			if len(plants) == 0 {
				printInfo("No plants in database")
				printDetail("add one with: carecard fetch <scientific name>")
				return nil
			}

			for _, rec := range plants {
				line := styleLatin.Render(rec.ScientificName)
				if rec.CommonName != "" {
					line += StyleDim.Render(" · " + rec.CommonName)
				}
				fmt.Println("  " + line)
			}
			printNewline()
			printDetail("%d plant(s)", len(plants))
			return nil
		},
	}
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <scientific name>",
		Short: "Show the stored care data for a plant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.Get(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printRecord(*rec)
			return nil
		},
	}
}
