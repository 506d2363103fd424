package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leafvessel/carecard/pkg/pipeline"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output  string
		refresh bool
		noSave  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "generate [scientific name]",
		Short: "Generate a printable care card for a plant",
		Long: `Generate a 6x4 inch landscape PDF care card for a plant.

If the plant is already in the database its stored data is used; otherwise
care data is fetched from the remote service and saved. With no argument,
an interactive picker lists the stored plants.

The card back template and shop logo are taken from the config file when
configured; a missing template or logo degrades to a plain card.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), strings.Join(args, " "), pipeline.Options{
				OutputDir: output,
				Refresh:   refresh,
				NoSave:    noSave,
			}, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch fresh data even if the plant is stored")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "render without saving the record")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, name string, opts pipeline.Options, noCache bool) error {
	runner, st, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer st.Close()

	if name == "" {
		plants, err := st.List(ctx)
		if err != nil {
			return err
		}
		rec, err := pickPlant(plants)
		if err != nil {
			return err
		}
		name = rec.ScientificName
	}
	opts.ScientificName = name
	if opts.OutputDir == "" {
		opts.OutputDir = c.Config.Paths.OutputDir
	}

	// The fetch can take 5-30 seconds; run the pipeline on its own
	// goroutine so the spinner stays live and Ctrl-C stays responsive.
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating card for %s...", name))
	spinner.Start()

	type outcome struct {
		result *pipeline.Result
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		result, err := runner.Generate(ctx, opts)
		ch <- outcome{result, err}
	}()

	var out outcome
	select {
	case out = <-ch:
	case <-ctx.Done():
		spinner.Stop()
		<-ch // let the pipeline notice cancellation and unwind
		return ctx.Err()
	}

	if out.err != nil {
		spinner.StopWithError("Card generation failed")
		return out.err
	}
	result := out.result

	spinner.StopWithSuccess(fmt.Sprintf("Card generated for %s", result.Record.ScientificName))
	printFile(result.PDFPath)
	if result.Fetched {
		printFetchStatus(result.CacheHit)
	}
	if result.Pages == 1 && c.Config.Paths.Template != "" {
		printDetail("card back missing; single page only")
	}
	for _, tr := range result.Truncations {
		printDetail("%s truncated %d → %d chars", tr.Field, tr.From, tr.To)
	}
	if len(result.Overflow) > 0 {
		printWarning("content did not fit: %s", strings.Join(result.Overflow, ", "))
	}
	return nil
}
