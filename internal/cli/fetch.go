package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leafvessel/carecard/pkg/plant"
)

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "fetch <scientific name>",
		Short: "Fetch care data for a plant and store it",
		Long: `Fetch care data for a plant from the remote service and store it,
replacing any existing record. No card is rendered; use 'generate' for that.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), strings.Join(args, " "), noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	return cmd
}

func (c *CLI) runFetch(ctx context.Context, name string, noCache bool) error {
	runner, st, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer st.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching care data for %s...", name))
	spinner.Start()

	type outcome struct {
		rec      *plant.Record
		cacheHit bool
		err      error
	}
	ch := make(chan outcome, 1)
	go func() {
		rec, cacheHit, err := runner.Fetch(ctx, name)
		ch <- outcome{rec, cacheHit, err}
	}()

	var out outcome
	select {
	case out = <-ch:
	case <-ctx.Done():
		spinner.Stop()
		<-ch
		return ctx.Err()
	}

	if out.err != nil {
		spinner.StopWithError("Fetch failed")
		return out.err
	}

	spinner.StopWithSuccess(fmt.Sprintf("Care data stored for %s", out.rec.ScientificName))
	printFetchStatus(out.cacheHit)
	printNewline()
	printRecord(*out.rec)
	return nil
}

// printRecord prints every populated field of a record.
func printRecord(rec plant.Record) {
	printKeyValue("Scientific", rec.ScientificName)
	if rec.CommonName != "" {
		printKeyValue("Common", rec.CommonName)
	}
	if rec.Description != "" {
		printKeyValue("Description", rec.Description)
	}
	for _, f := range rec.CareFields() {
		if f.Value != "" {
			printKeyValue(strings.TrimSuffix(f.Label, ":"), f.Value)
		}
	}
}
