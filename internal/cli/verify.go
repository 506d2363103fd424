package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leafvessel/carecard/pkg/anthropic"
	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/plant"
	"github.com/leafvessel/carecard/pkg/store"
)

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	var (
		plantName string
		apply     bool
	)

	cmd := &cobra.Command{
		Use:   "verify <feedback...>",
		Short: "Verify user feedback against stored care data",
		Long: `Send a piece of feedback about stored care data to the remote service
for verification. The service identifies the plant and field concerned,
agrees or disagrees with citations, and suggests a corrected value.

With --apply, corrections the service agrees with are written back to the
database (field limits apply as usual).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVerify(cmd.Context(), strings.Join(args, " "), plantName, apply)
		},
	}

	cmd.Flags().StringVarP(&plantName, "plant", "p", "", "restrict verification to one plant")
	cmd.Flags().BoolVar(&apply, "apply", false, "apply corrections the service agrees with")
	return cmd
}

func (c *CLI) runVerify(ctx context.Context, feedback, plantName string, apply bool) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.List(ctx)
	if err != nil {
		return err
	}

	client := c.newClient()

	spinner := newSpinnerWithContext(ctx, "Verifying feedback...")
	spinner.Start()

	type outcome struct {
		result *anthropic.VerifyResult
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		result, err := client.VerifyFeedback(ctx, feedback, records, plantName)
		ch <- outcome{result, err}
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
		spinner.StopWithError("Verification failed")
		return out.err
	}
	spinner.Stop()

	result := out.result
	fmt.Println(StyleValue.Render(result.ResponseText))
	printNewline()

	if len(result.Corrections) == 0 {
		printInfo("No corrections suggested")
		return nil
	}

	applied := 0
	for _, corr := range result.Corrections {
		printCorrection(corr)
		if apply && corr.Agreed() {
			if err := applyCorrection(ctx, st, corr); err != nil {
				printWarning("could not apply correction for %s: %v", corr.Plant, err)
				continue
			}
			applied++
		}
	}
	if apply {
		printNewline()
		printSuccess("Applied %d correction(s)", applied)
	}
	return nil
}

func printCorrection(corr anthropic.Correction) {
	verdict := styleIconSuccess.Render("agree")
	if !corr.Agreed() {
		verdict = styleIconError.Render("disagree")
	}
	fmt.Printf("%s %s %s %s\n",
		verdict,
		styleLatin.Render(corr.Plant),
		StyleDim.Render(corr.Field+":"),
		StyleValue.Render(corr.RecommendedValue))
	if corr.Reasoning != "" {
		printDetail("%s", corr.Reasoning)
	}
	if len(corr.Citations) > 0 {
		printDetail("sources: %s", strings.Join(corr.Citations, "; "))
	}
}

// applyCorrection rebuilds the record with the corrected field and stores
// it. The field name comes from the model and is validated first; WithField
// silently ignores unknown names, which would otherwise report a correction
// as applied without changing anything.
func applyCorrection(ctx context.Context, st store.Store, corr anthropic.Correction) error {
	if !knownCareField(corr.Field) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown care field %q", corr.Field)
	}
	rec, err := st.Get(ctx, corr.Plant)
	if err != nil {
		return err
	}
	value := corr.RecommendedValue
	if value == "" {
		value = corr.SuggestedValue
	}
	return st.Upsert(ctx, rec.WithField(corr.Field, value))
}

func knownCareField(name string) bool {
	for _, f := range plant.LimitedFields() {
		if f == name {
			return true
		}
	}
	return false
}
