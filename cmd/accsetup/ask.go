package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"accsetup/internal/advisor"
	"accsetup/internal/catalog"
	"accsetup/internal/setup"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var sel advisor.Selection
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Pick a car, track and style, then refine the setup interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			lang := d.lang(opts.lang)
			if sel.Car == "" || sel.Track == "" || sel.Style == "" {
				if err := pickSelection(d.cat, lang, &sel); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return err
				}
			}
			if err := d.cat.Check(sel.Car, sel.Track, sel.Style); err != nil {
				return err
			}
			return runAsk(cmd.Context(), cmd.OutOrStdout(), d.advisor, sel, lang, promptFeedback)
		},
	}
	cmd.Flags().StringVar(&sel.Car, "car", "", "car name; skips the car select")
	cmd.Flags().StringVar(&sel.Track, "track", "", "track name; skips the track select")
	cmd.Flags().StringVar(&sel.Style, "style", "", "driving style; skips the style select")
	return cmd
}

// pickSelection fills the empty fields of sel from select forms.
func pickSelection(cat *catalog.Catalog, lang string, sel *advisor.Selection) error {
	var fields []huh.Field
	if sel.Car == "" {
		opts := make([]huh.Option[string], 0, len(cat.Cars))
		for _, c := range cat.Cars {
			opts = append(opts, huh.NewOption(c.Label(), c.Name))
		}
		fields = append(fields, huh.NewSelect[string]().Title(titleCar.in(lang)).Options(opts...).Value(&sel.Car))
	}
	if sel.Track == "" {
		fields = append(fields, huh.NewSelect[string]().Title(titleTrack.in(lang)).Options(huh.NewOptions(cat.Tracks...)...).Value(&sel.Track))
	}
	if sel.Style == "" {
		fields = append(fields, huh.NewSelect[string]().Title(titleStyle.in(lang)).Options(huh.NewOptions(cat.Styles...)...).Value(&sel.Style))
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

// feedbackFunc returns the next feedback; "" ends the loop.
type feedbackFunc func(lang string) (string, error)

func promptFeedback(lang string) (string, error) {
	var feedback string
	err := huh.NewForm(huh.NewGroup(
		huh.NewText().Title(titleFeedback.in(lang)).Value(&feedback),
	)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", nil
	}
	return strings.TrimSpace(feedback), err
}

// runAsk generates a setup and refines it until next returns "". A failed
// refine is reported and the loop continues on the same session.
func runAsk(ctx context.Context, w io.Writer, adv *advisor.Client, sel advisor.Selection, lang string, next feedbackFunc) error {
	fmt.Fprintln(w, dimStyle.Render(msgGenerating.in(lang)))
	session, current, err := adv.BeginSession(ctx, sel)
	if err != nil {
		return errors.New(advisor.UserMessage(err, lang))
	}
	defer session.Close()
	printSetup(w, current, lang, nil, false)

	for {
		feedback, err := next(lang)
		if err != nil {
			return err
		}
		if feedback == "" {
			return nil
		}

		fmt.Fprintln(w, dimStyle.Render(msgRefining.in(lang)))
		refined, err := adv.Refine(ctx, session, feedback)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(w, errorStyle.Render(advisor.UserMessage(err, lang)))
			continue
		}
		changes := setup.Diff(current, refined)
		current = refined
		printSetup(w, current, lang, changes, true)
	}
}

func printSetup(w io.Writer, s setup.Setup, lang string, changes []setup.Change, refined bool) {
	fmt.Fprintln(w, renderSummary(s.Summary, 100))
	fmt.Fprintln(w, renderSetup(s, lang, changedPaths(changes)))
	if refined {
		fmt.Fprintln(w, headingStyle.Render(headChanges.in(lang)))
		fmt.Fprintln(w, renderChanges(changes, lang))
	}
}
