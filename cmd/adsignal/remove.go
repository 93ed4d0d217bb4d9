package main

import (
	"github.com/spf13/cobra"

	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/page"
)

func newRemoveCmd(a *app) *cobra.Command {
	var snap models.PageSnapshot
	var out output
	var names []string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Strip named beneficiaries from a described page and re-evaluate it",
		Long: "Strip named beneficiaries (e.g. url-utm_source, cookie-_ga) from the page.\n" +
			"The referrer and names no longer present are left alone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := page.NewMemory(snap)
			v, err := removeAll(a, env, names)
			if err != nil {
				return err
			}
			after := env.Snapshot()
			r := result{Page: &after, Verdict: v, SetCookie: models.CookieLines(env.CookieWrites())}
			return out.print(cmd.OutOrStdout(), r, a.engine.Diagnose(env))
		},
	}
	pageFlags(cmd, &snap)
	outputFlags(cmd, &out)
	cmd.Flags().StringSliceVar(&names, "name", nil, "Beneficiary name to remove (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// removeAll removes each name in turn, re-evaluating in between.
func removeAll(a *app, env logic.Environment, names []string) (models.Verdict, error) {
	v := a.engine.Evaluate(env)
	for _, name := range names {
		var err error
		if v, err = a.engine.RemoveByName(env, name); err != nil {
			return v, err
		}
	}
	return v, nil
}
