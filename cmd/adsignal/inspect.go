package main

import (
	"github.com/spf13/cobra"

	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/page"
)

func newInspectCmd(a *app) *cobra.Command {
	var snap models.PageSnapshot
	var out output

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Report the ad-influence verdict for a described page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := page.NewMemory(snap)
			v := a.engine.Evaluate(env)
			return out.print(cmd.OutOrStdout(), result{Verdict: v}, a.engine.Diagnose(env))
		},
	}
	pageFlags(cmd, &snap)
	outputFlags(cmd, &out)
	return cmd
}

func outputFlags(cmd *cobra.Command, o *output) {
	cmd.Flags().BoolVar(&o.json, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&o.html, "html", false, "Print the HTML panel fragment")
	cmd.Flags().BoolVar(&o.diagnostics, "diagnostics", false, "Include the diagnostics dump")
	cmd.MarkFlagsMutuallyExclusive("json", "html")
}
