package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/page"
)

func newBrowseCmd(a *app) *cobra.Command {
	var out output
	var names []string
	opts := page.BrowserOptions{}

	cmd := &cobra.Command{
		Use:   "browse <url>",
		Short: "Open a URL in Chrome and report the verdict for the loaded tab",
		Long: "Open a URL in a (headless) Chrome tab, evaluate the page as the browser sees it\n" +
			"and optionally remove beneficiaries in place without reloading.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := page.OpenBrowser(cmd.Context(), args[0], opts)
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer closeFn()

			v, err := removeAll(a, b, names)
			if err != nil {
				return err
			}

			r := result{Verdict: v}
			if len(names) > 0 {
				u, err := b.ReadURL()
				if err != nil {
					return fmt.Errorf("read tab url: %w", err)
				}
				c, err := b.ReadCookies()
				if err != nil {
					return fmt.Errorf("read tab cookies: %w", err)
				}
				r.Page = &models.PageSnapshot{URL: u, Cookie: c}
			}
			a.logger.Debug("browsed page",
				zap.String("url", args[0]),
				zap.Bool("influenced", v.IsAdInfluenced))
			return out.print(cmd.OutOrStdout(), r, a.engine.Diagnose(b))
		},
	}
	outputFlags(cmd, &out)
	cmd.Flags().StringSliceVar(&names, "remove", nil, "Beneficiary name to remove from the tab (repeatable)")
	cmd.Flags().BoolVar(&opts.Headless, "headless", a.cfg.BrowserHeadless, "Run Chrome without a window")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", a.cfg.BrowserTimeout, "Overall browser timeout")
	cmd.Flags().StringVar(&opts.ControlURL, "control-url", a.cfg.BrowserControlURL, "DevTools URL of a running browser to attach to")
	return cmd
}
