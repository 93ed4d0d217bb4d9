package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/config"
	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/observability"
)

// app carries the state shared by all subcommands.
type app struct {
	cfg          config.Config
	verbose      bool
	patternsFile string
	strict       bool

	logger *zap.Logger
	engine *logic.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Load()}

	root := &cobra.Command{
		Use:           "adsignal",
		Short:         "Detect advertising influence on a page visit",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	root.PersistentFlags().StringVar(&a.patternsFile, "patterns", a.cfg.PatternsFile, "YAML file overriding the detection rules")
	root.PersistentFlags().BoolVar(&a.strict, "strict", a.cfg.StrictParamKeys, "Match 'ad' in parameter keys only as a whole token")

	root.AddCommand(newInspectCmd(a), newRemoveCmd(a), newBrowseCmd(a))
	return root
}

func (a *app) init() error {
	logger, err := observability.InitCLILogger(a.verbose)
	if err != nil {
		return err
	}
	patterns, err := logic.LoadPatterns(a.patternsFile, a.strict)
	if err != nil {
		return err
	}
	a.logger = logger
	a.engine = logic.NewEngine(patterns, logger, observability.NewNoOpRegistry())
	return nil
}

// pageFlags binds the flags describing a page snapshot.
func pageFlags(cmd *cobra.Command, s *models.PageSnapshot) {
	cmd.Flags().StringVar(&s.URL, "url", "", "Page URL including the query string")
	cmd.Flags().StringVar(&s.Cookie, "cookie", "", "Raw cookie string (name=value; name2=value2)")
	cmd.Flags().StringVar(&s.Referrer, "referrer", "", "Referring URL")
	cmd.Flags().StringVar(&s.UserAgent, "user-agent", "", "Browser user agent")
	_ = cmd.MarkFlagRequired("url")
}
