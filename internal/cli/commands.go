package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formcoach/trendwatch/internal/collectors"
	"github.com/formcoach/trendwatch/internal/config"
	"github.com/formcoach/trendwatch/internal/logging"
	"github.com/formcoach/trendwatch/internal/pipeline"
	"github.com/formcoach/trendwatch/internal/render"
	"github.com/formcoach/trendwatch/internal/snapshot"
	"github.com/formcoach/trendwatch/internal/strategy"
)

var version = "0.3.0"

// NewRootCmd wires the command tree.
func NewRootCmd() *cobra.Command {
	var manager *config.Manager

	rootCmd := &cobra.Command{
		Use:   "trendwatch",
		Short: "Weekly trend research briefs for a fitness content niche",
		Long: `trendwatch collects search interest, forum discussions, encyclopedia
pageviews and open questions once a week, compares them against the
previous run, and emails a research brief with a content strategy.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			var opts []config.ManagerOption
			if configDir != "" {
				opts = append(opts, config.WithConfigDir(configDir))
			}
			var err error
			manager, err = config.NewManager(opts...)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config-dir", "", "directory holding config.json (default ~/.trendwatch)")

	rootCmd.AddCommand(newRunCmd(&manager))
	rootCmd.AddCommand(newSnapshotsCmd(&manager))
	rootCmd.AddCommand(newConfigCmd(&manager))
	rootCmd.AddCommand(newSetupCmd(&manager))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newRunCmd(manager **config.Manager) *cobra.Command {
	var opts pipeline.Options
	var noCache bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the weekly collection and send the brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := (*manager).Get()
			cfg.LoadEnv()
			if noCache {
				cfg.CacheEnabled = false
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("create directories: %w", err)
			}

			log := logging.New(cfg.LogLevel)
			store := snapshot.NewStore(cfg.DataDir, log)

			var provider strategy.Provider
			if cfg.AnthropicAPIKey != "" {
				provider = strategy.NewAnthropicProvider(&cfg, log)
			}

			p := pipeline.New(&cfg, log, store,
				collectors.NewTrendsClient(&cfg, log),
				collectors.NewRedditClient(&cfg, log),
				collectors.NewWikipediaClient(&cfg, log),
				collectors.NewQuoraClient(&cfg, log),
				provider,
				render.NewSender(&cfg),
			)

			result, err := p.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), RenderRunSummary(result, opts.Preview))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.RunDate, "date", "", "run date in YYYY-MM-DD format (default today)")
	cmd.Flags().BoolVar(&opts.Preview, "preview", false, "render the brief without sending or saving a snapshot")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace an existing snapshot for the same date")
	cmd.Flags().BoolVar(&opts.WithRising, "with-rising", true, "pull rising queries per keyword")
	cmd.Flags().BoolVar(&opts.SkipTrends, "skip-trends", false, "skip the search interest source")
	cmd.Flags().BoolVar(&opts.SkipReddit, "skip-reddit", false, "skip the forum source")
	cmd.Flags().BoolVar(&opts.SkipWiki, "skip-wiki", false, "skip the pageview source")
	cmd.Flags().BoolVar(&opts.SkipQuora, "skip-quora", false, "skip the question source")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the collector cache")

	return cmd
}

func newSnapshotsCmd(manager **config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List stored weekly snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := (*manager).Get()
			cfg.LoadEnv()
			log := logging.New(cfg.LogLevel)
			store := snapshot.NewStore(cfg.DataDir, log)

			dates, err := store.List()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), RenderSnapshotList(dates))
			return nil
		},
	}
}

func newConfigCmd(manager **config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := *manager
			fmt.Fprintf(cmd.OutOrStdout(), "config file: %s\n\n", m.Path())
			data, err := os.ReadFile(m.Path())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "trendwatch %s\n", version)
		},
	}
}
