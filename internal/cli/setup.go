package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/formcoach/trendwatch/internal/config"
)

// newSetupCmd walks through the tracked sources interactively and
// persists the answers. Secrets are not asked for here, they stay in
// the environment.
func newSetupCmd(manager **config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively edit the tracked keywords and sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := *manager
			cfg := m.Get()

			questions := []*survey.Question{
				{
					Name: "keywords",
					Prompt: &survey.Multiline{
						Message: "Search keywords to track (one per line):",
						Default: strings.Join(cfg.Keywords, "\n"),
					},
				},
				{
					Name: "subreddits",
					Prompt: &survey.Multiline{
						Message: "Subreddits to watch (one per line, no r/ prefix):",
						Default: strings.Join(cfg.Subreddits, "\n"),
					},
				},
				{
					Name: "articles",
					Prompt: &survey.Multiline{
						Message: "Wikipedia articles to track (one per line, underscored titles):",
						Default: strings.Join(cfg.WikiArticles, "\n"),
					},
				},
				{
					Name: "queries",
					Prompt: &survey.Multiline{
						Message: "Question search terms (one per line):",
						Default: strings.Join(cfg.QuoraQueries, "\n"),
					},
				},
				{
					Name: "theme",
					Prompt: &survey.Input{
						Message: "Fallback theme when nothing moves:",
						Default: cfg.DefaultTheme,
					},
				},
			}

			answers := struct {
				Keywords   string
				Subreddits string
				Articles   string
				Queries    string
				Theme      string
			}{}
			if err := survey.Ask(questions, &answers); err != nil {
				return err
			}

			cfg.Keywords = splitLines(answers.Keywords)
			cfg.Subreddits = splitLines(answers.Subreddits)
			cfg.WikiArticles = splitLines(answers.Articles)
			cfg.QuoraQueries = splitLines(answers.Queries)
			if theme := strings.TrimSpace(answers.Theme); theme != "" {
				cfg.DefaultTheme = theme
			}

			if err := m.Update(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", m.Path())
			return nil
		},
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
