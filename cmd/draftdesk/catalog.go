package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/draftdesk/internal/source"
)

func catalogCmd(projectDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the candidate catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [FILE]",
		Short: "Validate a catalog YAML file",
		Long: `validate parses FILE and reports duplicate ids, articles tagged with
unknown topics and pages with invalid URLs. Without FILE it checks the
catalog configured for the project, or the bundled one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := openProject(*projectDir)
				if err != nil {
					return err
				}
				path = cfg.CatalogPath()
			}
			cat, err := source.LoadCatalog(path)
			if err != nil {
				return fmt.Errorf("invalid catalog: %w", err)
			}
			if path == "" {
				path = "bundled catalog"
			}
			topics := len(source.NewTrendingAdapter(cat).Topics())
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (%d topic(s), %d article(s), %d video(s), %d transcript(s), %d page(s))\n",
				path, topics, len(cat.Articles), len(cat.Videos), len(cat.Transcripts), len(cat.Pages))
			return nil
		},
	})
	return cmd
}
