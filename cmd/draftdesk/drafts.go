package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/draftdesk/internal/artifact"
)

func draftsCmd(projectDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "drafts",
		Short: "List exported drafts and verify their checksums",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := openProject(*projectDir)
			if err != nil {
				return err
			}
			results, err := artifact.NewStore(cfg.DraftsDir()).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No exported drafts.")
				return nil
			}
			for _, result := range results {
				name := filepath.Base(result.Path)
				if result.Metadata == nil {
					fmt.Fprintf(out, "%-8s %s: %v\n", result.State, name, result.Err)
					continue
				}
				meta := result.Metadata
				fmt.Fprintf(out, "%-8s %s · %s · %s · %d word(s)\n", result.State, name, meta.Source, meta.Title, meta.Words)
				if result.Err != nil {
					fmt.Fprintf(out, "         %v\n", result.Err)
				}
			}
			return nil
		},
	}
}
