package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kingrea/draftdesk/internal/artifact"
	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/generation"
	"github.com/kingrea/draftdesk/internal/logging"
	"github.com/kingrea/draftdesk/internal/source"
	"github.com/kingrea/draftdesk/internal/workflow"
)

type demoOptions struct {
	kind     string
	query    string
	topic    string
	url      string
	articles int
	html     bool
	quiet    bool
	save     bool
}

func demoCmd(projectDir *string) *cobra.Command {
	opts := demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the creation flow headless against the catalog",
		Long: `demo picks the first catalog entry for --source, accepts every
extracted block, applies the editor defaults from config and generates a
draft, printing each step to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDemo(ctx, cmd.OutOrStdout(), *projectDir, opts)
		},
	}
	cmd.Flags().StringVar(&opts.kind, "source", string(content.KindFeedArticles), "source kind: trending-topic, feed-articles, video, transcript or web-link")
	cmd.Flags().StringVar(&opts.query, "query", "", "trending topic search")
	cmd.Flags().StringVar(&opts.topic, "topic", "", "trending topic id (overrides --query)")
	cmd.Flags().StringVar(&opts.url, "url", "", "web link to extract (defaults to the first catalog page)")
	cmd.Flags().IntVar(&opts.articles, "articles", 2, "feed or candidate articles to pick")
	cmd.Flags().BoolVar(&opts.html, "html", false, "print the draft as HTML")
	cmd.Flags().BoolVar(&opts.save, "save", false, "export the draft to .draftdesk/drafts")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "omit progress lines")
	return cmd
}

func runDemo(ctx context.Context, out io.Writer, projectDir string, opts demoOptions) error {
	cfg, err := openProject(projectDir)
	if err != nil {
		return err
	}
	logger, err := logging.NewFile(cfg.LogPath(), cfg.LogLevel())
	if err != nil {
		return err
	}
	defer logger.Close()

	kind, err := content.ParseKind(opts.kind)
	if err != nil {
		return err
	}
	if kind == content.KindNone {
		return fmt.Errorf("--source is required")
	}
	catalog, err := source.LoadCatalog(cfg.CatalogPath())
	if err != nil {
		return err
	}
	payload, err := demoPayload(catalog, kind, opts)
	if err != nil {
		return err
	}
	src, err := content.NewSource(kind, payload)
	if err != nil {
		return err
	}

	store := workflow.NewStore(workflow.WithObserver(func(ev workflow.Event) {
		logger.WithFields(logging.Fields{"action": ev.Action, "step": ev.Step.String()}).Debug(ev.Detail)
	}))
	nav := workflow.NewNavigator(store)
	if err := store.SetSource(src); err != nil {
		return err
	}
	ext, err := source.NewDefaultRegistry(catalog).Extract(src)
	if err != nil {
		return err
	}
	store.ApplyExtraction(ext)
	fmt.Fprintf(out, "Source: %s · %s\n", kind.FriendlyName(), ext.Title)

	if _, err := nav.Advance(); err != nil {
		return err
	}
	sess := store.Snapshot()
	if ok, rej := nav.Check(); !ok {
		return fmt.Errorf("base text: %s", rej)
	}
	fmt.Fprintf(out, "\nBase text (%d of %d block(s), %d word(s)):\n%s\n",
		sess.BaseText.Selected.Count(), len(sess.BaseText.Blocks), store.TotalWordCount(), store.AssembleBaseText())
	if _, err := nav.Advance(); err != nil {
		return err
	}

	editor := cfg.Editor()
	store.SetConfiguration(workflow.ConfigPatch{
		Persona:      &editor.Persona,
		Tone:         &editor.Tone,
		CreditSource: &editor.CreditSource,
	})
	tr, err := nav.Advance()
	if err != nil {
		return err
	}

	runner := generation.Runner{
		Simulator: generation.Simulator{Step: cfg.GenerationStep()},
		Composer:  generation.NewComposer(),
		Interval:  cfg.GenerationTick(),
	}
	if !opts.quiet {
		runner.OnProgress = func(pct int) {
			fmt.Fprintf(out, "generating… %3d%%\n", pct)
		}
	}
	completed, err := runner.Run(ctx, store, tr.Ticket, nav.GenerationRequest())
	if err != nil {
		store.CancelGeneration()
		return fmt.Errorf("generate draft: %w", err)
	}
	if !completed {
		return fmt.Errorf("generate draft: run was superseded")
	}

	result := store.Snapshot().Result
	logger.WithFields(logging.Fields{"kind": kind, "title": result.Title}).Info("demo draft generated")
	body := result.Content
	if opts.html {
		body = result.HTML
	}
	fmt.Fprintf(out, "\nDraft · %d word(s)\n\n%s\n", content.CountWords(result.Content), body)
	if opts.save {
		draft, err := artifact.FromSession(store.Snapshot())
		if err != nil {
			return err
		}
		path, err := artifact.NewStore(cfg.DraftsDir()).Write(draft)
		if err != nil {
			return fmt.Errorf("export draft: %w", err)
		}
		fmt.Fprintf(out, "Saved: %s\n", path)
	}
	return nil
}

// demoPayload picks the catalog entry the demo runs against.
func demoPayload(cat *source.Catalog, kind content.Kind, opts demoOptions) (content.Payload, error) {
	limit := max(1, opts.articles)
	switch kind {
	case content.KindFeedArticles:
		if len(cat.Articles) == 0 {
			return nil, fmt.Errorf("catalog has no articles")
		}
		return content.FeedArticlesPayload{Articles: cat.Articles[:min(limit, len(cat.Articles))]}, nil
	case content.KindTrendingTopic:
		trending := source.NewTrendingAdapter(cat)
		topic, err := demoTopic(trending, opts)
		if err != nil {
			return nil, err
		}
		candidates := trending.CandidateArticles(topic)
		if len(candidates) == 0 {
			return content.TrendingTopicPayload{Topic: topic, SkipCuration: true}, nil
		}
		return content.TrendingTopicPayload{Topic: topic, Selected: candidates[:min(limit, len(candidates))]}, nil
	case content.KindVideo:
		if len(cat.Videos) == 0 {
			return nil, fmt.Errorf("catalog has no videos")
		}
		return cat.Videos[0].Payload(), nil
	case content.KindTranscript:
		if len(cat.Transcripts) == 0 {
			return nil, fmt.Errorf("catalog has no transcripts")
		}
		return cat.Transcripts[0].Payload(), nil
	case content.KindWebLink:
		rawURL := opts.url
		if rawURL == "" {
			if len(cat.Pages) == 0 {
				return nil, fmt.Errorf("--url is required: catalog has no pages")
			}
			rawURL = cat.Pages[0].URL
		}
		if err := source.ValidateURL(rawURL); err != nil {
			return nil, err
		}
		return content.WebLinkPayload{URL: rawURL}, nil
	}
	return nil, fmt.Errorf("unsupported source kind %q", kind)
}

func demoTopic(trending *source.TrendingAdapter, opts demoOptions) (content.Topic, error) {
	if opts.topic != "" {
		topic, ok := trending.FindTopic(opts.topic)
		if !ok {
			return content.Topic{}, fmt.Errorf("unknown trending topic %q", opts.topic)
		}
		return topic, nil
	}
	topics := trending.SearchTopics(opts.query)
	if len(topics) == 0 {
		return content.Topic{}, fmt.Errorf("no trending topic matches %q", opts.query)
	}
	return topics[0], nil
}
