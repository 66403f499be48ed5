package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/draftdesk/internal/content"
	"github.com/kingrea/draftdesk/internal/debounce"
	"github.com/kingrea/draftdesk/internal/source"
)

type sourcePhase int

const (
	phaseKinds    sourcePhase = iota // source kind menu
	phaseTopics                      // trending topic search
	phaseArticles                    // article picker (feed or trending candidates)
	phaseEntries                     // video or transcript picker
	phaseURL                         // web link input
)

var kindDescriptions = map[content.Kind]string{
	content.KindTrendingTopic: "Search what people are talking about, then pick articles",
	content.KindFeedArticles:  "Curate sentences from articles in your feed",
	content.KindVideo:         "Work from a video's timed transcript",
	content.KindTranscript:    "Work from an uploaded transcript",
	content.KindWebLink:       "Extract the main text of a web page",
}

// kindItem implements list.Item for the source menu.
type kindItem struct {
	kind content.Kind
}

func (i kindItem) Title() string       { return i.kind.FriendlyName() }
func (i kindItem) Description() string { return kindDescriptions[i.kind] }
func (i kindItem) FilterValue() string { return string(i.kind) }

type pickEntry struct {
	id     string
	title  string
	detail string
}

type topicSearchMsg struct {
	ticket debounce.Ticket
}

type sourceView struct {
	app      *App
	phase    sourcePhase
	kind     content.Kind
	kinds    list.Model
	cursor   int
	search   textinput.Model
	searcher *debounce.Debouncer[string]
	topics   []content.Topic
	topic    content.Topic
	articles []content.Article
	picked   content.Selection
	entries  []pickEntry
	url      textinput.Model
}

func newSourceView(app *App) *sourceView {
	registered := map[content.Kind]bool{}
	for _, kind := range app.registry.Kinds() {
		registered[kind] = true
	}
	var items []list.Item
	for _, kind := range content.Kinds {
		if registered[kind] {
			items = append(items, kindItem{kind: kind})
		}
	}
	kinds := list.New(items, list.NewDefaultDelegate(), 0, 0)
	kinds.Title = "Choose a source"
	kinds.SetShowStatusBar(false)
	kinds.SetFilteringEnabled(false)
	kinds.SetShowHelp(false)
	kinds.KeyMap.Quit.SetEnabled(false)
	kinds.SetSize(60, 16)

	return &sourceView{
		app:      app,
		kinds:    kinds,
		search:   newTextInput("Search trending topics", 80),
		searcher: debounce.New[string](app.config.DebounceWindow()),
		url:      newTextInput("https://", 2048),
	}
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 48
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func (v *sourceView) enter() tea.Cmd {
	v.searcher.Cancel()
	v.search.Blur()
	v.url.Blur()
	v.phase = phaseKinds
	v.cursor = 0
	current := v.app.store.Snapshot().Source.Kind
	for idx, item := range v.kinds.Items() {
		if ki, ok := item.(kindItem); ok && ki.kind == current {
			v.kinds.Select(idx)
		}
	}
	return nil
}

func (v *sourceView) discard() {
	v.searcher.Cancel()
}

func (v *sourceView) resize(width, height int) {
	v.kinds.SetSize(width, max(8, height))
	v.search.Width = max(10, width-12)
	v.url.Width = max(10, width-8)
}

func (v *sourceView) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case topicSearchMsg:
		query, ok := v.searcher.Commit(m.ticket)
		if !ok {
			return nil
		}
		v.applyQuery(query)
		return nil
	case tea.KeyMsg:
		switch v.phase {
		case phaseTopics:
			return v.handleTopicKey(m)
		case phaseArticles:
			return v.handleArticleKey(m)
		case phaseEntries:
			return v.handleEntryKey(m)
		case phaseURL:
			return v.handleURLKey(m)
		default:
			if m.String() == "enter" {
				if item, ok := v.kinds.SelectedItem().(kindItem); ok {
					return v.open(item.kind)
				}
				return nil
			}
			var cmd tea.Cmd
			v.kinds, cmd = v.kinds.Update(m)
			return cmd
		}
	}
	return nil
}

// open starts the picker for kind.
func (v *sourceView) open(kind content.Kind) tea.Cmd {
	v.kind = kind
	v.cursor = 0
	v.picked = content.Selection{}
	v.topic = content.Topic{}
	cat := v.app.catalog
	switch kind {
	case content.KindTrendingTopic:
		v.phase = phaseTopics
		v.search.SetValue("")
		v.applyQuery("")
		return v.search.Focus()
	case content.KindFeedArticles:
		v.phase = phaseArticles
		v.articles = cat.Articles
	case content.KindVideo:
		v.phase = phaseEntries
		v.entries = v.entries[:0]
		for _, video := range cat.Videos {
			v.entries = append(v.entries, pickEntry{id: video.ID, title: video.Title, detail: fmt.Sprintf("%d segment(s)", len(video.Segments))})
		}
	case content.KindTranscript:
		v.phase = phaseEntries
		v.entries = v.entries[:0]
		for _, tr := range cat.Transcripts {
			v.entries = append(v.entries, pickEntry{id: tr.ID, title: tr.Title, detail: fmt.Sprintf("%d segment(s)", len(tr.Segments))})
		}
	case content.KindWebLink:
		v.phase = phaseURL
		v.url.SetValue("")
		return v.url.Focus()
	}
	return nil
}

func (v *sourceView) applyQuery(query string) {
	v.topics = v.app.trending.SearchTopics(query)
	v.cursor = 0
}

func (v *sourceView) handleTopicKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.searcher.Cancel()
		v.search.Blur()
		v.phase = phaseKinds
		return nil
	case "up":
		v.cursor = clampCursor(v.cursor-1, len(v.topics))
		return nil
	case "down":
		v.cursor = clampCursor(v.cursor+1, len(v.topics))
		return nil
	case "enter":
		if v.searcher.Pending() {
			v.searcher.Cancel()
			v.applyQuery(v.search.Value())
		}
		if len(v.topics) == 0 {
			v.app.setStatus("No topic matches the search")
			return nil
		}
		v.topic = v.topics[v.cursor]
		v.articles = v.app.trending.CandidateArticles(v.topic)
		v.picked = content.Selection{}
		v.cursor = 0
		v.search.Blur()
		v.phase = phaseArticles
		v.app.setStatus(fmt.Sprintf("%d article(s) about %s", len(v.articles), v.topic.Name))
		return nil
	}
	before := v.search.Value()
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	if value := v.search.Value(); value != before {
		ticket := v.searcher.Schedule(value)
		search := tea.Tick(v.searcher.Window(), func(time.Time) tea.Msg {
			return topicSearchMsg{ticket: ticket}
		})
		return tea.Batch(cmd, search)
	}
	return cmd
}

func (v *sourceView) handleArticleKey(msg tea.KeyMsg) tea.Cmd {
	trending := v.kind == content.KindTrendingTopic
	switch msg.String() {
	case "esc":
		if trending {
			v.phase = phaseTopics
			v.cursor = 0
			return v.search.Focus()
		}
		v.phase = phaseKinds
	case "up", "k":
		v.cursor = clampCursor(v.cursor-1, len(v.articles))
	case "down", "j":
		v.cursor = clampCursor(v.cursor+1, len(v.articles))
	case " ":
		if len(v.articles) > 0 {
			v.picked = v.picked.Toggle(v.articles[v.cursor].ID)
		}
	case "a":
		ids := articleIDs(v.articles)
		if v.picked.Count() == len(ids) {
			v.picked = v.picked.Clear()
		} else {
			v.picked = v.picked.SelectAll(ids)
		}
	case "s":
		if trending {
			v.app.logInfo("Continuing %s without curated articles", v.topic.Name)
			return v.commit(content.TrendingTopicPayload{Topic: v.topic, SkipCuration: true})
		}
	case "enter":
		picked := v.pickedArticles()
		if len(picked) == 0 {
			if trending {
				v.app.setStatus("Pick articles with space, or press s to continue without curating")
			} else {
				v.app.setStatus("Pick at least one article with space")
			}
			return nil
		}
		if trending {
			return v.commit(content.TrendingTopicPayload{Topic: v.topic, Selected: picked})
		}
		return v.commit(content.FeedArticlesPayload{Articles: picked})
	}
	return nil
}

func (v *sourceView) handleEntryKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.phase = phaseKinds
	case "up", "k":
		v.cursor = clampCursor(v.cursor-1, len(v.entries))
	case "down", "j":
		v.cursor = clampCursor(v.cursor+1, len(v.entries))
	case "enter":
		if len(v.entries) == 0 {
			return nil
		}
		id := v.entries[v.cursor].id
		if v.kind == content.KindVideo {
			if video, ok := v.app.catalog.Video(id); ok {
				return v.commit(video.Payload())
			}
		} else if tr, ok := v.app.catalog.Transcript(id); ok {
			return v.commit(tr.Payload())
		}
		v.app.setStatus(fmt.Sprintf("%s %s is no longer available", v.kind.FriendlyName(), id))
	}
	return nil
}

func (v *sourceView) handleURLKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.url.Blur()
		v.phase = phaseKinds
		return nil
	case "enter":
		rawURL := strings.TrimSpace(v.url.Value())
		if err := source.ValidateURL(rawURL); err != nil {
			v.app.setStatus(fmt.Sprintf("Invalid link: %v", err))
			return nil
		}
		return v.commit(content.WebLinkPayload{URL: rawURL})
	}
	var cmd tea.Cmd
	v.url, cmd = v.url.Update(msg)
	return cmd
}

// commit replaces the session source, runs its adapter and moves on to
// curation.
func (v *sourceView) commit(payload content.Payload) tea.Cmd {
	src, err := content.NewSource(v.kind, payload)
	if err == nil {
		err = v.app.store.SetSource(src)
	}
	if err != nil {
		v.app.setStatus(fmt.Sprintf("Source rejected: %v", err))
		v.app.logError("Source rejected: %v", err)
		return nil
	}
	ext, err := v.app.registry.Extract(src)
	if err != nil {
		v.app.setStatus(fmt.Sprintf("Extraction failed: %v", err))
		v.app.logError("Extraction failed: %v", err)
		return nil
	}
	v.app.store.ApplyExtraction(ext)
	switch {
	case ext.Skipped:
		v.app.logInfo("%s · %s (curation skipped)", src.Kind.FriendlyName(), ext.Title)
	case ext.Empty():
		v.app.logWarn("%s · nothing to curate: %s", src.Kind.FriendlyName(), ext.Reason)
	default:
		v.app.logInfo("%s · %s · %d block(s), %d word(s)", src.Kind.FriendlyName(), ext.Title, len(ext.Blocks), ext.WordCount())
	}
	v.search.Blur()
	v.url.Blur()
	v.phase = phaseKinds
	return v.app.advance()
}

func (v *sourceView) pickedArticles() []content.Article {
	var out []content.Article
	for _, article := range v.articles {
		if v.picked.Has(article.ID) {
			out = append(out, article)
		}
	}
	return out
}

func articleIDs(articles []content.Article) []string {
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	return ids
}

func (v *sourceView) view() string {
	switch v.phase {
	case phaseTopics:
		rows := make([]string, len(v.topics))
		for i, t := range v.topics {
			rows[i] = fmt.Sprintf("%s %s  %s", t.Direction.Arrow(), t.Name, detailTextStyle.Render(fmt.Sprintf("%d · %s", t.Popularity, t.Origin)))
		}
		return strings.Join([]string{
			"Trending topics",
			"Search: " + v.search.View(),
			"",
			renderCursorList(rows, v.cursor, nil),
		}, "\n")
	case phaseArticles:
		heading := "Feed articles"
		if v.kind == content.KindTrendingTopic {
			heading = fmt.Sprintf("Articles about %s", v.topic.Name)
		}
		rows := make([]string, len(v.articles))
		for i, a := range v.articles {
			row := a.Title
			if a.Outlet != "" {
				row += detailTextStyle.Render(" · " + a.Outlet)
			}
			rows[i] = row
		}
		body := renderCursorList(rows, v.cursor, func(i int) (bool, bool) {
			return v.picked.Has(v.articles[i].ID), true
		})
		if len(v.articles) == 0 && v.kind == content.KindTrendingTopic {
			body = labelStyleSkipped.Render("No articles cover this topic yet. Press s to continue without curating.")
		}
		return strings.Join([]string{
			heading,
			fmt.Sprintf("%d of %d picked", v.picked.Count(), len(v.articles)),
			"",
			body,
		}, "\n")
	case phaseEntries:
		rows := make([]string, len(v.entries))
		for i, e := range v.entries {
			rows[i] = fmt.Sprintf("%s %s", e.title, detailTextStyle.Render("· "+e.detail))
		}
		return strings.Join([]string{v.kind.FriendlyName() + "s", "", renderCursorList(rows, v.cursor, nil)}, "\n")
	case phaseURL:
		return strings.Join([]string{"Web link", "", "URL: " + v.url.View()}, "\n")
	}
	out := v.kinds.View()
	if current := v.app.store.Snapshot().Source; !current.IsZero() {
		note := fmt.Sprintf("Current source: %s · picking another replaces the base text", current.Kind.FriendlyName())
		out = strings.Join([]string{out, detailTextStyle.Render(note)}, "\n")
	}
	return out
}

func (v *sourceView) help() string {
	switch v.phase {
	case phaseTopics:
		return "type=search  ↑/↓=move  enter=pick topic  esc=back"
	case phaseArticles:
		if v.kind == content.KindTrendingTopic {
			return "space=pick  a=all/none  enter=continue  s=skip curation  esc=back"
		}
		return "space=pick  a=all/none  enter=continue  esc=back"
	case phaseEntries:
		return "↑/↓=move  enter=open  esc=back"
	case phaseURL:
		return "enter=extract  esc=back"
	}
	return "↑/↓=move  enter=choose"
}
