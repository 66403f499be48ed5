package source

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kingrea/draftdesk/internal/content"
)

// minSentenceWords is the shortest sentence worth turning into a block.
const minSentenceWords = 4

var sentenceRe = regexp.MustCompile(`[^.!?…]+[.!?…]+["”»')]*|[^.!?…]+$`)

var (
	causeMarkers       = []string{"porque", "devido", "por causa", "em razão", "because", "due to", "since"}
	consequenceMarkers = []string{"portanto", "como resultado", "por isso", "consequentemente", "therefore", "as a result", "leads to"}
	actionMarkers      = []string{"anunciou", "vai ", "pretende", "aprovou", "lançou", "announced", "will ", "plans to"}
	quoteMarkers       = []string{"“", "\"", "«", "disse", "afirmou", "said"}
)

// SplitSentences performs naive sentence segmentation on terminal
// punctuation. Whitespace is collapsed; empty fragments are dropped.
func SplitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	var out []string
	for _, match := range sentenceRe.FindAllString(text, -1) {
		if s := strings.TrimSpace(match); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// UsableSentences keeps sentences long enough to stand alone as a block.
func UsableSentences(text string) []string {
	var out []string
	for _, s := range SplitSentences(text) {
		if content.CountWords(s) >= minSentenceWords {
			out = append(out, s)
		}
	}
	return out
}

// Classify tags a sentence with a taxonomy category. position is the
// sentence's index within its article; the opener is always the intro.
func Classify(sentence string, position int) content.Category {
	if position == 0 {
		return content.CategoryIntro
	}
	lower := strings.ToLower(sentence)
	switch {
	case containsAny(lower, quoteMarkers):
		return content.CategoryQuote
	case strings.IndexFunc(sentence, unicode.IsDigit) >= 0:
		return content.CategoryData
	case containsAny(lower, causeMarkers):
		return content.CategoryCause
	case containsAny(lower, consequenceMarkers):
		return content.CategoryConsequence
	case containsAny(lower, actionMarkers):
		return content.CategoryAction
	case position == 1:
		return content.CategoryContext
	}
	return content.CategoryFact
}

func containsAny(value string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(value, marker) {
			return true
		}
	}
	return false
}
