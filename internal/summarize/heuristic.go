package summarize

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/navjots35/newsxai/internal/article"
	"github.com/navjots35/newsxai/internal/config"
)

const (
	maxHeadlineChars = 120
	summarySentences = 3
	minKeywordLength = 3
)

// Heuristic is a deterministic, offline summarizer: the first sentence
// becomes the headline, the following sentences the summary, and the most
// frequent non-stopword terms the keywords. Wording quality is below an
// LLM's, but the record shape is identical and runs are reproducible.
type Heuristic struct {
	preserveDiagnostics bool
}

var _ Summarizer = (*Heuristic)(nil)

// NewHeuristic builds the extractive summarizer.
func NewHeuristic(cfg config.Config) *Heuristic {
	return &Heuristic{preserveDiagnostics: cfg.PreserveDiagnostics}
}

// Summarize derives the record from the text alone. Error-variant inputs
// short-circuit into an error record; empty content is a content error,
// not a defect.
func (h *Heuristic) Summarize(ctx context.Context, text *article.Text) (article.Record, error) {
	if text.IsError() {
		return errorRecord(text, h.preserveDiagnostics), nil
	}

	sentences := splitSentences(text.Content)
	if len(sentences) == 0 {
		return errorRecord(text, false), nil
	}

	headline := clipHeadline(sentences[0])

	var summary string
	if len(sentences) > 1 {
		end := 1 + summarySentences
		if end > len(sentences) {
			end = len(sentences)
		}
		summary = strings.Join(sentences[1:end], " ")
	} else {
		summary = sentences[0]
	}

	keywords := topKeywords(text.Content, maxKeywords)
	if len(keywords) == 0 {
		// Degenerate input: fall back to the headline terms so the record
		// keeps its shape.
		keywords = topKeywords(headline, maxKeywords)
	}
	if len(keywords) == 0 {
		return errorRecord(text, false), nil
	}

	return article.Record{
		Headline: headline,
		Summary:  summary,
		Keywords: keywords,
	}, nil
}

// splitSentences cuts text into trimmed sentences. Terminators are '.',
// '!', '?' followed by whitespace, and line breaks. Deterministic by
// construction; no language model involved.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()

	return sentences
}

func clipHeadline(s string) string {
	runes := []rune(s)
	if len(runes) <= maxHeadlineChars {
		return s
	}
	clipped := string(runes[:maxHeadlineChars])
	if idx := strings.LastIndex(clipped, " "); idx > 0 {
		clipped = clipped[:idx]
	}
	return clipped
}

// topKeywords returns the up-to-n most frequent non-stopword terms, most
// frequent first, ties broken alphabetically for determinism.
func topKeywords(text string, n int) []string {
	counts := make(map[string]int)

	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		word = strings.Trim(word, "-")
		if len(word) < minKeywordLength {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		counts[word]++
	}

	type kv struct {
		word  string
		count int
	}
	ranked := make([]kv, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, kv{w, c})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	keywords := make([]string, len(ranked))
	for i, r := range ranked {
		keywords[i] = r.word
	}
	return keywords
}

// stopwords is a small English function-word list; enough to keep articles'
// connective tissue out of the keyword ranking.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "him": {},
	"his": {}, "how": {}, "its": {}, "may": {}, "new": {}, "now": {},
	"old": {}, "see": {}, "two": {}, "way": {}, "who": {}, "did": {},
	"get": {}, "that": {}, "this": {}, "with": {}, "from": {},
	"they": {}, "will": {}, "would": {}, "there": {}, "their": {},
	"what": {}, "about": {}, "which": {}, "when": {}, "were": {},
	"been": {}, "more": {}, "also": {}, "into": {}, "than": {},
	"other": {}, "some": {}, "such": {}, "only": {}, "over": {},
	"most": {}, "after": {}, "first": {}, "them": {}, "these": {},
	"said": {}, "says": {}, "could": {}, "while": {}, "where": {},
	"being": {}, "between": {}, "both": {}, "because": {}, "does": {},
	"during": {}, "each": {}, "under": {}, "before": {}, "against": {},
	"through": {}, "since": {}, "without": {}, "within": {}, "among": {},
}
