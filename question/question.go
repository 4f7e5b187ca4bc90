// Package question turns a rendered problem page into a Markdown document.
package question

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Fallbacks used when no selector yields text.
const (
	UnknownTitle       = "Unknown Problem"
	UnknownDifficulty  = "Unknown Difficulty"
	UnknownDescription = "No description available"
)

// Record is one extracted problem. It is built once and never mutated.
type Record struct {
	Title       string
	Difficulty  string
	Description string
	URL         string
	ExtractedAt time.Time
}

// Selectors lists candidate CSS selectors per field, most specific first.
// A candidate may be a comma-separated group; its first match in document
// order wins, so a group is not the same as its members listed separately.
type Selectors struct {
	Title       []string
	Difficulty  []string
	Description []string
}

// DefaultSelectors matches the current problem page layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Title: []string{
			"a.text-title-large, h3.text-title-large, div.text-title-large",
		},
		Difficulty: []string{
			".text-difficulty-medium, .text-difficulty-easy, .text-difficulty-hard",
		},
		Description: []string{
			`div[data-track-load="description_content"]`,
			`div.leet-code-problem-content div[class*="content"]`,
		},
	}
}

type compiled struct {
	title       []cascadia.Selector
	difficulty  []cascadia.Selector
	description []cascadia.Selector
}

// compile drops selectors that do not parse; a typo in one candidate must
// not take the others down with it.
func compile(sels []string) []cascadia.Selector {
	out := make([]cascadia.Selector, 0, len(sels))
	for _, s := range sels {
		m, err := cascadia.Compile(s)
		if err != nil {
			slog.Warn("ignoring invalid selector", "selector", s, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// NormalizeDescription collapses runs of three or more newlines to two and
// trims the result.
func NormalizeDescription(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}

// parse never fails: missing fields fall back to their sentinel.
func parse(conv *converter.Converter, sels compiled, rawHTML, pageURL string) (title, difficulty, description string) {
	title, difficulty, description = UnknownTitle, UnknownDifficulty, UnknownDescription

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		slog.Warn("failed to parse page HTML", "error", err)
		return
	}

	if s := firstText(doc, sels.title); s != "" {
		title = s
	} else {
		slog.Debug("title selectors failed")
	}
	if s := firstText(doc, sels.difficulty); s != "" {
		difficulty = s
	} else {
		slog.Debug("difficulty selectors failed")
	}
	if s := firstDescription(conv, doc, sels.description, pageURL); s != "" {
		description = s
	} else {
		slog.Debug("description selectors failed")
	}
	return
}

func firstText(doc *goquery.Document, sels []cascadia.Selector) string {
	for _, m := range sels {
		if s := strings.TrimSpace(doc.FindMatcher(m).First().Text()); s != "" {
			return s
		}
	}
	return ""
}

func firstDescription(conv *converter.Converter, doc *goquery.Document, sels []cascadia.Selector, pageURL string) string {
	for _, m := range sels {
		sel := doc.FindMatcher(m).First()
		if sel.Length() == 0 {
			continue
		}
		if s := NormalizeDescription(descriptionText(conv, sel, pageURL)); s != "" {
			return s
		}
	}
	return ""
}

// descriptionText prefers Markdown so examples and constraints keep their
// structure; plain text is the fallback.
func descriptionText(conv *converter.Converter, sel *goquery.Selection, pageURL string) string {
	if fragment, err := goquery.OuterHtml(sel); err == nil {
		md, err := toMarkdown(conv, fragment, pageURL)
		if err == nil && strings.TrimSpace(md) != "" {
			return md
		}
		if err != nil {
			slog.Debug("markdown conversion failed, using plain text", "error", err)
		}
	}
	return innerText(sel.Nodes)
}
