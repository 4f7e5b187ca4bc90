package question

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/use-agent/algoserve/config"
	"github.com/use-agent/algoserve/models"
)

// isoMillis mirrors JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Page is the slice of a problem tab the extractor reads.
type Page interface {
	URL() string
	HTML(ctx context.Context) (string, error)
}

// Extractor builds Records and writes them to a fixed file.
type Extractor struct {
	path      string
	minDesc   int
	sels      compiled
	conv      *converter.Converter
	now       func() time.Time
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// NewExtractor creates an Extractor with the default selectors.
func NewExtractor(cfg config.QuestionConfig) *Extractor {
	return NewExtractorWithSelectors(cfg, DefaultSelectors())
}

// NewExtractorWithSelectors creates an Extractor with custom selectors.
func NewExtractorWithSelectors(cfg config.QuestionConfig, sels Selectors) *Extractor {
	return &Extractor{
		path:    cfg.OutputPath,
		minDesc: cfg.MinDescriptionLen,
		sels: compiled{
			title:       compile(sels.Title),
			difficulty:  compile(sels.Difficulty),
			description: compile(sels.Description),
		},
		conv:      newMarkdownConverter(),
		now:       time.Now,
		writeFile: os.WriteFile,
	}
}

// Path is the output file.
func (e *Extractor) Path() string { return e.path }

// Build reads the page and assembles a Record. It never fails: an
// unreadable page yields a Record made of fallbacks.
func (e *Extractor) Build(ctx context.Context, page Page) Record {
	pageURL := page.URL()

	var title, difficulty, description string
	rawHTML, err := page.HTML(ctx)
	if err != nil {
		slog.Error("failed to read page HTML", "url", pageURL, "error", err)
		title, difficulty, description = UnknownTitle, UnknownDifficulty, UnknownDescription
	} else {
		title, difficulty, description = parse(e.conv, e.sels, rawHTML, pageURL)
	}

	if n := utf8.RuneCountInString(description); n < e.minDesc {
		slog.Warn("description is very short, it might be incomplete", "chars", n)
	}

	return Record{
		Title:       title,
		Difficulty:  difficulty,
		Description: description,
		URL:         pageURL,
		ExtractedAt: e.now(),
	}
}

// Extract builds a Record from the page and writes it, overwriting the
// output file. It reports whether the document was written; on failure a
// fallback document is attempted. It never returns an error.
func (e *Extractor) Extract(ctx context.Context, page Page) bool {
	rec := e.Build(ctx, page)
	return e.Persist(rec)
}

// Persist writes rec to the output file.
func (e *Extractor) Persist(rec Record) bool {
	if err := e.writeFile(e.path, []byte(Render(rec)), 0o644); err != nil {
		werr := models.NewOpError(models.ErrCodeFileWrite, "failed to write "+e.path, err)
		slog.Error("question not saved", "error", werr)

		fallback := renderFailure(rec.URL, e.now(), werr)
		if err := e.writeFile(e.path, []byte(fallback), 0o644); err != nil {
			slog.Debug("fallback document not saved either", "error", err)
		}
		return false
	}

	if info, err := os.Stat(e.path); err == nil {
		slog.Info("question saved", "path", e.path, "bytes", info.Size())
	} else {
		slog.Warn("could not verify question file", "path", e.path, "error", err)
	}
	return true
}

// Render formats rec as the question document.
func Render(rec Record) string {
	return fmt.Sprintf(`# %s
## Difficulty: %s
## URL: %s
## Extraction Time: %s

%s

---
## *Code Solution*
`, rec.Title, rec.Difficulty, rec.URL, rec.ExtractedAt.UTC().Format(isoMillis), rec.Description)
}

func renderFailure(pageURL string, at time.Time, err error) string {
	return fmt.Sprintf(`# LeetCode Problem
## URL: %s
## Status: Extraction Failed
## Time: %s

Could not extract problem details. Please check the selectors or page structure.

Error: %v
`, pageURL, at.UTC().Format(isoMillis), err)
}
