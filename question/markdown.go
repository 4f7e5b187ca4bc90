package question

import (
	"net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter creates a reusable, goroutine-safe Converter. Problem
// statements carry code spans, <pre> examples and the odd constraints table.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// toMarkdown converts an HTML fragment. Relative links and images resolve
// against the page's host.
func toMarkdown(conv *converter.Converter, fragment, pageURL string) (string, error) {
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		return conv.ConvertString(fragment, converter.WithDomain(u.Scheme+"://"+u.Host))
	}
	return conv.ConvertString(fragment)
}
