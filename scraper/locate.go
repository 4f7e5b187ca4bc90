package scraper

import (
	"strings"

	"github.com/use-agent/algoserve/models"
)

// Addressed is anything with a URL.
type Addressed interface {
	URL() string
}

// Locate returns the first page whose URL contains prefix.
func Locate[P Addressed](pages []P, prefix string) (P, error) {
	for _, p := range pages {
		if strings.Contains(p.URL(), prefix) {
			return p, nil
		}
	}

	var zero P
	return zero, models.NewOpError(
		models.ErrCodePageNotFound,
		"no open page matches "+prefix,
		nil,
	)
}
