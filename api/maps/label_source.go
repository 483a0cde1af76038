package maps

import (
	"strings"

	"livepop-server/api"

	"github.com/PuerkitoBio/goquery"
)

// UnknownPlaceName is reported when a page has no title heading.
const UnknownPlaceName = "Unknown Place"

const placeNameSelector = `h1[class*="DUwDvf"]`

// LabelSource reads accessibility labels and the place name off a page.
type LabelSource interface {
	Labels(page *api.Page) []string
	PlaceName(page *api.Page) string
}

// DOMLabelSource collects labels from the parsed document in document order.
type DOMLabelSource struct {
	maxLabels int
}

// NewDOMLabelSource creates a label source that returns at most maxLabels
// labels. A non-positive cap means no cap.
func NewDOMLabelSource(maxLabels int) *DOMLabelSource {
	return &DOMLabelSource{maxLabels: maxLabels}
}

func (s *DOMLabelSource) Labels(page *api.Page) []string {
	if page == nil || page.Document == nil {
		return []string{}
	}

	labels := []string{}
	page.Document.Find("[aria-label]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if s.maxLabels > 0 && len(labels) >= s.maxLabels {
			return false
		}
		if label := sel.AttrOr("aria-label", ""); label != "" {
			labels = append(labels, label)
		}
		return true
	})
	return labels
}

func (s *DOMLabelSource) PlaceName(page *api.Page) string {
	if page == nil || page.Document == nil {
		return UnknownPlaceName
	}
	name := strings.TrimSpace(page.Document.Find(placeNameSelector).First().Text())
	if name == "" {
		return UnknownPlaceName
	}
	return name
}
