package maps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"livepop-server/api"
	"livepop-server/models/place"
)

// DefaultFixture is served when no fixture exists for a place id.
const DefaultFixture = "place.html"

// FixtureNavigator serves saved place pages from a directory instead of the
// network. Pages are looked up as <place_id>.html, then DefaultFixture.
type FixtureNavigator struct {
	dir     string
	markers []string
}

// NewFixtureNavigator creates a new instance of FixtureNavigator
func NewFixtureNavigator(dir string, markers []string) *FixtureNavigator {
	return &FixtureNavigator{dir: dir, markers: markers}
}

func (n *FixtureNavigator) Open(ctx context.Context, placeURL string) (*api.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := []string{DefaultFixture}
	if p, err := place.ParsePlaceURL(placeURL); err == nil {
		candidates = append([]string{p.PlaceID + ".html"}, candidates...)
	}

	for _, name := range candidates {
		html, err := os.ReadFile(filepath.Join(n.dir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
		}
		page, err := api.NewPageFromHTML(placeURL, html)
		if err != nil {
			return nil, err
		}
		page.Origin = placeURL
		return page, nil
	}
	return nil, fmt.Errorf("no fixture for %s in %s", placeURL, n.dir)
}

func (n *FixtureNavigator) DismissConsent(_ context.Context, page *api.Page) (*api.Page, ConsentOutcome) {
	return page, ConsentNotPresent
}

func (n *FixtureNavigator) EnsurePopularTimes(_ context.Context, page *api.Page) (*api.Page, Visibility) {
	if HasSectionMarker(page.Document, n.markers) {
		return page, VisibilityVisible
	}
	return page, VisibilityNotFound
}
