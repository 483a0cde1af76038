package maps

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"livepop-server/api"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ConsentOutcome is the result of trying to dismiss the consent interstitial.
type ConsentOutcome string

const (
	ConsentDismissed  ConsentOutcome = "dismissed"
	ConsentNotPresent ConsentOutcome = "not_present"
	ConsentUnknown    ConsentOutcome = "unknown"
)

// Visibility tells whether the popular times section was found on a page.
type Visibility string

const (
	VisibilityVisible  Visibility = "visible"
	VisibilityNotFound Visibility = "not_found"
	VisibilityUnknown  Visibility = "unknown"
)

// Navigator brings a place page into a state where its popular times labels
// can be read. Only Open reports errors; the other steps are best-effort and
// always hand back a usable page.
type Navigator interface {
	Open(ctx context.Context, placeURL string) (*api.Page, error)
	DismissConsent(ctx context.Context, page *api.Page) (*api.Page, ConsentOutcome)
	EnsurePopularTimes(ctx context.Context, page *api.Page) (*api.Page, Visibility)
}

// PageFetcher is the subset of api.PageClient the navigator needs.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string) (*api.Page, error)
	PostForm(ctx context.Context, action string, values url.Values) (*api.Page, error)
}

type NavigatorOptions struct {
	ConsentButtons []string
	SectionMarkers []string
	MaxAttempts    int
	Wait           time.Duration
}

// HTTPNavigator drives server-rendered place pages over plain HTTP.
type HTTPNavigator struct {
	fetcher PageFetcher
	opts    NavigatorOptions
	logger  *zap.Logger
}

// NewHTTPNavigator creates a new instance of HTTPNavigator
func NewHTTPNavigator(fetcher PageFetcher, opts NavigatorOptions, logger *zap.Logger) *HTTPNavigator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &HTTPNavigator{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.Named("navigator"),
	}
}

func (n *HTTPNavigator) Open(ctx context.Context, placeURL string) (*api.Page, error) {
	page, err := n.fetcher.Get(ctx, placeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open place page: %w", err)
	}
	page.Origin = placeURL
	return page, nil
}

// DismissConsent submits the first form whose button text matches one of the
// configured consent buttons. Buttons are tried in configuration order.
func (n *HTTPNavigator) DismissConsent(ctx context.Context, page *api.Page) (*api.Page, ConsentOutcome) {
	form, button, ok := findConsentForm(page.Document, n.opts.ConsentButtons)
	if !ok {
		return page, ConsentNotPresent
	}

	action, err := resolveAction(page.URL, form)
	if err != nil {
		n.logger.Warn("Invalid consent form action", zap.String("place_url", page.URL), zap.Error(err))
		return page, ConsentUnknown
	}
	values := formValues(form, button)

	var next *api.Page
	if strings.EqualFold(strings.TrimSpace(form.AttrOr("method", "get")), "post") {
		next, err = n.fetcher.PostForm(ctx, action, values)
	} else {
		next, err = n.fetcher.Get(ctx, withQuery(action, values))
	}
	if err != nil {
		n.logger.Warn("Failed to submit consent form", zap.String("place_url", page.URL), zap.Error(err))
		return page, ConsentUnknown
	}
	next.Origin = page.Origin

	n.logger.Debug("Consent dismissed", zap.String("place_url", page.URL))
	return next, ConsentDismissed
}

// EnsurePopularTimes polls for a section marker, re-fetching the page the
// navigation started from between attempts. It gives up after MaxAttempts
// checks.
func (n *HTTPNavigator) EnsurePopularTimes(ctx context.Context, page *api.Page) (*api.Page, Visibility) {
	for attempt := 1; ; attempt++ {
		if HasSectionMarker(page.Document, n.opts.SectionMarkers) {
			return page, VisibilityVisible
		}
		if attempt >= n.opts.MaxAttempts {
			return page, VisibilityNotFound
		}

		select {
		case <-ctx.Done():
			return page, VisibilityUnknown
		case <-time.After(n.opts.Wait):
		}

		reloadURL := page.ReloadURL()
		next, err := n.fetcher.Get(ctx, reloadURL)
		if err != nil {
			n.logger.Warn("Failed to re-fetch place page",
				zap.String("place_url", reloadURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return page, VisibilityUnknown
		}
		next.Origin = page.Origin
		page = next
	}
}

// HasSectionMarker looks for any marker in the visible text or in an
// aria-label of doc.
func HasSectionMarker(doc *goquery.Document, markers []string) bool {
	if doc == nil {
		return false
	}
	text := doc.Text()
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}

	found := false
	doc.Find("[aria-label]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := s.AttrOr("aria-label", "")
		for _, m := range markers {
			if m != "" && strings.Contains(label, m) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func findConsentForm(doc *goquery.Document, buttons []string) (*goquery.Selection, *goquery.Selection, bool) {
	if doc == nil {
		return nil, nil, false
	}
	forms := doc.Find("form")
	for _, want := range buttons {
		var form, button *goquery.Selection
		forms.EachWithBreak(func(_ int, f *goquery.Selection) bool {
			f.Find("button, input[type=submit]").EachWithBreak(func(_ int, b *goquery.Selection) bool {
				if strings.EqualFold(buttonText(b), want) {
					form, button = f, b
					return false
				}
				return true
			})
			return form == nil
		})
		if form != nil {
			return form, button, true
		}
	}
	return nil, nil, false
}

func buttonText(b *goquery.Selection) string {
	if goquery.NodeName(b) == "input" {
		return strings.TrimSpace(b.AttrOr("value", ""))
	}
	if label := strings.TrimSpace(b.AttrOr("aria-label", "")); label != "" && strings.TrimSpace(b.Text()) == "" {
		return label
	}
	return strings.TrimSpace(b.Text())
}

func formValues(form, button *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input[name]").Each(func(_ int, in *goquery.Selection) {
		if t := strings.ToLower(in.AttrOr("type", "text")); t == "submit" || t == "button" {
			return
		}
		values.Add(in.AttrOr("name", ""), in.AttrOr("value", ""))
	})
	if name, ok := button.Attr("name"); ok && name != "" {
		values.Set(name, button.AttrOr("value", ""))
	}
	return values
}

func resolveAction(pageURL string, form *goquery.Selection) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	action, err := url.Parse(strings.TrimSpace(form.AttrOr("action", "")))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(action).String(), nil
}

func withQuery(action string, values url.Values) string {
	if len(values) == 0 {
		return action
	}
	sep := "?"
	if strings.Contains(action, "?") {
		sep = "&"
	}
	return action + sep + values.Encode()
}
