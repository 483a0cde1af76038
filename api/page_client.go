package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Page is a fetched and parsed HTML document.
type Page struct {
	// URL is the final URL after redirects.
	URL        string
	StatusCode int
	Document   *goquery.Document

	// Origin is the URL a navigation started from. It survives form
	// submissions, so callers can reload the original page.
	Origin string
}

// ReloadURL returns Origin when set, URL otherwise.
func (p *Page) ReloadURL() string {
	if p.Origin != "" {
		return p.Origin
	}
	return p.URL
}

// PageClientOptions configures the HTTP side of page fetching.
type PageClientOptions struct {
	UserAgent string
	Timeout   time.Duration
}

// PageClient fetches HTML pages with a persistent cookie jar, so a dismissed
// consent interstitial stays dismissed for later requests.
type PageClient struct {
	http *resty.Client
}

// NewPageClient creates a new instance of PageClient
func NewPageClient(opts PageClientOptions) (*PageClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(opts.Timeout)
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	client.SetHeader("accept-language", "en-US,en;q=0.9")

	return &PageClient{http: client}, nil
}

// Get fetches rawURL and parses the body as HTML.
func (c *PageClient) Get(ctx context.Context, rawURL string) (*Page, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, err
	}
	return toPage(res)
}

// PostForm submits a urlencoded form to action and parses the response.
func (c *PageClient) PostForm(ctx context.Context, action string, values url.Values) (*Page, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(values).
		Post(action)
	if err != nil {
		return nil, err
	}
	return toPage(res)
}

func toPage(res *resty.Response) (*Page, error) {
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, errors.New("unexpected status code: " + res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	finalURL := res.Request.URL
	if raw := res.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}
	return &Page{
		URL:        finalURL,
		StatusCode: res.StatusCode(),
		Document:   doc,
	}, nil
}

// NewPageFromHTML wraps already-fetched HTML, e.g. a saved fixture.
func NewPageFromHTML(pageURL string, html []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Page{URL: pageURL, StatusCode: 200, Document: doc}, nil
}
