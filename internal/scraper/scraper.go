// Package scraper drives a headless browser through an external ticketing site's search form
// and extracts the listed events.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

var ErrNoTarget = errors.New("scraper target url is not configured")

type Listing struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Venue string `json:"venue"`
	URL   string `json:"url,omitempty"`
}

// Selectors couple the scraper to the target site's markup.
type Selectors struct {
	QueryInput string
	CityInput  string
	Submit     string
	Results    string
	Item       string
	Title      string
	Date       string
	Venue      string
	Link       string
}

var DefaultSelectors = Selectors{
	QueryInput: `input[name="q"]`,
	CityInput:  `input[name="location"]`,
	Submit:     `button[type="submit"]`,
	Results:    `.search-results`,
	Item:       `.search-results .event-card`,
	Title:      `.event-card__title`,
	Date:       `.event-card__date`,
	Venue:      `.event-card__venue`,
	Link:       `a`,
}

type Scraper struct {
	targetURL   string
	waitTimeout time.Duration
	selectors   Selectors
	run         func(ctx context.Context, actions ...chromedp.Action) error
}

func New(targetURL string, waitTimeout time.Duration, selectors Selectors) *Scraper {
	if waitTimeout <= 0 {
		waitTimeout = 20 * time.Second
	}
	return &Scraper{targetURL: targetURL, waitTimeout: waitTimeout, selectors: selectors, run: chromedp.Run}
}

// Scrape runs one pass: navigate, fill the two search fields, submit, wait for results and
// extract them. Each browser step gets its own timeout. Nothing is retried.
func (s *Scraper) Scrape(ctx context.Context, query, city string) ([]Listing, error) {
	if s.targetURL == "" {
		return nil, ErrNoTarget
	}
	base, err := url.Parse(s.targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid scraper target url: %v", err)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// starts the browser on the long lived context
	if err := s.run(browserCtx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	sel := s.selectors
	if err := s.step(browserCtx, "open search form",
		chromedp.Navigate(s.targetURL),
		chromedp.WaitVisible(sel.QueryInput, chromedp.ByQuery),
	); err != nil {
		return nil, err
	}

	if err := s.step(browserCtx, "submit search form",
		chromedp.SendKeys(sel.QueryInput, query, chromedp.ByQuery),
		chromedp.SendKeys(sel.CityInput, city, chromedp.ByQuery),
		chromedp.Click(sel.Submit, chromedp.ByQuery),
	); err != nil {
		return nil, err
	}

	var html string
	if err := s.step(browserCtx, "wait for results",
		chromedp.WaitVisible(sel.Results, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, err
	}

	return ParseListings(html, sel, base)
}

func (s *Scraper) step(ctx context.Context, name string, actions ...chromedp.Action) error {
	stepCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	if err := s.run(stepCtx, actions...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: timed out after %s", name, s.waitTimeout)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// ParseListings extracts listings from a captured results page. Items without a title are
// skipped. Relative links are resolved against base.
func ParseListings(html string, sel Selectors, base *url.URL) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %v", err)
	}

	listings := []Listing{}
	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		title := text(item.Find(sel.Title))
		if title == "" {
			return
		}

		l := Listing{
			Title: title,
			Date:  text(item.Find(sel.Date)),
			Venue: text(item.Find(sel.Venue)),
		}
		if href, ok := item.Find(sel.Link).First().Attr("href"); ok && base != nil {
			if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
				l.URL = base.ResolveReference(ref).String()
			}
		}
		listings = append(listings, l)
	})
	return listings, nil
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.First().Text()), " ")
}
