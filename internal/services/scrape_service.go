package services

import (
	"context"
	"errors"
	"strings"

	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/scraper"
)

type Scraper interface {
	Scrape(ctx context.Context, query, city string) ([]scraper.Listing, error)
}

type ScrapeService struct {
	scraper Scraper
}

func NewScrapeService(s Scraper) *ScrapeService {
	return &ScrapeService{scraper: s}
}

func (ss *ScrapeService) Scrape(ctx context.Context, query, city string) ([]scraper.Listing, error) {
	query, city = strings.TrimSpace(query), strings.TrimSpace(city)
	if query == "" || city == "" {
		return nil, errdef.NewBadRequest("query and city are required")
	}

	listings, err := ss.scraper.Scrape(ctx, query, city)
	if errors.Is(err, scraper.ErrNoTarget) {
		return nil, err
	}
	if err != nil {
		return nil, errdef.NewUpstream("scraping failed: %v", err)
	}
	return listings, nil
}
