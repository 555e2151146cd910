package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ai-proposal-api/pkg/models"
)

const (
	pageLoadTimeout  = 30 * time.Second
	aboutLoadTimeout = 15 * time.Second
)

const extractScript = `() => {
	const texts = (sel) => Array.from(document.querySelectorAll(sel))
		.map(el => (el.textContent || '').trim())
		.filter(Boolean);
	const meta = document.querySelector('meta[name="description"]');
	return JSON.stringify({
		metaDescription: meta ? (meta.getAttribute('content') || '') : '',
		links: Array.from(document.querySelectorAll('a')).map(a => a.href).filter(h => h && !h.startsWith('javascript:')),
		images: Array.from(document.querySelectorAll('img')).map(i => i.src).filter(s => s && s.length > 0),
		products: texts('.product, [class*="product"], [id*="product"]'),
		services: texts('.service, [class*="service"], [id*="service"]'),
		teamInfo: texts('.team, [class*="team"], [id*="team"]'),
	});
}`

const paragraphsScript = `() => Array.from(document.querySelectorAll('p')).map(p => p.textContent).join(' ')`

type pageExtract struct {
	MetaDescription string   `json:"metaDescription"`
	Links           []string `json:"links"`
	Images          []string `json:"images"`
	Products        []string `json:"products"`
	Services        []string `json:"services"`
	TeamInfo        []string `json:"teamInfo"`
}

// ScraperService extracts company information from a website with headless Chrome.
type ScraperService struct {
	browser *BrowserService
	logger  *zap.Logger
}

// NewScraperService creates a scraper on top of browser.
func NewScraperService(browser *BrowserService, logger *zap.Logger) *ScraperService {
	return &ScraperService{browser: browser, logger: logger}
}

// Scrape loads url and collects its text, metadata, links, images and
// product, service and team snippets. The first link mentioning "about" is
// followed for the about text; a failure there is not an error.
func (s *ScraperService) Scrape(ctx context.Context, url string) (models.ScrapedData, error) {
	ctx, cancel := context.WithTimeout(ctx, pageLoadTimeout)
	defer cancel()

	page, err := s.browser.page(ctx)
	if err != nil {
		return models.ScrapedData{}, err
	}
	defer page.Close()

	if err := page.Navigate(url); err != nil {
		return models.ScrapedData{}, fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return models.ScrapedData{}, fmt.Errorf("wait load: %w", err)
	}

	content, err := page.HTML()
	if err != nil {
		return models.ScrapedData{}, fmt.Errorf("read page content: %w", err)
	}
	title := ""
	if info, err := page.Info(); err == nil {
		title = info.Title
	}

	res, err := page.Eval(extractScript)
	if err != nil {
		return models.ScrapedData{}, fmt.Errorf("extract page data: %w", err)
	}
	extract, err := decodeExtract(res.Value.Str())
	if err != nil {
		return models.ScrapedData{}, err
	}

	data := models.ScrapedData{
		PageContent:     content,
		Title:           title,
		MetaDescription: extract.MetaDescription,
		Links:           extract.Links,
		Images:          extract.Images,
		Products:        extract.Products,
		Services:        extract.Services,
		TeamInfo:        extract.TeamInfo,
	}
	if link := AboutLink(data.Links); link != "" {
		data.AboutText = s.aboutText(ctx, link)
	}

	s.logger.Info("website scraped",
		zap.String("url", url),
		zap.Int("links", len(data.Links)),
		zap.Int("products", len(data.Products)),
	)
	return data, nil
}

func (s *ScraperService) aboutText(ctx context.Context, link string) string {
	ctx, cancel := context.WithTimeout(ctx, aboutLoadTimeout)
	defer cancel()

	page, err := s.browser.page(ctx)
	if err != nil {
		return ""
	}
	defer page.Close()

	if err := page.Navigate(link); err != nil {
		s.logger.Debug("about page unavailable", zap.String("url", link), zap.Error(err))
		return ""
	}
	_ = page.WaitLoad()
	res, err := page.Eval(paragraphsScript)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(res.Value.Str())
}

// AboutLink returns the first link that mentions "about", or "".
func AboutLink(links []string) string {
	for _, link := range links {
		if strings.Contains(strings.ToLower(link), "about") {
			return link
		}
	}
	return ""
}

func decodeExtract(raw string) (pageExtract, error) {
	var extract pageExtract
	if err := json.Unmarshal([]byte(raw), &extract); err != nil {
		return pageExtract{}, fmt.Errorf("decode page data: %w", err)
	}
	for _, list := range []*[]string{&extract.Links, &extract.Images, &extract.Products, &extract.Services, &extract.TeamInfo} {
		if *list == nil {
			*list = []string{}
		}
	}
	return extract, nil
}
