// Package sema fetches balneability bulletins from the SEMA/MA publication
// page: the HTML index listing the laudos and the PDF files it links to.
package sema

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"balneabilidade/internal/domain"
)

// Client scrapes the laudo index page and downloads bulletin files.
type Client struct {
	httpClient *http.Client
	indexURL   string
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a SEMA client for the given index page URL.
func NewClient(httpClient *http.Client, indexURL, userAgent string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		indexURL:   indexURL,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// FetchIndex scrapes the index page and returns up to limit bulletins, most
// recent first. A link counts as a bulletin when its href mentions "pdf" or
// its anchor text mentions "laudo"; the page carries no structured markup to
// key on. limit <= 0 means no cap.
func (c *Client) FetchIndex(ctx context.Context, limit int) ([]domain.Bulletin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create index request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch index page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch index page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	base, err := url.Parse(c.indexURL)
	if err != nil {
		return nil, fmt.Errorf("parse index URL: %w", err)
	}

	seen := make(map[string]bool)
	var bulletins []domain.Bulletin
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		title := domain.CollapseWhitespace(sel.Text())
		if !isBulletinLink(href, title) {
			return
		}
		ref, err := base.Parse(href)
		if err != nil {
			return
		}
		abs := ref.String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		bulletins = append(bulletins, domain.Bulletin{Title: title, URL: abs})
	})

	rankBulletins(bulletins)
	if limit > 0 && len(bulletins) > limit {
		bulletins = bulletins[:limit]
	}

	c.logger.Info("fetched laudo index", "url", c.indexURL, "bulletins", len(bulletins))
	return bulletins, nil
}

func isBulletinLink(href, title string) bool {
	return strings.Contains(strings.ToLower(href), "pdf") ||
		strings.Contains(strings.ToLower(title), "laudo")
}

// rankBulletins orders candidates most-recent-first. Direct PDF links come
// before page links; within each group a date parsed from the title sorts
// descending, and undated titles fall back to title length as a weak recency
// proxy (longer titles tend to carry fuller dates).
func rankBulletins(bulletins []domain.Bulletin) {
	sort.SliceStable(bulletins, func(i, j int) bool {
		pi, pj := isPDF(bulletins[i].URL), isPDF(bulletins[j].URL)
		if pi != pj {
			return pi
		}
		di, oki := domain.ExtractTitleDate(bulletins[i].Title)
		dj, okj := domain.ExtractTitleDate(bulletins[j].Title)
		if oki && okj && !di.Equal(dj) {
			return di.After(dj)
		}
		if oki != okj {
			return oki
		}
		return len(bulletins[i].Title) > len(bulletins[j].Title)
	})
}

func isPDF(rawURL string) bool {
	return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
}
