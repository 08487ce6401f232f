package jrchord

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sukalov/chordsync/internal/logger"
)

// Sitemap is the list of <loc> entries of one sitemap file. Index is set when
// the file is a sitemap index whose entries are further sitemaps.
type Sitemap struct {
	Locations []string
	Index     bool
}

// ParseSitemap reads every <loc> of a sitemap or sitemap index
func ParseSitemap(r io.Reader) (*Sitemap, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	sitemap := &Sitemap{Index: doc.Find("sitemapindex").Length() > 0}
	doc.Find("loc").Each(func(_ int, s *goquery.Selection) {
		if loc := strings.TrimSpace(s.Text()); loc != "" {
			sitemap.Locations = append(sitemap.Locations, loc)
		}
	})
	return sitemap, nil
}

// CollectLinks returns the union of all page links listed by the given
// sitemaps, following sitemap indexes one level deep. A sitemap that cannot
// be read is logged and skipped. Links are de-duplicated and sorted.
func (p *Parser) CollectLinks(ctx context.Context, sitemapURLs []string) ([]string, error) {
	seen := make(map[string]struct{})
	queue := append([]string(nil), sitemapURLs...)
	followed := make(map[string]bool)
	depth := make(map[string]int)

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sitemapURL := queue[0]
		queue = queue[1:]
		if followed[sitemapURL] {
			continue
		}
		followed[sitemapURL] = true

		logger.Info(fmt.Sprintf("Checking sitemap: %s", sitemapURL))
		body, err := p.client.FetchPage(ctx, sitemapURL)
		if err != nil {
			logger.Error(fmt.Sprintf("Error reading sitemap %s: %v", sitemapURL, err))
			continue
		}

		sitemap, err := ParseSitemap(strings.NewReader(body))
		if err != nil {
			logger.Error(fmt.Sprintf("Error parsing sitemap %s: %v", sitemapURL, err))
			continue
		}

		if sitemap.Index {
			if depth[sitemapURL] > 0 {
				logger.Debug(fmt.Sprintf("Not following nested sitemap index %s", sitemapURL))
				continue
			}
			for _, loc := range sitemap.Locations {
				depth[loc] = depth[sitemapURL] + 1
				queue = append(queue, loc)
			}
			continue
		}

		logger.Info(fmt.Sprintf("Found %d links in %s", len(sitemap.Locations), sitemapURL))
		for _, loc := range sitemap.Locations {
			seen[loc] = struct{}{}
		}
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links, nil
}
