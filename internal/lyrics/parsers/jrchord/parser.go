package jrchord

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sukalov/chordsync/internal/logger"
)

var (
	// "Chord Amazing Grace (John Newton)"
	headingRegex = regexp.MustCompile(`(?i)^\s*(?:chord\s+)?(.+?)(?:\s*\(([^()]+)\))?\s*$`)
	keyRegex     = regexp.MustCompile(`(?im)^[ \t]*(?:key|kunci|nada\s+dasar|do)[ \t]*[:=][ \t]*([a-g][#b]?m?)`)
	postIDRegex  = regexp.MustCompile(`^post-(\d+)$`)
)

// Parser handles the HTML parsing of jrchord song pages
type Parser struct {
	client *Client
	config *ProcessingConfig
}

// NewParser creates a new jrchord parser. A nil config uses DefaultConfig.
func NewParser(client *Client, config *ProcessingConfig) *Parser {
	if config == nil {
		config = DefaultConfig()
	}
	return &Parser{
		client: client,
		config: config,
	}
}

// ExtractPage fetches url and parses it as a song page
func (p *Parser) ExtractPage(ctx context.Context, pageURL string) (*Page, error) {
	logger.Debug(fmt.Sprintf("ExtractPage: Fetching page %s", pageURL))

	html, err := p.client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	logger.Debug(fmt.Sprintf("ExtractPage: Successfully fetched page %s (HTML length: %d chars)", pageURL, len(html)))

	page, err := p.ParsePage(pageURL, strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	page.FetchedAt = time.Now()
	return page, nil
}

// ParsePage reads song data from an already fetched page
func (p *Parser) ParsePage(pageURL string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for %s: %w", pageURL, err)
	}

	selection := doc.Find(p.config.ContentSelector).First()
	if selection.Length() == 0 {
		logger.Debug(fmt.Sprintf("ParsePage: no %q element on %s", p.config.ContentSelector, pageURL))
		return nil, fmt.Errorf("%s: %w", pageURL, ErrContentNotFound)
	}

	text := p.finalCleanup(blockText(selection))
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: empty chord block: %w", pageURL, ErrContentNotFound)
	}

	title, artist := p.heading(doc)

	return &Page{
		URL:      pageURL,
		RemoteID: remoteID(doc, pageURL),
		Language: p.language(doc),
		Title:    title,
		Artist:   artist,
		Key:      pageKey(doc, text),
		Text:     text,
	}, nil
}

// heading returns the song title and artist from the page heading, falling
// back to the document title
func (p *Parser) heading(doc *goquery.Document) (string, string) {
	raw := strings.TrimSpace(doc.Find(p.config.HeadingSelector).First().Text())
	if raw == "" {
		raw = strings.TrimSpace(doc.Find("title").First().Text())
		for _, suffix := range p.config.TitleSuffixes {
			raw = strings.TrimSuffix(raw, suffix)
		}
	}
	return ParseHeading(raw)
}

// ParseHeading splits a heading such as "Chord Amazing Grace (John Newton)"
// into title and artist. The artist is empty when there is no parenthesised
// suffix.
func ParseHeading(heading string) (title, artist string) {
	heading = strings.Join(strings.Fields(heading), " ")
	m := headingRegex.FindStringSubmatch(heading)
	if m == nil {
		return heading, ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

func (p *Parser) language(doc *goquery.Document) string {
	lang, _ := doc.Find("html").First().Attr("lang")
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return p.config.DefaultLanguage
	}
	return lang
}

// pageKey looks for the key in the chord block first and then in the
// paragraphs around it
func pageKey(doc *goquery.Document, blockText string) string {
	if key := findKey(blockText); key != "" {
		return key
	}
	var key string
	doc.Find("p, li, h2, h3, h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		key = findKey(s.Text())
		return key == ""
	})
	return key
}

// findKey returns the song key announced in text ("Key: G", "Do = Bb"), with
// the note letter upper-cased
func findKey(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	m := keyRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1][:1]) + m[1][1:]
}

// remoteID returns the WordPress post id, or the URL slug for pages that do
// not expose one
func remoteID(doc *goquery.Document, pageURL string) string {
	var id string
	doc.Find(`article[id^="post-"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		attr, _ := s.Attr("id")
		if m := postIDRegex.FindStringSubmatch(attr); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	if id != "" {
		return id
	}

	if href, ok := doc.Find(`link[rel="shortlink"]`).First().Attr("href"); ok {
		if u, err := url.Parse(href); err == nil {
			if p := u.Query().Get("p"); p != "" {
				return p
			}
		}
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	slug := path.Base(strings.TrimRight(u.Path, "/"))
	if slug == "." || slug == "/" || slug == "" {
		return u.Host
	}
	return slug
}
