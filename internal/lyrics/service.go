package lyrics

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sukalov/chordsync/internal/chords"
	"github.com/sukalov/chordsync/internal/logger"
	"github.com/sukalov/chordsync/internal/lyrics/parsers/jrchord"
)

// Service turns scraped pages into structured songs
type Service struct {
	jrchordParser *jrchord.Parser
	keywords      KeywordTable
}

// NewService creates a new lyrics service. parser may be nil when only
// already-scraped songs are processed.
func NewService(parser *jrchord.Parser, keywords KeywordTable) *Service {
	return &Service{
		jrchordParser: parser,
		keywords:      keywords,
	}
}

// Process aligns chords and segments the text of one raw song
func (s *Service) Process(raw RawSong) Song {
	aligned := chords.Align(raw.Text())
	blocks := Segment(aligned, s.keywords)

	logger.Debug(fmt.Sprintf("Process: %q (%s) -> %d blocks", raw.Title, raw.RemoteID, len(blocks)))

	return Song{
		RemoteID: raw.RemoteID,
		Language: raw.Language,
		Title:    raw.Title,
		Artist:   raw.Artist,
		Key:      raw.Key,
		Lyric:    blocks,
	}
}

// ProcessAll processes raws in order
func (s *Service) ProcessAll(raws []RawSong) []Song {
	songs := make([]Song, 0, len(raws))
	for _, raw := range raws {
		songs = append(songs, s.Process(raw))
	}
	return songs
}

// FromPage converts a scraped page to a raw song
func FromPage(page *jrchord.Page) RawSong {
	return RawSong{
		RemoteID: page.RemoteID,
		Language: page.Language,
		Title:    page.Title,
		Artist:   page.Artist,
		Key:      page.Key,
		URL:      page.URL,
		Lyric:    []RawLyric{{Text: page.Text}},
	}
}

// ExtractRaw fetches a song page from a supported source
func (s *Service) ExtractRaw(ctx context.Context, pageURL string) (*RawSong, error) {
	logger.Debug(fmt.Sprintf("ExtractRaw called with URL: %s", pageURL))

	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}

	// Add other parsers here as needed
	if !supportedHost(u.Hostname()) {
		logger.Error(fmt.Sprintf("Unsupported URL source: %s", pageURL))
		return nil, fmt.Errorf("unsupported URL source: %s", pageURL)
	}
	if s.jrchordParser == nil {
		return nil, fmt.Errorf("no parser configured for %s", u.Hostname())
	}

	page, err := s.jrchordParser.ExtractPage(ctx, pageURL)
	if err != nil {
		logger.Error(fmt.Sprintf("jrchordParser.ExtractPage failed for URL: %s\nError: %v", pageURL, err))
		return nil, err
	}

	raw := FromPage(page)
	return &raw, nil
}

// ExtractSong fetches and processes a single song page
func (s *Service) ExtractSong(ctx context.Context, pageURL string) (*Song, error) {
	raw, err := s.ExtractRaw(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	song := s.Process(*raw)
	return &song, nil
}

// supportedHost reports whether host is jrchord.com, one of its subdomains or
// a local mirror
func supportedHost(host string) bool {
	host = strings.ToLower(host)
	if host == "jrchord.com" || strings.HasSuffix(host, ".jrchord.com") {
		return true
	}
	return isLocal(host)
}

// isLocal allows pages served from a local mirror of the site
func isLocal(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
