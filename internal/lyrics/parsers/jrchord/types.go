package jrchord

import (
	"errors"
	"time"
)

// ErrContentNotFound is returned for pages without a chord block, such as
// category or news posts listed in the sitemap.
var ErrContentNotFound = errors.New("chord block not found")

// Page is the data extracted from one song page, before any chord or section
// processing.
type Page struct {
	URL       string    `json:"url"`
	RemoteID  string    `json:"remote_id"`
	Language  string    `json:"language"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Key       string    `json:"key"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ProcessingConfig holds the selectors and fallbacks used to read a page
type ProcessingConfig struct {
	ContentSelector string
	HeadingSelector string
	DefaultLanguage string
	// TitleSuffixes are stripped from <title> when no heading is found.
	TitleSuffixes []string
	MaxLineBreaks int
	TabWidth      int
}

// DefaultConfig returns the selectors for the jrchord WordPress theme
func DefaultConfig() *ProcessingConfig {
	return &ProcessingConfig{
		ContentSelector: "pre",
		HeadingSelector: "h1.entry-title, article h1, h1",
		DefaultLanguage: "id",
		TitleSuffixes:   []string{" - JRChord", " | JRChord", " – JRChord", " - jrchord.com"},
		MaxLineBreaks:   3,
		TabWidth:        8,
	}
}
