// Package chords merges chord lines into the lyric lines printed below them.
//
// Chord sheets scraped from the web put chords on their own line, positioned
// by column above the syllable they apply to. Align folds every such pair
// into a single line with inline markers, e.g.
//
//	G       D
//	Amazing grace
//
// becomes "[G]Amazing [D]grace".
package chords

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// chordLineRegex is a closed character-set test, not a chord grammar. Any line
// built only from these characters counts as chords, including short lyric
// fragments such as "Ada" or "Bad".
var chordLineRegex = regexp.MustCompile(`^(?:[A-Ga-g#m0-9/+()\s]|sus|dim|maj)+$`)

var tokenRegex = regexp.MustCompile(`\S+`)

var markerRegex = regexp.MustCompile(`\[[^\]]*\]`)

// Token is a chord name and the column it starts at on its chord line.
type Token struct {
	Text  string
	Start int
}

// IsChordLine reports whether line looks like a row of chord names.
func IsChordLine(line string) bool {
	trimmed := strings.TrimRight(line, " \t\r")
	if trimmed == "" {
		return false
	}
	return chordLineRegex.MatchString(trimmed)
}

// Tokens returns every run of non-whitespace in line with its starting
// column. Columns count runes, not bytes.
func Tokens(line string) []Token {
	var tokens []Token
	for _, loc := range tokenRegex.FindAllStringIndex(line, -1) {
		tokens = append(tokens, Token{
			Text:  line[loc[0]:loc[1]],
			Start: utf8.RuneCountInString(line[:loc[0]]),
		})
	}
	return tokens
}

// MergeLine inserts every chord of chordLine into lyricLine as a "[chord]"
// marker at the chord's column. The lyric is padded with spaces when the chord
// line is wider, so no chord is dropped. The result is trimmed.
func MergeLine(chordLine, lyricLine string) string {
	return strings.TrimSpace(mergeLine(chordLine, lyricLine))
}

func mergeLine(chordLine, lyricLine string) string {
	chordLine = strings.TrimRight(chordLine, " \t\r")

	lyric := []rune(lyricLine)
	if width := utf8.RuneCountInString(chordLine); len(lyric) < width {
		lyric = append(lyric, []rune(strings.Repeat(" ", width-len(lyric)))...)
	}

	var b strings.Builder
	last := 0
	for _, tok := range Tokens(chordLine) {
		b.WriteString(string(lyric[last:tok.Start]))
		b.WriteString("[")
		b.WriteString(tok.Text)
		b.WriteString("]")
		last = tok.Start
	}
	b.WriteString(string(lyric[last:]))

	return b.String()
}

// Align scans rawText once and replaces every chord line that is directly
// followed by a non-blank line with the merged line. All other lines,
// including blank separators and trailing chord-only rows, pass through
// untouched.
func Align(rawText string) string {
	lines := strings.Split(strings.ReplaceAll(rawText, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if IsChordLine(line) && i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			out = append(out, MergeLine(line, lines[i+1]))
			i++
			continue
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// StripMarkers removes every "[...]" marker from an annotated line.
func StripMarkers(line string) string {
	return markerRegex.ReplaceAllString(line, "")
}
