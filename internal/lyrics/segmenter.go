package lyrics

import (
	"regexp"
	"strings"
)

// titleArtifactRegex matches the "Chord <Title> (<Artist>)" heading that the
// page source repeats at the top of every song body.
var titleArtifactRegex = regexp.MustCompile(`(?i)^Chord[^\n]+\n+`)

// blockSeparatorRegex splits on two or more line breaks. Lines holding only
// spaces or tabs count as blank.
var blockSeparatorRegex = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

// State is the segmenter's running section type. The zero value is not the
// starting state; use NewState.
type State struct {
	Current SectionType
}

// NewState returns the state before the first block of a song: no header has
// been seen, so blocks are verses.
func NewState() State {
	return State{Current: SectionVerse}
}

// StripTitleArtifact removes a leading "Chord ..." heading line together with
// the blank lines after it, then trims the text.
func StripTitleArtifact(text string) string {
	return strings.TrimSpace(titleArtifactRegex.ReplaceAllString(text, ""))
}

// SplitBlocks splits text into blank-line-delimited blocks. Each block is
// trimmed and empty blocks are dropped.
func SplitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []string
	for _, block := range blockSeparatorRegex.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// Step classifies one block. A header on the block's first line switches the
// state to the header's section and is removed from the text; a block without
// a header inherits the current section. ok is false when nothing is left to
// emit, as with a header-only block.
func Step(table KeywordTable, state State, block string) (next State, out LyricBlock, ok bool) {
	block = strings.TrimSpace(block)
	if block == "" {
		return state, LyricBlock{}, false
	}

	lines := strings.Split(block, "\n")
	if sectionType, isHeader := table.MatchHeader(lines[0]); isHeader {
		state.Current = sectionType
		lines = lines[1:]
	}

	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		return state, LyricBlock{}, false
	}

	return state, LyricBlock{Type: state.Current, Text: text}, true
}

// Segment turns a song's text into typed blocks in document order. The
// result is never nil.
func Segment(text string, table KeywordTable) []LyricBlock {
	blocks := SplitBlocks(StripTitleArtifact(text))

	out := make([]LyricBlock, 0, len(blocks))
	state := NewState()
	for _, block := range blocks {
		var (
			lb LyricBlock
			ok bool
		)
		state, lb, ok = Step(table, state, block)
		if ok {
			out = append(out, lb)
		}
	}
	return out
}
