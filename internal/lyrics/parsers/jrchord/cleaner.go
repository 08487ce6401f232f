package jrchord

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var leadingBlankLinesRegex = regexp.MustCompile(`^(?:[ \t]*\n)+`)

// blockText flattens the chord block to plain text. <br> becomes a line
// break and every other element contributes only its text, which keeps the
// column layout of chord lines intact.
func blockText(sel *goquery.Selection) string {
	var b strings.Builder
	writeNodeText(sel, &b)
	return b.String()
}

func writeNodeText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			b.WriteString(s.Text())
		case "br":
			b.WriteString("\n")
		case "#comment", "script", "style":
		default:
			writeNodeText(s, b)
		}
	})
}

// finalCleanup normalises whitespace without moving any character's column
func (p *Parser) finalCleanup(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(expandTabs(line, p.config.TabWidth), " ")
	}
	text = strings.Join(lines, "\n")

	if p.config.MaxLineBreaks > 1 {
		excessive := regexp.MustCompile(`\n{` + strconv.Itoa(p.config.MaxLineBreaks+1) + `,}`)
		text = excessive.ReplaceAllString(text, strings.Repeat("\n", p.config.MaxLineBreaks))
	}

	// Leading spaces on the first line are chord columns, so only whole blank
	// lines are removed from the front.
	text = leadingBlankLinesRegex.ReplaceAllString(text, "")
	return strings.TrimRight(text, " \t\n")
}

// expandTabs replaces tabs with spaces up to the next tab stop
func expandTabs(line string, width int) string {
	if width <= 0 || !strings.Contains(line, "\t") {
		return line
	}

	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			pad := width - col%width
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
