package lyrics

import "strings"

// SectionType is the structural role of a lyric block. The numeric values are
// part of the published JSON and must not be renumbered.
type SectionType int

const (
	SectionIntro SectionType = iota
	SectionVerse
	SectionPreChorus
	SectionChorus
	SectionBridge
	SectionOutro
)

var sectionNames = [...]string{
	SectionIntro:     "intro",
	SectionVerse:     "verse",
	SectionPreChorus: "pre-chorus",
	SectionChorus:    "chorus",
	SectionBridge:    "bridge",
	SectionOutro:     "outro",
}

func (t SectionType) String() string {
	if t < 0 || int(t) >= len(sectionNames) {
		return "unknown"
	}
	return sectionNames[t]
}

// Keyword maps a lower-case header prefix to a section type.
type Keyword struct {
	Prefix string
	Type   SectionType
}

// KeywordTable is an ordered list of header keywords. When several prefixes
// match the same line the earliest entry wins, so order is significant.
type KeywordTable struct {
	keywords []Keyword
}

// NewKeywordTable builds a table from keywords in the given order. Prefixes
// are lower-cased; empty prefixes are ignored since they would match
// everything.
func NewKeywordTable(keywords ...Keyword) KeywordTable {
	table := KeywordTable{keywords: make([]Keyword, 0, len(keywords))}
	for _, kw := range keywords {
		prefix := strings.ToLower(strings.TrimSpace(kw.Prefix))
		if prefix == "" {
			continue
		}
		table.keywords = append(table.keywords, Keyword{Prefix: prefix, Type: kw.Type})
	}
	return table
}

// DefaultKeywords returns the English and Indonesian section headers used by
// Indonesian chord sites.
func DefaultKeywords() KeywordTable {
	return NewKeywordTable(
		Keyword{"intro", SectionIntro},
		Keyword{"awal", SectionIntro},
		Keyword{"bait", SectionVerse},
		Keyword{"verse", SectionVerse},
		Keyword{"pre-chorus", SectionPreChorus},
		Keyword{"pre chorus", SectionPreChorus},
		Keyword{"reff", SectionChorus},
		Keyword{"chorus", SectionChorus},
		Keyword{"korus", SectionChorus},
		Keyword{"bridge", SectionBridge},
		Keyword{"jembatan", SectionBridge},
		Keyword{"outro", SectionOutro},
		Keyword{"coda", SectionOutro},
		Keyword{"ending", SectionOutro},
		Keyword{"akhiran", SectionOutro},
	)
}

// Keywords returns a copy of the table entries in match order.
func (kt KeywordTable) Keywords() []Keyword {
	out := make([]Keyword, len(kt.keywords))
	copy(out, kt.keywords)
	return out
}

// MatchHeader reports the section type named by line, if any. This is a plain
// prefix test: "Bait 2:" and "Reff (2x)" match, and so would a lyric that
// happens to start with a keyword.
func (kt KeywordTable) MatchHeader(line string) (SectionType, bool) {
	line = strings.ToLower(strings.TrimSpace(line))
	for _, kw := range kt.keywords {
		if strings.HasPrefix(line, kw.Prefix) {
			return kw.Type, true
		}
	}
	return 0, false
}
