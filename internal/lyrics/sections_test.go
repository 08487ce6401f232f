package lyrics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionType_Codes(t *testing.T) {
	// The mobile app depends on these exact numbers.
	assert.Equal(t, 0, int(SectionIntro))
	assert.Equal(t, 1, int(SectionVerse))
	assert.Equal(t, 2, int(SectionPreChorus))
	assert.Equal(t, 3, int(SectionChorus))
	assert.Equal(t, 4, int(SectionBridge))
	assert.Equal(t, 5, int(SectionOutro))

	data, err := json.Marshal(LyricBlock{Type: SectionChorus, Text: "Sing now"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":3,"text":"Sing now"}`, string(data))
}

func TestSectionType_String(t *testing.T) {
	assert.Equal(t, "pre-chorus", SectionPreChorus.String())
	assert.Equal(t, "outro", SectionOutro.String())
	assert.Equal(t, "unknown", SectionType(9).String())
	assert.Equal(t, "unknown", SectionType(-1).String())
}

func TestMatchHeader(t *testing.T) {
	table := DefaultKeywords()

	tests := []struct {
		line   string
		want   SectionType
		header bool
	}{
		{"Bait 1:", SectionVerse, true},
		{"  VERSE 2", SectionVerse, true},
		{"Intro: G D Em C", SectionIntro, true},
		{"Awal", SectionIntro, true},
		{"Pre-Chorus:", SectionPreChorus, true},
		{"pre chorus", SectionPreChorus, true},
		{"Reff:", SectionChorus, true},
		{"Reff (2x)", SectionChorus, true},
		{"Chorus", SectionChorus, true},
		{"Korus:", SectionChorus, true},
		{"Bridge", SectionBridge, true},
		{"Jembatan:", SectionBridge, true},
		{"Outro", SectionOutro, true},
		{"Coda:", SectionOutro, true},
		{"Ending", SectionOutro, true},
		{"Akhiran", SectionOutro, true},
		{"Amazing grace", 0, false},
		{"", 0, false},
		{"[G]Bait", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := table.MatchHeader(tt.line)
			assert.Equal(t, tt.header, ok)
			if tt.header {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// Prefix matching also fires on lyrics that begin with a keyword.
func TestMatchHeader_LyricStartingWithKeyword(t *testing.T) {
	got, ok := DefaultKeywords().MatchHeader("Awalnya aku tak tahu")
	assert.True(t, ok)
	assert.Equal(t, SectionIntro, got)
}

func TestMatchHeader_FirstMatchWins(t *testing.T) {
	table := NewKeywordTable(
		Keyword{"pre", SectionPreChorus},
		Keyword{"pre chorus", SectionChorus},
	)
	got, ok := table.MatchHeader("Pre Chorus:")
	require.True(t, ok)
	assert.Equal(t, SectionPreChorus, got)

	reversed := NewKeywordTable(
		Keyword{"pre chorus", SectionChorus},
		Keyword{"pre", SectionPreChorus},
	)
	got, ok = reversed.MatchHeader("Pre Chorus:")
	require.True(t, ok)
	assert.Equal(t, SectionChorus, got)
}

func TestNewKeywordTable_Normalises(t *testing.T) {
	table := NewKeywordTable(
		Keyword{"  REFF ", SectionChorus},
		Keyword{"", SectionBridge},
		Keyword{"   ", SectionBridge},
	)
	assert.Equal(t, []Keyword{{Prefix: "reff", Type: SectionChorus}}, table.Keywords())

	_, ok := table.MatchHeader("anything")
	assert.False(t, ok)
}

func TestKeywords_ReturnsCopy(t *testing.T) {
	table := DefaultKeywords()
	kws := table.Keywords()
	kws[0].Type = SectionOutro

	got, ok := table.MatchHeader("intro")
	require.True(t, ok)
	assert.Equal(t, SectionIntro, got)
}
