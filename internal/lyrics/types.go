package lyrics

// LyricBlock is one typed paragraph of a song.
type LyricBlock struct {
	Type SectionType `json:"type"`
	Text string      `json:"text"`
}

// Song is the structured form consumed by the mobile app.
type Song struct {
	RemoteID string       `json:"remote_id"`
	Language string       `json:"language"`
	Title    string       `json:"title"`
	Artist   string       `json:"artist"`
	Key      string       `json:"key"`
	Lyric    []LyricBlock `json:"lyric"`
}

// RawLyric holds the unprocessed text of a scraped page.
type RawLyric struct {
	Text string `json:"text"`
}

// RawSong is a scraped page before alignment and segmentation. Lyric mirrors
// the layout of the raw dump file: a single entry holding the whole text.
type RawSong struct {
	RemoteID string     `json:"remote_id"`
	Language string     `json:"language"`
	Title    string     `json:"title"`
	Artist   string     `json:"artist"`
	Key      string     `json:"key"`
	URL      string     `json:"url,omitempty"`
	Lyric    []RawLyric `json:"lyric"`
}

// Text returns the raw page text, or "" when the song has none.
func (r RawSong) Text() string {
	if len(r.Lyric) == 0 {
		return ""
	}
	return r.Lyric[0].Text
}
