package songbook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sukalov/chordsync/internal/lyrics"
)

const (
	SongsFile   = "hymn.json"
	VersionFile = "version.json"
)

// Version is written next to the songbook so the app can tell whether its
// cached copy is stale.
type Version struct {
	LastUpdated int64 `json:"last_updated"`
	TotalSongs  int   `json:"total_songs"`
}

// SortByTitle orders songs by title, ignoring case. Equal titles keep their
// relative order.
func SortByTitle(songs []lyrics.Song) {
	sort.SliceStable(songs, func(i, j int) bool {
		return strings.ToLower(songs[i].Title) < strings.ToLower(songs[j].Title)
	})
}

// Save sorts songs by title and writes the songbook and its version record
// into dir, creating it if needed.
func Save(dir string, songs []lyrics.Song, now time.Time) (Version, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Version{}, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	sorted := make([]lyrics.Song, len(songs))
	copy(sorted, songs)
	SortByTitle(sorted)
	for i := range sorted {
		if sorted[i].Lyric == nil {
			sorted[i].Lyric = []lyrics.LyricBlock{}
		}
	}

	if err := writeJSON(filepath.Join(dir, SongsFile), sorted); err != nil {
		return Version{}, err
	}

	version := Version{LastUpdated: now.Unix(), TotalSongs: len(sorted)}
	if err := writeJSON(filepath.Join(dir, VersionFile), version); err != nil {
		return Version{}, err
	}
	return version, nil
}

// Load reads a songbook written by Save
func Load(dir string) ([]lyrics.Song, error) {
	var songs []lyrics.Song
	if err := readJSON(filepath.Join(dir, SongsFile), &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// LoadVersion reads the version record written by Save
func LoadVersion(dir string) (Version, error) {
	var version Version
	err := readJSON(filepath.Join(dir, VersionFile), &version)
	return version, err
}

// LoadRaw reads a raw scrape dump
func LoadRaw(path string) ([]lyrics.RawSong, error) {
	var raws []lyrics.RawSong
	if err := readJSON(path, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

// SaveRaw writes a raw scrape dump
func SaveRaw(path string, raws []lyrics.RawSong) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if raws == nil {
		raws = []lyrics.RawSong{}
	}
	return writeJSON(path, raws)
}

// writeJSON writes v indented by four spaces with non-ASCII text kept as-is.
// The file is replaced atomically.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
