package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sukalov/chordsync/internal/lyrics"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS songs (
		remote_id  TEXT PRIMARY KEY,
		language   TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL,
		artist     TEXT NOT NULL DEFAULT '',
		song_key   TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lyric_blocks (
		remote_id TEXT NOT NULL REFERENCES songs(remote_id) ON DELETE CASCADE,
		position  INTEGER NOT NULL,
		type      INTEGER NOT NULL,
		text      TEXT NOT NULL,
		PRIMARY KEY (remote_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_title ON songs(title COLLATE NOCASE)`,
}

// Store mirrors the songbook into a SQL database
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables if they do not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// UpsertSongs inserts or replaces songs and their lyric blocks in a single
// transaction
func (s *Store) UpsertSongs(ctx context.Context, songs []lyrics.Song, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsertSong := `
		INSERT INTO songs (remote_id, language, title, artist, song_key, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			language = excluded.language,
			title = excluded.title,
			artist = excluded.artist,
			song_key = excluded.song_key,
			updated_at = excluded.updated_at
	`

	for _, song := range songs {
		if song.RemoteID == "" {
			return fmt.Errorf("song %q has no remote id", song.Title)
		}

		if _, err := tx.ExecContext(ctx, upsertSong,
			song.RemoteID,
			song.Language,
			song.Title,
			song.Artist,
			song.Key,
			now.Unix(),
		); err != nil {
			return fmt.Errorf("failed to upsert song %s: %w", song.RemoteID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM lyric_blocks WHERE remote_id = ?`, song.RemoteID); err != nil {
			return fmt.Errorf("failed to clear lyric blocks of %s: %w", song.RemoteID, err)
		}

		for i, block := range song.Lyric {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO lyric_blocks (remote_id, position, type, text) VALUES (?, ?, ?, ?)`,
				song.RemoteID, i, int(block.Type), block.Text,
			); err != nil {
				return fmt.Errorf("failed to insert lyric block %d of %s: %w", i, song.RemoteID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit songs: %w", err)
	}
	return nil
}

// ListSongs returns every song ordered by title, ignoring case
func (s *Store) ListSongs(ctx context.Context) ([]lyrics.Song, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT remote_id, language, title, artist, song_key FROM songs ORDER BY title COLLATE NOCASE, remote_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	var songs []lyrics.Song
	index := make(map[string]int)
	for rows.Next() {
		var song lyrics.Song
		if err := rows.Scan(&song.RemoteID, &song.Language, &song.Title, &song.Artist, &song.Key); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning song: %w", err)
		}
		song.Lyric = []lyrics.LyricBlock{}
		index[song.RemoteID] = len(songs)
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	rows.Close()

	blockRows, err := s.db.QueryContext(ctx,
		`SELECT remote_id, type, text FROM lyric_blocks ORDER BY remote_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer blockRows.Close()

	for blockRows.Next() {
		var (
			remoteID string
			block    lyrics.LyricBlock
		)
		if err := blockRows.Scan(&remoteID, &block.Type, &block.Text); err != nil {
			return nil, fmt.Errorf("error scanning lyric block: %w", err)
		}
		if i, ok := index[remoteID]; ok {
			songs[i].Lyric = append(songs[i].Lyric, block)
		}
	}
	if err := blockRows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	return songs, nil
}

// Count returns the number of stored songs
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return n, nil
}
