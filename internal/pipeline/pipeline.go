package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sukalov/chordsync/internal/crawler"
	"github.com/sukalov/chordsync/internal/logger"
	"github.com/sukalov/chordsync/internal/lyrics"
	"github.com/sukalov/chordsync/internal/lyrics/parsers/jrchord"
	"github.com/sukalov/chordsync/internal/songbook"
)

// SeenStore is a crawler.SeenStore that can be emptied between runs
type SeenStore interface {
	crawler.SeenStore
	ResetSeen(ctx context.Context) error
}

// SnapshotStore keeps a copy of the latest songbook
type SnapshotStore interface {
	SetSongbook(ctx context.Context, songs []lyrics.Song) error
	SetVersion(ctx context.Context, version songbook.Version) error
	GetVersion(ctx context.Context) (songbook.Version, bool, error)
}

// SongStore mirrors songs into a database
type SongStore interface {
	UpsertSongs(ctx context.Context, songs []lyrics.Song, now time.Time) error
}

type Options struct {
	Sitemaps  []string
	Workers   int
	OutputDir string
	// RawFile, when set, receives the scraped songs before processing.
	RawFile string
}

// Report summarises one run
type Report struct {
	Links      int
	Scraped    int
	NoContent  int
	Failed     int
	Duplicates int
	Version    songbook.Version
	// MirrorErrors holds failures of the optional stores. They do not fail
	// the run since the files were already written.
	MirrorErrors []error
}

func (r *Report) String() string {
	return fmt.Sprintf("links: %d\nscraped: %d\nno chords: %d\nfailed: %d\nduplicates: %d\nsongs saved: %d",
		r.Links, r.Scraped, r.NoContent, r.Failed, r.Duplicates, r.Version.TotalSongs)
}

type Runner struct {
	parser   *jrchord.Parser
	service  *lyrics.Service
	opts     Options
	seen     SeenStore
	snapshot SnapshotStore
	songs    SongStore
	now      func() time.Time
}

func NewRunner(parser *jrchord.Parser, service *lyrics.Service, opts Options) *Runner {
	return &Runner{
		parser:  parser,
		service: service,
		opts:    opts,
		now:     time.Now,
	}
}

// WithSeenStore shares duplicate detection through store instead of memory
func (r *Runner) WithSeenStore(store SeenStore) *Runner {
	r.seen = store
	return r
}

func (r *Runner) WithSnapshot(store SnapshotStore) *Runner {
	r.snapshot = store
	return r
}

func (r *Runner) WithSongStore(store SongStore) *Runner {
	r.songs = store
	return r
}

// Run crawls every sitemap, turns the pages into songs and writes the
// songbook. Optional stores are updated afterwards.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	links, err := r.parser.CollectLinks(ctx, r.opts.Sitemaps)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, errors.New("no song links found in sitemaps")
	}
	logger.Info(fmt.Sprintf("Found %d song links", len(links)))

	var seen crawler.SeenStore = crawler.NewMemorySeen()
	if r.seen != nil {
		if err := r.seen.ResetSeen(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset seen store: %w", err)
		}
		seen = r.seen
	}

	result, err := crawler.New(r.parser, seen, r.opts.Workers).Run(ctx, links)
	if err != nil {
		return nil, fmt.Errorf("crawl aborted: %w", err)
	}

	if r.opts.RawFile != "" {
		if err := songbook.SaveRaw(r.opts.RawFile, result.Songs); err != nil {
			return nil, err
		}
		logger.Debug(fmt.Sprintf("Raw songs saved to %s", r.opts.RawFile))
	}

	songs := r.service.ProcessAll(result.Songs)
	now := r.now()
	version, err := songbook.Save(r.opts.OutputDir, songs, now)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Links:      len(links),
		Scraped:    len(result.Songs),
		NoContent:  result.NoContent,
		Failed:     result.Failed,
		Duplicates: result.Duplicates,
		Version:    version,
	}
	report.MirrorErrors = r.mirror(ctx, songs, version, now)
	return report, nil
}

func (r *Runner) mirror(ctx context.Context, songs []lyrics.Song, version songbook.Version, now time.Time) []error {
	var errs []error

	if r.snapshot != nil {
		sorted := append([]lyrics.Song(nil), songs...)
		songbook.SortByTitle(sorted)
		if err := r.snapshot.SetSongbook(ctx, sorted); err != nil {
			errs = append(errs, logger.LogWithErr("Failed to store songbook snapshot", err))
		} else if err := r.snapshot.SetVersion(ctx, version); err != nil {
			errs = append(errs, logger.LogWithErr("Failed to store songbook version", err))
		}
	}

	if r.songs != nil {
		if err := r.songs.UpsertSongs(ctx, songs, now); err != nil {
			errs = append(errs, logger.LogWithErr("Failed to mirror songs to database", err))
		}
	}

	return errs
}

// Status returns the version of the latest songbook, and false when none was
// written yet.
func (r *Runner) Status(ctx context.Context) (songbook.Version, bool, error) {
	if r.snapshot != nil {
		return r.snapshot.GetVersion(ctx)
	}

	version, err := songbook.LoadVersion(r.opts.OutputDir)
	if errors.Is(err, os.ErrNotExist) {
		return songbook.Version{}, false, nil
	}
	if err != nil {
		return songbook.Version{}, false, err
	}
	return version, true, nil
}
