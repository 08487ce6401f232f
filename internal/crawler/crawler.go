package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sukalov/chordsync/internal/logger"
	"github.com/sukalov/chordsync/internal/lyrics"
	"github.com/sukalov/chordsync/internal/lyrics/parsers/jrchord"
)

// PageSource fetches and parses one song page
type PageSource interface {
	ExtractPage(ctx context.Context, url string) (*jrchord.Page, error)
}

// SeenStore remembers which songs were already collected
type SeenStore interface {
	// MarkSeen records id and reports whether it had not been seen before.
	MarkSeen(ctx context.Context, id string) (bool, error)
}

// MemorySeen is a SeenStore for a single run
type MemorySeen struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemorySeen() *MemorySeen {
	return &MemorySeen{ids: make(map[string]struct{})}
}

func (m *MemorySeen) MarkSeen(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ids[id]; ok {
		return false, nil
	}
	m.ids[id] = struct{}{}
	return true, nil
}

// Result is the outcome of a crawl
type Result struct {
	Songs      []lyrics.RawSong
	NoContent  int
	Failed     int
	Duplicates int
}

type Crawler struct {
	source  PageSource
	seen    SeenStore
	workers int
}

func New(source PageSource, seen SeenStore, workers int) *Crawler {
	if workers <= 0 {
		workers = 1
	}
	if seen == nil {
		seen = NewMemorySeen()
	}
	return &Crawler{source: source, seen: seen, workers: workers}
}

// Run fetches every link with at most c.workers requests in flight. Pages that
// fail to load or have no chord block are counted and skipped; songs whose
// remote id was already seen are dropped. Songs are returned in link order.
// Run stops early only when ctx is cancelled or the seen store fails.
func (c *Crawler) Run(ctx context.Context, links []string) (*Result, error) {
	var (
		mu     sync.Mutex
		result Result
		found  = make([]*lyrics.RawSong, len(links))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			page, err := c.source.ExtractPage(gctx, link)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				if errors.Is(err, jrchord.ErrContentNotFound) {
					result.NoContent++
				} else {
					result.Failed++
				}
				mu.Unlock()
				logger.Error(fmt.Sprintf("Error scraping %s: %v", link, err))
				return nil
			}

			isNew, err := c.seen.MarkSeen(gctx, page.RemoteID)
			if err != nil {
				return fmt.Errorf("seen store: %w", err)
			}
			if !isNew {
				mu.Lock()
				result.Duplicates++
				mu.Unlock()
				logger.Debug(fmt.Sprintf("Skipping duplicate %s (%s)", page.RemoteID, link))
				return nil
			}

			raw := lyrics.FromPage(page)
			mu.Lock()
			found[i] = &raw
			mu.Unlock()
			logger.Debug(fmt.Sprintf("Scraped %q from %s", page.Title, link))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Songs = make([]lyrics.RawSong, 0, len(links))
	for _, raw := range found {
		if raw != nil {
			result.Songs = append(result.Songs, *raw)
		}
	}
	return &result, nil
}
