package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/chordsync/internal/bot"
	"github.com/sukalov/chordsync/internal/bot/bottest"
	"github.com/sukalov/chordsync/internal/pipeline"
	"github.com/sukalov/chordsync/internal/songbook"
)

type fakeSyncer struct {
	report  *pipeline.Report
	err     error
	version songbook.Version
	hasData bool
	runs    int
	block   chan struct{}
}

func (f *fakeSyncer) Run(ctx context.Context) (*pipeline.Report, error) {
	f.runs++
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.report, f.err
}

func (f *fakeSyncer) Status(context.Context) (songbook.Version, bool, error) {
	return f.version, f.hasData, nil
}

func newTestBot(t *testing.T) (*bot.Bot, *bottest.Server) {
	t.Helper()
	srv := bottest.NewServer(t)
	b, err := bot.NewWithEndpoint("admin", "123:abc", srv.Endpoint())
	require.NoError(t, err)
	return b, srv
}

func message(from, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{UserName: from},
	}}
}

func texts(sent []bottest.Sent) []string {
	var out []string
	for _, s := range sent {
		out = append(out, s.Text)
	}
	return out
}

func TestSync(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		syncer *fakeSyncer
		want   []string
		runs   int
	}{
		{
			name:   "not an admin",
			from:   "stranger",
			syncer: &fakeSyncer{},
			want:   []string{"you are not an admin"},
		},
		{
			name:   "success",
			from:   "sukalov",
			syncer: &fakeSyncer{report: &pipeline.Report{Links: 3, Scraped: 2, Version: songbook.Version{TotalSongs: 2}}},
			want: []string{
				"sync started",
				"sync finished\n\nlinks: 3\nscraped: 2\nno chords: 0\nfailed: 0\nduplicates: 0\nsongs saved: 2",
			},
			runs: 1,
		},
		{
			name: "mirror warning",
			from: "sukalov",
			syncer: &fakeSyncer{report: &pipeline.Report{
				MirrorErrors: []error{errors.New("redis down")},
			}},
			want: []string{
				"sync started",
				"sync finished\n\nlinks: 0\nscraped: 0\nno chords: 0\nfailed: 0\nduplicates: 0\nsongs saved: 0\nwarning: redis down",
			},
			runs: 1,
		},
		{
			name:   "failure",
			from:   "sukalov",
			syncer: &fakeSyncer{err: errors.New("no song links found in sitemaps")},
			want:   []string{"sync started", "sync failed: no song links found in sitemaps"},
			runs:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, srv := newTestBot(t)
			h := NewAdminHandlers(context.Background(), tt.syncer, []string{"sukalov"}, time.Minute)

			require.NoError(t, h.syncHandler(b, message(tt.from, "/sync")))
			assert.Equal(t, tt.want, texts(srv.Sent()))
			assert.Equal(t, tt.runs, tt.syncer.runs)
		})
	}
}

func TestSync_AlreadyRunning(t *testing.T) {
	b, srv := newTestBot(t)
	syncer := &fakeSyncer{report: &pipeline.Report{}, block: make(chan struct{})}
	h := NewAdminHandlers(context.Background(), syncer, []string{"sukalov"}, 0)

	done := make(chan error)
	go func() { done <- h.syncHandler(b, message("sukalov", "/sync")) }()

	require.Eventually(t, func() bool { return len(srv.Sent()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, h.syncHandler(b, message("sukalov", "/sync")))

	close(syncer.block)
	require.NoError(t, <-done)

	got := texts(srv.Sent())
	require.Len(t, got, 3)
	assert.Equal(t, "sync is already running", got[1])
	assert.Equal(t, 1, syncer.runs)
}

func TestStatus(t *testing.T) {
	b, srv := newTestBot(t)

	empty := NewAdminHandlers(context.Background(), &fakeSyncer{}, []string{"sukalov"}, 0)
	require.NoError(t, empty.statusHandler(b, message("sukalov", "/status")))

	filled := NewAdminHandlers(context.Background(), &fakeSyncer{
		version: songbook.Version{LastUpdated: 1700000000, TotalSongs: 812},
		hasData: true,
	}, []string{"sukalov"}, 0)
	require.NoError(t, filled.statusHandler(b, message("sukalov", "/status")))
	require.NoError(t, filled.statusHandler(b, message("stranger", "/status")))

	sent := srv.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, "no songbook yet. run /sync", sent[0].Text)
	assert.Equal(t, "*songs:* 812\n*last updated:* 2023-11-14 22:13:20 UTC", sent[1].Text)
	assert.Equal(t, "Markdown", sent[1].ParseMode)
	assert.Equal(t, "you are not an admin", sent[2].Text)
}

func TestCommandHandlers(t *testing.T) {
	h := NewAdminHandlers(context.Background(), &fakeSyncer{}, nil, 0)
	handlers := h.CommandHandlers()
	for _, name := range []string{"start", "help", "sync", "status"} {
		assert.Contains(t, handlers, name)
	}
}

func TestSync_StopsWithParentContext(t *testing.T) {
	b, srv := newTestBot(t)
	syncer := &fakeSyncer{report: &pipeline.Report{}, block: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	h := NewAdminHandlers(ctx, syncer, []string{"sukalov"}, 0)

	done := make(chan error)
	go func() { done <- h.syncHandler(b, message("sukalov", "/sync")) }()

	require.Eventually(t, func() bool { return len(srv.Sent()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	waited := make(chan struct{})
	go func() { h.Wait(); close(waited) }()

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("sync kept running after the context was cancelled")
	}
	require.NoError(t, <-done)

	got := texts(srv.Sent())
	require.Len(t, got, 2)
	assert.Equal(t, "sync failed: context canceled", got[1])
}

func TestSync_Timeout(t *testing.T) {
	b, srv := newTestBot(t)
	syncer := &fakeSyncer{report: &pipeline.Report{}, block: make(chan struct{})}
	h := NewAdminHandlers(context.Background(), syncer, []string{"sukalov"}, 20*time.Millisecond)

	require.NoError(t, h.syncHandler(b, message("sukalov", "/sync")))

	got := texts(srv.Sent())
	require.Len(t, got, 2)
	assert.Equal(t, "sync failed: context deadline exceeded", got[1])
}
