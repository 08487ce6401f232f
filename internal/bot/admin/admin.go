package admin

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/chordsync/internal/bot"
	"github.com/sukalov/chordsync/internal/pipeline"
	"github.com/sukalov/chordsync/internal/songbook"
)

// Syncer rebuilds the songbook and reports its state
type Syncer interface {
	Run(ctx context.Context) (*pipeline.Report, error)
	Status(ctx context.Context) (songbook.Version, bool, error)
}

type AdminHandlers struct {
	ctx     context.Context
	syncer  Syncer
	admins  map[string]bool
	syncing atomic.Bool
	running sync.WaitGroup
	timeout time.Duration
}

// NewAdminHandlers creates the admin commands. Syncs run under ctx, so
// cancelling it stops a running crawl; timeout > 0 bounds every sync.
func NewAdminHandlers(ctx context.Context, syncer Syncer, adminUsernames []string, timeout time.Duration) *AdminHandlers {
	admins := make(map[string]bool)
	for _, username := range adminUsernames {
		admins[username] = true
	}

	return &AdminHandlers{
		ctx:     ctx,
		syncer:  syncer,
		admins:  admins,
		timeout: timeout,
	}
}

func (h *AdminHandlers) isAdmin(message *tgbotapi.Message) bool {
	return message.From != nil && h.admins[message.From.UserName]
}

func (h *AdminHandlers) helpHandler(b *bot.Bot, update tgbotapi.Update) error {
	return b.SendMessage(update.Message.Chat.ID,
		"/sync - crawl the site and rebuild the songbook\n/status - show the current songbook version")
}

func (h *AdminHandlers) syncHandler(b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	if !h.isAdmin(message) {
		return b.SendMessage(message.Chat.ID, "you are not an admin")
	}

	if !h.syncing.CompareAndSwap(false, true) {
		return b.SendMessage(message.Chat.ID, "sync is already running")
	}
	h.running.Add(1)
	defer h.running.Done()
	defer h.syncing.Store(false)

	if err := b.SendMessage(message.Chat.ID, "sync started"); err != nil {
		return err
	}

	ctx := h.ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	report, err := h.syncer.Run(ctx)
	if err != nil {
		return b.SendMessage(message.Chat.ID, fmt.Sprintf("sync failed: %v", err))
	}

	text := "sync finished\n\n" + report.String()
	for _, mirrorErr := range report.MirrorErrors {
		text += fmt.Sprintf("\nwarning: %v", mirrorErr)
	}
	return b.SendMessage(message.Chat.ID, text)
}

func (h *AdminHandlers) statusHandler(b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	if !h.isAdmin(message) {
		return b.SendMessage(message.Chat.ID, "you are not an admin")
	}

	version, ok, err := h.syncer.Status(h.ctx)
	if err != nil {
		return b.SendMessage(message.Chat.ID, fmt.Sprintf("could not read status: %v", err))
	}
	if !ok {
		return b.SendMessage(message.Chat.ID, "no songbook yet. run /sync")
	}

	updated := time.Unix(version.LastUpdated, 0).UTC().Format("2006-01-02 15:04:05")
	return b.SendMessageWithMarkdown(message.Chat.ID,
		fmt.Sprintf("*songs:* %d\n*last updated:* %s UTC", version.TotalSongs, updated))
}

func (h *AdminHandlers) messageHandler(b *bot.Bot, update tgbotapi.Update) error {
	return b.SendMessage(update.Message.Chat.ID, "unknown command. try /help")
}

// Wait blocks until a running sync has returned
func (h *AdminHandlers) Wait() {
	h.running.Wait()
}

// CommandHandlers returns the admin commands keyed by name
func (h *AdminHandlers) CommandHandlers() map[string]bot.Handler {
	return map[string]bot.Handler{
		"start":  h.helpHandler,
		"help":   h.helpHandler,
		"sync":   h.syncHandler,
		"status": h.statusHandler,
	}
}

// SetupHandlers starts adminBot with the admin commands in the background
func SetupHandlers(ctx context.Context, adminBot *bot.Bot, syncer Syncer, adminUsernames []string, timeout time.Duration) *AdminHandlers {
	handlers := NewAdminHandlers(ctx, syncer, adminUsernames, timeout)
	go adminBot.Start(handlers.CommandHandlers(), []bot.Handler{handlers.messageHandler})
	return handlers
}
