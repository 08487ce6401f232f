package bot

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/chordsync/internal/logger"
)

// Handler reacts to one update
type Handler func(b *Bot, update tgbotapi.Update) error

// Bot represents a configurable Telegram bot
type Bot struct {
	Client   *tgbotapi.BotAPI
	stopChan chan struct{}
	stopOnce sync.Once
	name     string
}

// New creates a new bot instance
func New(name, token string) (*Bot, error) {
	return NewWithEndpoint(name, token, tgbotapi.APIEndpoint)
}

// NewWithEndpoint creates a bot talking to a custom Bot API server. endpoint
// is a format string like tgbotapi.APIEndpoint.
func NewWithEndpoint(name, token, endpoint string) (*Bot, error) {
	botClient, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s bot: %w", name, err)
	}

	return &Bot{
		Client:   botClient,
		stopChan: make(chan struct{}),
		name:     name,
	}, nil
}

// Start polls for updates and dispatches commands until Stop is called.
// Updates that are not commands go to the message handlers.
func (b *Bot) Start(commandHandlers map[string]Handler, messageHandlers []Handler) {
	logger.Info(fmt.Sprintf("[%s] authorized on account %s", b.name, b.Client.Self.UserName))

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateChan := b.Client.GetUpdatesChan(updateConfig)

	for {
		select {
		case update := <-updateChan:
			go b.processUpdate(update, commandHandlers, messageHandlers)
		case <-b.stopChan:
			b.Client.StopReceivingUpdates()
			return
		}
	}
}

func (b *Bot) processUpdate(
	update tgbotapi.Update,
	commandHandlers map[string]Handler,
	messageHandlers []Handler,
) {
	if update.Message == nil {
		return
	}

	if update.Message.IsCommand() {
		if handler, exists := commandHandlers[update.Message.Command()]; exists {
			if err := handler(b, update); err != nil {
				logger.Error(fmt.Sprintf("[%s] command /%s failed: %v", b.name, update.Message.Command(), err))
			}
			return
		}
	}

	for _, handler := range messageHandlers {
		if err := handler(b, update); err != nil {
			logger.Error(fmt.Sprintf("[%s] message handler error: %v", b.name, err))
		}
	}
}

// Stop halts the bot. It is safe to call more than once.
func (b *Bot) Stop() {
	b.stopOnce.Do(func() { close(b.stopChan) })
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	_, err := b.Client.Send(msg)
	return err
}
