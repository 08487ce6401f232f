package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ChannelID int64
	mu        sync.RWMutex
	botClient BotClient
	pending   sync.WaitGroup
)

type BotClient interface {
	SendMessage(chatID int64, text string) error
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLevel sets the local log level from a name such as "debug" or "warn".
// Unknown names fall back to info.
func SetLevel(name string) {
	level, err := log.ParseLevel(name)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Init registers a Telegram client that receives a copy of every log line in
// channelID. Passing a nil client detaches the channel.
func Init(client BotClient, channelID int64) {
	mu.Lock()
	defer mu.Unlock()
	botClient = client
	ChannelID = channelID
}

func Info(message string) {
	log.Info(message)
	sendLog("ℹ️ INFO", message)
}

func Error(message string) {
	log.Error(message)
	sendLog("❌ ERROR", message)
}

func Debug(message string) {
	log.Debug(message)
	if log.IsLevelEnabled(log.DebugLevel) {
		sendLog("🔍 DEBUG", message)
	}
}

func Success(message string) {
	log.WithField("status", "success").Info(message)
	sendLog("✅ SUCCESS", message)
}

func sendLog(prefix, message string) {
	mu.RLock()
	client, channelID := botClient, ChannelID
	mu.RUnlock()

	if client == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logMessage := fmt.Sprintf("[%s] %s\n%s", timestamp, prefix, message)

	pending.Add(1)
	go func() {
		defer pending.Done()
		if err := client.SendMessage(channelID, logMessage); err != nil {
			log.WithError(err).Warn("failed to send log to channel")
		}
	}()
}

// Wait blocks until every log line queued for the channel was sent
func Wait() {
	pending.Wait()
}

// LogWithErr logs message as info when err is nil and as an error otherwise.
// It returns err wrapped with message so callers can log and return in one go.
func LogWithErr(message string, err error) error {
	if err == nil {
		Info(message)
		return nil
	}

	Error(fmt.Sprintf("%s\nError: %v", message, err))
	return fmt.Errorf("%s: %w", message, err)
}
