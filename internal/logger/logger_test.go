package logger

import (
	"errors"
	"strings"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (c *recordingClient) SendMessage(chatID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent == nil {
		c.sent = make(map[int64][]string)
	}
	c.sent[chatID] = append(c.sent[chatID], text)
	return nil
}

func (c *recordingClient) messages(chatID int64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent[chatID]...)
}

func TestChannelSink(t *testing.T) {
	client := &recordingClient{}
	Init(client, -100)
	t.Cleanup(func() { Init(nil, 0) })
	SetLevel("info")

	Info("crawl started")
	Error("page failed")
	Debug("hidden at info level")
	Wait()

	got := client.messages(-100)
	require.Len(t, got, 2)

	joined := strings.Join(got, "\n")
	assert.Contains(t, joined, "ℹ️ INFO\ncrawl started")
	assert.Contains(t, joined, "❌ ERROR\npage failed")
	assert.NotContains(t, joined, "hidden")
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("debug")
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	SetLevel("nonsense")
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestLogWithErr(t *testing.T) {
	assert.NoError(t, LogWithErr("all good", nil))

	cause := errors.New("timeout")
	err := LogWithErr("Failed to store songbook", cause)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "Failed to store songbook: timeout")
}
