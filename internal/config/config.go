package config

import (
	"strconv"
	"time"

	"github.com/sukalov/chordsync/internal/utils"
)

var defaultSitemaps = []string{
	"https://www.jrchord.com/post-sitemap.xml",
	"https://www.jrchord.com/post-sitemap2.xml",
}

type Config struct {
	Crawl    CrawlConfig
	Output   OutputConfig
	Redis    RedisConfig
	Turso    TursoConfig
	Telegram TelegramConfig
	LogLevel string
}

type CrawlConfig struct {
	Sitemaps        []string
	Workers         int
	RequestsPerSec  float64
	Timeout         time.Duration
	SyncTimeout     time.Duration
	DefaultLanguage string
}

type OutputConfig struct {
	Dir     string
	RawFile string
}

type RedisConfig struct {
	URL      string
	Password string
}

type TursoConfig struct {
	DatabaseURL string
	AuthToken   string
}

type TelegramConfig struct {
	BotToken       string
	LogChannelID   int64
	AdminUsernames []string
}

func (r *RedisConfig) Enabled() bool {
	return r.URL != ""
}

func (t *TursoConfig) Enabled() bool {
	return t.DatabaseURL != ""
}

func (t *TelegramConfig) Enabled() bool {
	return t.BotToken != ""
}

// Load reads the configuration from the environment (and .env, if present).
// Every setting has a default; optional integrations stay off unless their
// variables are set.
func Load() *Config {
	sitemaps := utils.SplitList(utils.Getenv("SITEMAP_URLS", ""))
	if len(sitemaps) == 0 {
		sitemaps = append([]string(nil), defaultSitemaps...)
	}

	return &Config{
		Crawl: CrawlConfig{
			Sitemaps:        sitemaps,
			Workers:         getWorkers(),
			RequestsPerSec:  getRequestsPerSec(),
			Timeout:         getTimeout(),
			SyncTimeout:     getSyncTimeout(),
			DefaultLanguage: utils.Getenv("DEFAULT_LANGUAGE", "id"),
		},
		Output: OutputConfig{
			Dir:     utils.Getenv("OUTPUT_DIR", "cleaned"),
			RawFile: utils.Getenv("RAW_FILE", "hymns.json"),
		},
		Redis: RedisConfig{
			URL:      utils.Getenv("REDIS_URL", ""),
			Password: utils.Getenv("REDIS_PASSWORD", ""),
		},
		Turso: TursoConfig{
			DatabaseURL: utils.Getenv("TURSO_DATABASE_URL", ""),
			AuthToken:   utils.Getenv("TURSO_AUTH_TOKEN", ""),
		},
		Telegram: TelegramConfig{
			BotToken:       utils.Getenv("BOT_TOKEN", ""),
			LogChannelID:   getLogChannelID(),
			AdminUsernames: utils.SplitList(utils.Getenv("ADMIN_USERNAMES", "")),
		},
		LogLevel: utils.Getenv("LOG_LEVEL", "info"),
	}
}

func getWorkers() int {
	workers, err := strconv.Atoi(utils.Getenv("CRAWL_WORKERS", ""))
	if err != nil || workers <= 0 {
		return 4
	}
	if workers > 32 {
		return 32 // be polite to the source site
	}
	return workers
}

// getRequestsPerSec returns the crawl rate limit. 0 turns it off.
func getRequestsPerSec() float64 {
	rps, err := strconv.ParseFloat(utils.Getenv("CRAWL_RPS", ""), 64)
	if err != nil || rps < 0 {
		return 5
	}
	return rps
}

func getTimeout() time.Duration {
	seconds, err := strconv.Atoi(utils.Getenv("HTTP_TIMEOUT_SECONDS", ""))
	if err != nil || seconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

// getSyncTimeout bounds a /sync started from the bot. 0 means no bound.
func getSyncTimeout() time.Duration {
	minutes, err := strconv.Atoi(utils.Getenv("SYNC_TIMEOUT_MINUTES", ""))
	if err != nil || minutes < 0 {
		return 30 * time.Minute
	}
	return time.Duration(minutes) * time.Minute
}

func getLogChannelID() int64 {
	id, err := strconv.ParseInt(utils.Getenv("LOG_CHANNEL_ID", ""), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
