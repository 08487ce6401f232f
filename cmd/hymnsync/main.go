package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sukalov/chordsync/internal/bot"
	"github.com/sukalov/chordsync/internal/bot/admin"
	"github.com/sukalov/chordsync/internal/config"
	"github.com/sukalov/chordsync/internal/db"
	"github.com/sukalov/chordsync/internal/logger"
	"github.com/sukalov/chordsync/internal/lyrics"
	"github.com/sukalov/chordsync/internal/lyrics/parsers/jrchord"
	"github.com/sukalov/chordsync/internal/pipeline"
	"github.com/sukalov/chordsync/internal/redis"
	"github.com/sukalov/chordsync/internal/utils"
)

func main() {
	var (
		botMode bool
		dumpRaw bool
	)
	flag.BoolVar(&botMode, "bot", false, "Wait for /sync and /status commands from admins instead of running once")
	flag.BoolVar(&dumpRaw, "raw", false, "Also write the scraped songs to RAW_FILE")
	flag.Parse()

	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if botMode {
		if _, err := utils.LoadEnv([]string{"BOT_TOKEN"}); err != nil {
			log.Fatalf("-bot mode: %v", err)
		}
	}

	var adminBot *bot.Bot
	if cfg.Telegram.Enabled() {
		var err error
		adminBot, err = bot.New("hymnsync", cfg.Telegram.BotToken)
		if err != nil {
			log.Fatalf("Error starting bot: %v", err)
		}
		if cfg.Telegram.LogChannelID != 0 {
			logger.Init(adminBot, cfg.Telegram.LogChannelID)
		}
	}

	parserConfig := jrchord.DefaultConfig()
	parserConfig.DefaultLanguage = cfg.Crawl.DefaultLanguage
	parser := jrchord.NewParser(jrchord.NewClient(cfg.Crawl.Timeout).WithRateLimit(cfg.Crawl.RequestsPerSec, cfg.Crawl.Workers), parserConfig)

	opts := pipeline.Options{
		Sitemaps:  cfg.Crawl.Sitemaps,
		Workers:   cfg.Crawl.Workers,
		OutputDir: cfg.Output.Dir,
	}
	if dumpRaw {
		opts.RawFile = cfg.Output.RawFile
	}
	runner := pipeline.NewRunner(parser, lyrics.NewService(parser, lyrics.DefaultKeywords()), opts)

	if cfg.Redis.Enabled() {
		cache, err := redis.NewDBManager(cfg.Redis.URL, cfg.Redis.Password)
		if err != nil {
			log.Fatalf("Error configuring redis: %v", err)
		}
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			log.Fatalf("Error connecting to redis: %v", err)
		}
		runner.WithSeenStore(cache).WithSnapshot(cache)
	}

	if cfg.Turso.Enabled() {
		database, err := db.Open(ctx, cfg.Turso.DatabaseURL, cfg.Turso.AuthToken)
		if err != nil {
			log.Fatalf("Error connecting to database: %v", err)
		}
		store := db.NewStore(database)
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			log.Fatalf("Error migrating database: %v", err)
		}
		runner.WithSongStore(store)
	}

	if botMode {
		handlers := admin.SetupHandlers(ctx, adminBot, runner, cfg.Telegram.AdminUsernames, cfg.Crawl.SyncTimeout)
		logger.Info("Waiting for admin commands")
		<-ctx.Done()
		adminBot.Stop()
		// a running sync sees the cancelled context and returns
		handlers.Wait()
		logger.Wait()
		return
	}

	report, err := runner.Run(ctx)
	if err != nil {
		logger.Error(fmt.Sprintf("Sync failed: %v", err))
		logger.Wait()
		os.Exit(1)
	}
	logger.Success(fmt.Sprintf("Sync completed\n%s", report))
	logger.Wait()
}
