package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/sukalov/chordsync/internal/config"
	"github.com/sukalov/chordsync/internal/logger"
	"github.com/sukalov/chordsync/internal/lyrics"
	"github.com/sukalov/chordsync/internal/songbook"
)

// hymnclean turns an existing raw dump into the cleaned songbook without
// touching the network.
func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	var inputFile, outputDir string
	flag.StringVar(&inputFile, "input", cfg.Output.RawFile, "Raw songs file")
	flag.StringVar(&outputDir, "output", cfg.Output.Dir, "Directory for hymn.json and version.json")
	flag.Parse()

	raws, err := songbook.LoadRaw(inputFile)
	if err != nil {
		log.Fatalf("Error loading raw songs: %v", err)
	}

	service := lyrics.NewService(nil, lyrics.DefaultKeywords())
	songs := service.ProcessAll(raws)

	version, err := songbook.Save(outputDir, songs, time.Now())
	if err != nil {
		log.Fatalf("Error saving songbook: %v", err)
	}

	logger.Success(fmt.Sprintf("Cleaned %d songs from %s into %s", version.TotalSongs, inputFile, outputDir))
}
