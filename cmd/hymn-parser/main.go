package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sukalov/chordsync/internal/config"
	"github.com/sukalov/chordsync/internal/logger"
	"github.com/sukalov/chordsync/internal/lyrics"
	"github.com/sukalov/chordsync/internal/lyrics/parsers/jrchord"
)

func main() {
	var (
		outputFile string
		rawOnly    bool
	)

	flag.StringVar(&outputFile, "output", "", "Output file name (default: stdout)")
	flag.BoolVar(&rawOnly, "raw", false, "Print the scraped text without aligning or segmenting it")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <URL>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "Example: %s https://www.jrchord.com/chord-amazing-grace/\n", os.Args[0])
		os.Exit(1)
	}

	url := args[0]
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	fmt.Fprintln(os.Stderr, "=== JRChord Song Extractor CLI ===")
	fmt.Fprintf(os.Stderr, "URL: %s\n", url)

	parserConfig := jrchord.DefaultConfig()
	parserConfig.DefaultLanguage = cfg.Crawl.DefaultLanguage
	parser := jrchord.NewParser(jrchord.NewClient(cfg.Crawl.Timeout).WithRateLimit(cfg.Crawl.RequestsPerSec, cfg.Crawl.Workers), parserConfig)
	service := lyrics.NewService(parser, lyrics.DefaultKeywords())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Crawl.Timeout)
	defer cancel()

	var output []byte
	if rawOnly {
		raw, err := service.ExtractRaw(ctx, url)
		if err != nil {
			log.Fatalf("Error extracting song: %v", err)
		}
		output = []byte(raw.Text() + "\n")
	} else {
		song, err := service.ExtractSong(ctx, url)
		if err != nil {
			log.Fatalf("Error extracting song: %v", err)
		}
		output, err = encode(song)
		if err != nil {
			log.Fatalf("Error encoding song: %v", err)
		}
	}

	if outputFile == "" {
		os.Stdout.Write(output)
		return
	}

	if err := os.WriteFile(outputFile, output, 0644); err != nil {
		logger.Error(fmt.Sprintf("Error saving song file\nFile: %s\nError: %v", outputFile, err))
		log.Fatalf("Error saving file: %v", err)
	}
	logger.Success(fmt.Sprintf("Song extraction completed successfully\nURL: %s\nOutput: %s", url, outputFile))
	logger.Wait()
}

func encode(song *lyrics.Song) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(song); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
