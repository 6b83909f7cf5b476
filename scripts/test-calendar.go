package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/zoria/nautiljon-planner/internal/export"
	"github.com/zoria/nautiljon-planner/internal/logger"
	"github.com/zoria/nautiljon-planner/internal/pipeline"
	"github.com/zoria/nautiljon-planner/internal/scraper"
)

// Renders testdata/fixtures/planning_manga.html (or the file given as first
// argument) to test-planning.ics without touching the network.
func main() {
	source := "testdata/fixtures/planning_manga.html"
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	markup, err := os.ReadFile(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading fixture: %v\n", err)
		os.Exit(1)
	}

	p := &pipeline.Pipeline{
		Fetcher: &scraper.StaticFetcher{Markup: string(markup)},
		URL:     scraper.PlanningManga.URL(scraper.BaseURL),
		BaseURL: scraper.BaseURL,
		Timeout: time.Second,
		Log:     logger.New(logger.LevelWarn, os.Stderr),
	}

	filename := "test-planning.ics"
	result, err := p.Export(context.Background(), filename, export.FormatICS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating calendar: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s (%d releases, %d events)\n\n", filename, result.Records, result.Events)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")

	content, err := os.ReadFile(filename)
	if err == nil {
		fmt.Println("\nFile contents preview:")
		fmt.Println("---")
		fmt.Println(string(content))
	}
}
