package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/request"
)

func main() {
	company := flag.String("company", "", "company name, e.g. 'ООО Ромашка'")
	date := flag.String("date", "", "registration date, e.g. 10.06.2015")
	place := flag.String("place", "", "registration city (defaults to Москва)")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	compressOldLogs(ctx, cfg)

	req, err := request.Parse(*company, *date, *place)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid request: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	p := initializePipeline(ctx, cfg)

	result, err := p.Run(ctx, req)
	if err != nil {
		logger.ErrorWithErr(ctx, "Pipeline failed", err)
		os.Exit(1)
	}

	fmt.Println(result.Narrative)
	if len(result.DegradedSources) > 0 {
		names := make([]string, 0, len(result.DegradedSources))
		for _, s := range result.DegradedSources {
			names = append(names, string(s))
		}
		fmt.Printf("\n⚠️ Часть источников была недоступна: %s\n", strings.Join(names, ", "))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = logger.Shutdown(shutdownCtx)
}
