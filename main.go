package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mtreilly/MemoryWatch/config"
	"github.com/mtreilly/MemoryWatch/logger"
	"github.com/mtreilly/MemoryWatch/report"
)

func main() {
	// One optional positional argument: the window size in hours.
	hours := 24
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid hours: %s\n", os.Args[1])
			os.Exit(1)
		}
		hours = n
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error setting up logger:", err)
		os.Exit(1)
	}
	defer logger.Flush(log.Logger)

	text := report.Generate(context.Background(), cfg, log.Logger, hours)
	fmt.Println(text)

	// The report already went to stdout; a failed save is not fatal.
	path, err := report.Save(cfg, text, time.Now())
	if err != nil {
		log.Logger.Warn("saving report", zap.Error(err))
		return
	}
	fmt.Printf("\nReport saved to: %s\n", path)
}
