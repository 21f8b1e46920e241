// Command arena syncs a player's Arena history through a running proxy and
// prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"arena-god/internal/config"
	"arena-god/internal/database"
	"arena-god/internal/logger"
	"arena-god/internal/lookup"
	"arena-god/internal/repository"
	"arena-god/internal/service"
	"arena-god/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "arena:", err)
		if errors.Is(err, lookup.ErrAccountNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	log := logger.SetLevel(zerolog.WarnLevel)

	cfg, err := config.LoadClient(log)
	if err != nil {
		return err
	}

	name := flag.String("name", "", "Riot game name")
	tag := flag.String("tag", "", "Riot tag line, with or without #")
	proxy := flag.String("proxy", cfg.ProxyURL, "base URL of the arena-god proxy")
	dbPath := flag.String("db", cfg.DBPath, "SQLite file used for local state")
	showProgress := flag.Bool("progress", false, "print stored progress without syncing")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := database.Open(*dbPath, log)
	if err != nil {
		return err
	}
	defer db.Close()

	storage := store.NewStorage(repository.NewSQLiteKV(db, log), log)
	resolver := lookup.NewResolver(lookup.NewProxyFetcher(*proxy, nil), log)
	tracker := service.NewTrackerService(resolver, storage, log)

	var out any
	if *showProgress {
		out, err = tracker.Progress(ctx)
	} else {
		out, err = tracker.Sync(ctx, *name, *tag)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
