package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Garsondee/Crater/internal/config"
	"github.com/Garsondee/Crater/internal/logging"
	"github.com/Garsondee/Crater/internal/sim"
	"github.com/Garsondee/Crater/internal/store"
	"github.com/Garsondee/Crater/internal/tui"
	"github.com/gdamore/tcell/v2"
)

func main() {
	cfgPath := flag.String("config", "", "config file (json, yaml or toml)")
	seedStep := flag.Int64("seed-step", 1, "seed increment between matches")
	logPath := flag.String("log", "", "write logs to this file (the terminal is busy)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logLevel := cfg.LogLevel
	logOut := os.Stderr
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	} else {
		logLevel = "disabled"
	}
	log := logging.NewPlain(logLevel, logOut)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	scripted := cfg.Scripted()
	build := func(seed int64) *sim.Match {
		c := scripted
		c.Seed = seed
		return sim.NewMatch(c.MatchOptions(
			sim.WithDefaultRoster(sim.ControlScripted, sim.ControlScripted),
			sim.WithLogger(log),
		)...)
	}
	spectator := tui.NewSpectator(screen, build, cfg.Seed, *seedStep, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runErr := spectator.Run(ctx)
	stop()
	screen.Fini()
	if runErr != nil {
		log.Error().Err(runErr).Msg("spectator stopped")
	}

	results := spectator.Results()
	for _, r := range results {
		fmt.Print(r.Format())
	}
	if cfg.Store.Path == "" || len(results) == 0 {
		return
	}
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	for _, r := range results {
		if _, err := db.SaveResult(context.Background(), r); err != nil {
			log.Error().Err(err).Int64("seed", r.Seed).Msg("failed to record result")
		}
	}
	fmt.Printf("recorded %d results in %s\n", len(results), cfg.Store.Path)
}
