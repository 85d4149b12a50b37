package main

import (
	"flag"
	"os"

	"github.com/Garsondee/Crater/internal/audio"
	"github.com/Garsondee/Crater/internal/config"
	"github.com/Garsondee/Crater/internal/game"
	"github.com/Garsondee/Crater/internal/logging"
	"github.com/Garsondee/Crater/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

func main() {
	cfgPath := flag.String("config", "", "config file (json, yaml or toml)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	player := audio.NewPlayer(cfg.Audio.Enabled, cfg.Audio.Volume, log)
	if err := player.Initialize(); err != nil {
		log.Warn().Err(err).Msg("audio unavailable, continuing without sound")
	}
	defer player.Close()

	g := game.New(game.Options{
		Seed: cfg.Seed,
		Build: func(seed int64) *sim.Match {
			c := cfg
			c.Seed = seed
			return sim.NewMatch(c.MatchOptions(sim.WithLogger(log))...)
		},
		Listeners: []sim.Listener{player},
		Log:       log,
	})

	w, h := g.WindowSize()
	ebiten.SetWindowTitle("Crater")
	ebiten.SetWindowSize(int(float64(w)*cfg.Window.Scale), int(float64(h)*cfg.Window.Scale))
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal().Err(err).Msg("game exited")
	}
}
