package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/config"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/effects"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/gamemap"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/notify"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
)

type noPlayers struct{}

func (noPlayers) Players() map[string]effects.Character { return nil }

func main() {
	configPath := flag.String("config", "", "path to JSON or YAML config file")
	flag.Parse()

	if env := os.Getenv("MAPSERVER_CONFIG"); env != "" && *configPath == "" {
		*configPath = env
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := scene.NewRecorder()
	mgr := gamemap.NewMapManager(cfg, backend, noPlayers{}, notify.Discard{}, log)

	if err := mgr.Initialize(ctx); err != nil {
		log.Error("map build failed", "err", err)
		os.Exit(1)
	}
	if err := mgr.StartMatch(ctx); err != nil {
		log.Error("start match failed", "err", err)
		os.Exit(1)
	}

	data := mgr.GetMapDataForClient()
	log.Info("map ready",
		"name", data.Name,
		"biomes", len(data.Biomes),
		"pois", len(data.POIs),
		"hotDrops", len(mgr.GetHotDropLocations()),
		"shapes", backend.ShapeCount(),
		"trees", mgr.TreeCount())

	<-ctx.Done()
	mgr.Reset()
}
