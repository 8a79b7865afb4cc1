package main

import (
	"DoorScene/internal/config"
	"DoorScene/internal/engine"
	"DoorScene/internal/loader"
	"DoorScene/internal/logger"
	"DoorScene/internal/sketch"
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"
)

func init() {
	// GLFW and GL must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "configs/doorscene.yaml", "scene configuration file")
	assetRoot := flag.String("assets", "", "asset directory, overrides assets.root")
	debug := flag.Bool("debug", false, "debug logging and wireframe rendering")
	flag.Parse()

	logger.InitWithDebug(*debug)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.Fatal("Config failed", zap.Error(err))
	}
	if *assetRoot != "" {
		cfg.Assets.Root = *assetRoot
	}
	loader.MaxTextureSize = cfg.Assets.MaxTextureSize

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.NewGopher(engine.Options{
		Width:   int32(cfg.Window.Width),
		Height:  int32(cfg.Window.Height),
		Title:   cfg.Window.Title,
		MSAA:    cfg.Window.MSAA,
		Workers: cfg.Assets.Workers,
	})
	eng.SetDebugMode(*debug)
	sketch.New(cfg, eng)

	if err := eng.Run(ctx); err != nil {
		logger.Log.Fatal("Engine failed", zap.Error(err))
	}
}
