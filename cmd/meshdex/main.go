package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sanonone/meshdex/internal/server"
	"github.com/sanonone/meshdex/pkg/engine"
)

func main() {
	// Load .env if present; real env vars win.
	godotenv.Load()

	configPath := flag.String("config", "", "Path to the YAML configuration file")
	httpAddr := flag.String("http-addr", "", "Listen address for the REST API (overrides config)")
	meshPath := flag.String("mesh", "", "Grid file to load and index at startup (overrides config)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *httpAddr != "" {
		cfg.Addr = *httpAddr
	}
	if *meshPath != "" {
		cfg.MeshPath = *meshPath
	}
	if token := os.Getenv("MESHDEX_AUTH_TOKEN"); token != "" {
		cfg.AuthToken = token
	}

	eng := engine.Open(engine.Options{
		Capacity: cfg.IndexCapacity,
		MaxDepth: cfg.IndexMaxDepth,
	})
	if cfg.MeshPath != "" {
		slog.Info("loading mesh", "path", cfg.MeshPath)
		if err := eng.LoadMeshFile(cfg.MeshPath); err != nil {
			slog.Error("failed to load mesh", "path", cfg.MeshPath, "error", err)
			os.Exit(1)
		}
	}

	srv := server.NewServer(eng, cfg)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(); err != nil {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	<-shutdownChan
	srv.Shutdown()
}
