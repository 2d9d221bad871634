package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/session"
	"github.com/udisondev/tileworld/internal/sim"
	"github.com/udisondev/tileworld/internal/surface/window"
)

var configPath = flag.String("config", "", "config file (default $TILEWORLD_CONFIG or config/tileworld.yaml)")

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
		os.Exit(0)
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// run opens the window on the calling goroutine; ebiten needs the main
// thread.
func run(ctx context.Context) error {
	cfg, err := config.LoadSimulation(config.ResolvePath(*configPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	sim.EnableDebugLogging(logLevel == slog.LevelDebug)

	m, demo, err := session.LoadMap(cfg.MapPath)
	if err != nil {
		return err
	}

	surf := window.NewSurface(m)
	out := &outbox{}
	s, err := sim.New(cfg, m, surf, out)
	if err != nil {
		return err
	}
	server := session.New(session.DefaultConfig(), m, s)
	out.Outbox = server

	var spawns []session.Spawn
	if demo {
		spawns = session.DemoSpawns()
	}
	server.Start(session.DemoWelcome(), spawns)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})

	// Prime one frame so the window opens at the camera size.
	s.Tick(time.Now())

	started := time.Now()
	game := window.NewGame(s, surf, func(x, y int) {
		s.Enqueue(sim.Click{X: x, Y: y})
	})
	werr := window.Run(game, "tileworld", cfg.FrameRate)

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if werr != nil {
		return werr
	}

	st := s.Stats()
	slog.Info("simview closed",
		"uptime", durafmt.Parse(time.Since(started).Round(time.Second)).String(),
		"ticks", humanize.Comma(int64(st.Ticks)),
		"events", humanize.Comma(int64(st.Events)))
	return nil
}

type outbox struct {
	sim.Outbox
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
