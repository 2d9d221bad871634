package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/hako/durafmt"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/session"
	"github.com/udisondev/tileworld/internal/sim"
	"github.com/udisondev/tileworld/internal/surface"
	"github.com/udisondev/tileworld/internal/surface/framelog"
	"github.com/udisondev/tileworld/internal/surface/term"
)

var (
	configPath  = flag.String("config", "", "config file (default $TILEWORLD_CONFIG or config/tileworld.yaml)")
	surfaceName = flag.String("surface", "null", "drawing surface: null, term or record")
	recordPath  = flag.String("record", "", "frame log path for -surface record (default record_path from config)")
	duration    = flag.Duration("duration", 0, "stop after this long; 0 runs until interrupted")
	logPath     = flag.String("log", "tileworld.log", "log file used with -surface term")
)

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
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadSimulation(config.ResolvePath(*configPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logOut := io.Writer(os.Stdout)
	if *surfaceName == "term" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	})))
	sim.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("tileworld starting", "log_level", cfg.LogLevel, "surface", *surfaceName, "device", cfg.Device)

	m, demo, err := session.LoadMap(cfg.MapPath)
	if err != nil {
		return err
	}

	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		surf   surface.Surface
		rec    *framelog.Writer
		screen *term.Surface
	)
	switch *surfaceName {
	case "null":
	case "record":
		path := *recordPath
		if path == "" {
			path = cfg.RecordPath
		}
		if path == "" {
			return errors.New("-surface record needs -record or record_path")
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating frame log: %w", err)
		}
		rec = framelog.NewWriter(f)
		defer func() {
			if err := rec.Close(); err != nil {
				slog.Error("closing frame log", "err", err)
			}
		}()
		surf = rec
	case "term":
		tscreen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("creating terminal screen: %w", err)
		}
		if err := tscreen.Init(); err != nil {
			return fmt.Errorf("initializing terminal screen: %w", err)
		}
		defer tscreen.Fini()
		screen = term.New(tscreen, m)
		surf = screen
	default:
		return fmt.Errorf("unknown surface %q", *surfaceName)
	}

	// The server needs the simulation as its sink and the simulation needs
	// the server as its outbox.
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

	scheduler := sim.NewScheduler(s, cfg.FrameInterval())
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		return server.Run(gctx)
	})
	if screen != nil {
		g.Go(func() error {
			err := screen.Input(gctx, func(x, y int) {
				s.Enqueue(sim.Click{X: x, Y: y})
			})
			cancel()
			if errors.Is(err, term.ErrQuit) {
				return nil
			}
			return err
		})
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	logSummary(s, server, rec, time.Since(started))
	return nil
}

// outbox forwards intents to a server created after the simulation.
type outbox struct {
	sim.Outbox
}

func logSummary(s *sim.Simulation, server *session.Server, rec *framelog.Writer, elapsed time.Duration) {
	st := s.Stats()
	intents, sent := server.Stats()
	attrs := []any{
		"uptime", durafmt.Parse(elapsed.Round(time.Second)).String(),
		"ticks", humanize.Comma(int64(st.Ticks)),
		"frames", humanize.Comma(int64(st.Frames)),
		"events", humanize.Comma(int64(st.Events)),
		"event_errors", st.EventErrors,
		"intents", humanize.Comma(int64(intents)),
		"server_events", humanize.Comma(int64(sent)),
	}
	if rec != nil {
		if err := rec.Flush(); err == nil {
			attrs = append(attrs, "recorded", humanize.Bytes(uint64(rec.Stats().Bytes)))
		}
	}
	slog.Info("tileworld stopped", attrs...)
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
