// Package main runs the cultivation simulation, either as a long-running
// service driven by the day clock or as a headless batch of days played by
// the autopilot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cultivation/internal/config"
	"github.com/cory-johannsen/cultivation/internal/observability"
	"github.com/cory-johannsen/cultivation/internal/server"
	"github.com/cory-johannsen/cultivation/internal/simulation"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	days := flag.Int("days", 0, "play this many days with the autopilot and exit; 0 = run the clock until interrupted")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "cultivate")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	content, err := simulation.LoadContent(cfg.Content, cfg.Simulation)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening store", zap.Error(err))
	}
	defer st.close()

	opts := simulation.OptionsFromConfig(cfg, content)
	opts.Store = st.store
	opts.Logger = logger
	game, err := simulation.New(ctx, opts)
	if err != nil {
		logger.Fatal("starting game", zap.Error(err))
	}
	defer game.Close()

	logger.Info("simulation initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("slot", cfg.Simulation.SaveSlot),
	)

	if *days > 0 {
		if err := runHeadless(ctx, game, *days, logger); err != nil {
			logger.Fatal("headless run failed", zap.Error(err))
		}
		return
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("clock", clockService(ctx, game, cfg.Simulation.TickInterval, logger))
	if st.health != nil {
		lifecycle.Add("postgres", st.health)
	}
	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("service error", zap.Error(err))
	}
}

// runHeadless plays days with the autopilot, saves and prints a summary.
func runHeadless(ctx context.Context, game *simulation.Game, days int, logger *zap.Logger) error {
	sum, err := simulation.NewAutopilot(game, logger).Run(ctx, days)
	if err != nil {
		return fmt.Errorf("autopilot: %w", err)
	}
	if err := game.Save(ctx); err != nil {
		return err
	}
	st := game.State()
	fmt.Fprintf(os.Stdout, "%s: day %d, realm %s, qi %.0f/%.0f, talent %d, open meridians %d, breakthroughs %d, events %d\n",
		st.Character.Name, st.Day, st.Character.Realm, st.Character.Qi, st.Character.MaxQi,
		st.Character.Talent, st.Character.OpenMeridianCount(), sum.Breakthroughs, sum.Events)
	return nil
}

// clockService ticks game once per interval until stopped, then saves.
func clockService(ctx context.Context, game *simulation.Game, interval time.Duration, logger *zap.Logger) server.Service {
	done := make(chan struct{})
	var tickErr error
	clock := simulation.NewClock(interval, func() int {
		report, err := game.Tick(ctx)
		if err != nil {
			logger.Error("tick failed", zap.Int("day", report.Day), zap.Error(err))
			tickErr = err
		}
		if report.Event.Fired {
			logger.Info("random event", zap.Int("day", report.Day), zap.String("kind", report.Event.Kind.String()))
		}
		return report.Day
	})
	return &server.FuncService{
		StartFn: func() error {
			stop := clock.Start(ctx)
			<-done
			stop()
			if tickErr != nil {
				logger.Warn("last failed tick", zap.Error(tickErr))
			}
			if err := game.Save(context.Background()); err != nil {
				return fmt.Errorf("final save: %w", err)
			}
			logger.Info("game saved", zap.Int("day", game.State().Day))
			return nil
		},
		StopFn: func() { close(done) },
	}
}
