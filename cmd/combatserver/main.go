package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/engine"
	"github.com/udisondev/voxelpvp/internal/game/damage"
	"github.com/udisondev/voxelpvp/internal/game/hitdetect"
	"github.com/udisondev/voxelpvp/internal/metrics"
	"github.com/udisondev/voxelpvp/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("combatserver failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "combatserver.yaml", "path to YAML config")
		presetName = flag.String("preset", "vanilla", "base preset: vanilla, legacy_1_8, competitive")
	)
	flag.Parse()

	preset, err := config.PresetByName(*presetName)
	if err != nil {
		return err
	}
	cfg, err := config.LoadGameWith(preset.Game, *configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	setupLogger(cfg.LogLevel)
	slog.Info("starting combatserver", "preset", preset.Name, "config", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	eng, err := engine.New(cfg, m)
	if err != nil {
		return err
	}

	// The audit store stays outside the core: it taps the detector and
	// pipeline observer hooks and the engine never knows it exists.
	if cfg.Storage.Enabled {
		audit, err := storage.Open(ctx, cfg.Storage, m)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		defer audit.Close()
		wireAudit(eng, audit)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := eng.Start(gctx); err != nil && gctx.Err() == nil {
			return fmt.Errorf("engine: %w", err)
		}
		return nil
	})

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

		g.Go(func() error {
			slog.Info("metrics listener started", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	slog.Info("combatserver stopped")
	return nil
}

// wireAudit feeds retained hit snapshots and damage verdicts into the
// audit store through the engine's observer hooks.
func wireAudit(eng *engine.Engine, audit *storage.Store) {
	eng.Detector().SetObserver(func(attackerID, victimID uint32, snap hitdetect.Snapshot) {
		audit.RecordHit(storage.HitRecord{
			Correlation: xid.New(),
			AttackerID:  attackerID,
			VictimID:    victimID,
			Tier:        snap.Tier.String(),
			RayDistance: snap.RayDistance,
			EyeX:        snap.AttackerEye.X,
			EyeY:        snap.AttackerEye.Y,
			EyeZ:        snap.AttackerEye.Z,
			VictimX:     snap.VictimPos.X,
			VictimY:     snap.VictimPos.Y,
			VictimZ:     snap.VictimPos.Z,
		})
	})

	eng.Pipeline().SetObserver(func(ev damage.Event, res damage.Result) {
		var attackerID uint32
		if ev.Attacker != nil {
			attackerID = ev.Attacker.ID()
		}
		audit.RecordDamage(storage.DamageRecord{
			Correlation: xid.New(),
			AttackerID:  attackerID,
			VictimID:    ev.Victim.ID(),
			Kind:        ev.Kind,
			Outcome:     res.Outcome.String(),
			RawAmount:   ev.Amount,
			DealtAmount: res.Damage,
			ServerTick:  eng.CurrentTick(),
		})
	})
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
