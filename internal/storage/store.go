// Package storage is the optional combat audit sink: hit snapshots and
// the damage ledger, written to PostgreSQL off the hot path. The tick
// loop only ever enqueues onto a bounded channel; a full queue drops the
// record rather than stall combat.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/xid"

	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/metrics"
	"github.com/udisondev/voxelpvp/internal/storage/migrations"
)

var gooseOnce sync.Once

// RunMigrations runs goose migrations on the given DSN.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	var dialectErr error
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		dialectErr = goose.SetDialect("postgres")
	})
	if dialectErr != nil {
		return fmt.Errorf("setting goose dialect: %w", dialectErr)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// HitRecord is one validated hit snapshot row.
type HitRecord struct {
	Correlation xid.ID
	AttackerID  uint32
	VictimID    uint32
	Tier        string
	RayDistance float64

	EyeX, EyeY, EyeZ          float64
	VictimX, VictimY, VictimZ float64
}

// DamageRecord is one damage ledger row.
type DamageRecord struct {
	Correlation xid.ID
	AttackerID  uint32 // 0 for environmental damage
	VictimID    uint32
	Kind        string
	Outcome     string
	RawAmount   float64
	DealtAmount float64
	ServerTick  int64
}

type record struct {
	hit    *HitRecord
	damage *DamageRecord
}

// Store is the async audit writer. A nil *Store is a valid no-op sink.
type Store struct {
	pool    *pgxpool.Pool
	queue   chan record
	metrics *metrics.Metrics

	done chan struct{}
}

// Open connects, migrates and starts the writer goroutine.
func Open(ctx context.Context, cfg config.Storage, m *metrics.Metrics) (*Store, error) {
	if err := RunMigrations(ctx, cfg.DSN); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("creating pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging audit database: %w", err)
	}

	s := &Store{
		pool:    pool,
		queue:   make(chan record, cfg.BufferSize),
		metrics: m,
		done:    make(chan struct{}),
	}
	go s.writeLoop()

	slog.Info("combat audit store opened", "buffer", cfg.BufferSize)
	return s, nil
}

// RecordHit enqueues a hit snapshot row. Never blocks.
func (s *Store) RecordHit(r HitRecord) {
	if s == nil {
		return
	}
	select {
	case s.queue <- record{hit: &r}:
	default:
		s.metrics.AuditDrop()
	}
}

// RecordDamage enqueues a damage ledger row. Never blocks.
func (s *Store) RecordDamage(r DamageRecord) {
	if s == nil {
		return
	}
	select {
	case s.queue <- record{damage: &r}:
	default:
		s.metrics.AuditDrop()
	}
}

// Close drains the queue and releases the pool.
func (s *Store) Close() {
	if s == nil {
		return
	}
	close(s.queue)
	<-s.done
	s.pool.Close()
}

func (s *Store) writeLoop() {
	defer close(s.done)
	ctx := context.Background()

	for rec := range s.queue {
		var err error
		switch {
		case rec.hit != nil:
			err = s.insertHit(ctx, *rec.hit)
		case rec.damage != nil:
			err = s.insertDamage(ctx, *rec.damage)
		}
		if err != nil {
			slog.Error("writing audit record", "error", err)
		}
	}
}

func (s *Store) insertHit(ctx context.Context, r HitRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO hit_snapshots
			(correlation, attacker_id, victim_id, tier, ray_distance,
			 eye_x, eye_y, eye_z, victim_x, victim_y, victim_z)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.Correlation.String(), int64(r.AttackerID), int64(r.VictimID),
		r.Tier, r.RayDistance,
		r.EyeX, r.EyeY, r.EyeZ, r.VictimX, r.VictimY, r.VictimZ,
	)
	if err != nil {
		return fmt.Errorf("inserting hit snapshot: %w", err)
	}
	return nil
}

func (s *Store) insertDamage(ctx context.Context, r DamageRecord) error {
	var attacker any
	if r.AttackerID != 0 {
		attacker = int64(r.AttackerID)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO damage_ledger
			(correlation, attacker_id, victim_id, kind, outcome,
			 raw_amount, dealt_amount, server_tick)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.Correlation.String(), attacker, int64(r.VictimID),
		r.Kind, r.Outcome, r.RawAmount, r.DealtAmount, r.ServerTick,
	)
	if err != nil {
		return fmt.Errorf("inserting damage row: %w", err)
	}
	return nil
}
