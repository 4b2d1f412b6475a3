package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrPoolNotInitialized = errors.New("database pool is not initialized")

// Ping với timeout 5s, dùng cho /ready và health aggregator
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return ErrPoolNotInitialized
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close is idempotent.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		return nil
	}

	log.Info().Msg("[DATABASE] Closing connection pool")
	db.Pool.Close()
	db.Pool = nil
	return nil
}

// PoolStats là snapshot của pgxpool.Stat trả về qua /health/db
type PoolStats struct {
	TotalConns        int32         `json:"total_conns"`
	IdleConns         int32         `json:"idle_conns"`
	AcquiredConns     int32         `json:"acquired_conns"`
	MaxConns          int32         `json:"max_conns"`
	AcquireCount      int64         `json:"acquire_count"`
	EmptyAcquireCount int64         `json:"empty_acquire_count"`
	AvgAcquireTime    time.Duration `json:"avg_acquire_time_ns"`
}

func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, ErrPoolNotInitialized
	}

	raw := db.Pool.Stat()
	stats := &PoolStats{
		TotalConns:        raw.TotalConns(),
		IdleConns:         raw.IdleConns(),
		AcquiredConns:     raw.AcquiredConns(),
		MaxConns:          raw.MaxConns(),
		AcquireCount:      raw.AcquireCount(),
		EmptyAcquireCount: raw.EmptyAcquireCount(),
	}
	if stats.AcquireCount > 0 {
		stats.AvgAcquireTime = raw.AcquireDuration() / time.Duration(stats.AcquireCount)
	}
	return stats, nil
}

// MonitorPoolHealth chạy trong goroutine riêng, cảnh báo khi pool > 80% hoặc acquire chậm
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				log.Warn().Err(err).Msg("[MONITOR] Failed to get pool stats")
				continue
			}
			if stats.MaxConns > 0 {
				utilization := float64(stats.AcquiredConns) / float64(stats.MaxConns) * 100
				if utilization > 80 {
					log.Warn().Float64("utilization_pct", utilization).Msg("[MONITOR] High pool utilization")
				}
			}
			if stats.AvgAcquireTime > 100*time.Millisecond {
				log.Warn().Dur("avg_acquire", stats.AvgAcquireTime).Msg("[MONITOR] High acquire latency")
			}
		case <-ctx.Done():
			return
		}
	}
}
