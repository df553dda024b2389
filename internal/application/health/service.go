package health

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"need1-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is the part of the database we ping.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// Report is the health snapshot served at /health.
type Report struct {
	Status     string       `json:"status"`
	Uptime     string       `json:"uptime"`
	Database   CheckResult  `json:"database"`
	Redis      CheckResult  `json:"redis"`
	Memory     MemoryStats  `json:"memory"`
	Traffic    TrafficStats `json:"traffic"`
	Goroutines int          `json:"goroutines"`
}

type CheckResult struct {
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type MemoryStats struct {
	AllocMB uint64 `json:"alloc_mb"`
	SysMB   uint64 `json:"sys_mb"`
	NumGC   uint32 `json:"num_gc"`
}

type TrafficStats struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	AvgResponseMS float64 `json:"avg_response_ms"`
}

// Service collects health data from the database, Redis, and the runtime.
type Service struct {
	DB        DBPinger
	Redis     *redis.Client
	StartedAt time.Time
}

// Collect builds the full report. Status is "degraded" if any dependency
// check fails.
func (s *Service) Collect(ctx context.Context) Report {
	report := Report{
		Status:     "ok",
		Uptime:     time.Since(s.StartedAt).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}

	report.Database = s.checkDB(ctx)
	report.Redis = s.checkRedis(ctx)
	if !report.Database.OK || !report.Redis.OK {
		report.Status = "degraded"
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	report.Memory = MemoryStats{
		AllocMB: m.Alloc / 1024 / 1024,
		SysMB:   m.Sys / 1024 / 1024,
		NumGC:   m.NumGC,
	}

	report.Traffic = s.trafficStats(ctx)
	return report
}

func (s *Service) checkDB(ctx context.Context) CheckResult {
	start := time.Now()
	err := s.DB.PingContext(ctx)
	res := CheckResult{OK: err == nil, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func (s *Service) checkRedis(ctx context.Context) CheckResult {
	start := time.Now()
	err := s.Redis.Ping(ctx).Err()
	res := CheckResult{OK: err == nil, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func (s *Service) trafficStats(ctx context.Context) TrafficStats {
	stats := TrafficStats{}
	if total, err := s.Redis.Get(ctx, middleware.KeyReqTotal).Result(); err == nil {
		stats.TotalRequests, _ = strconv.ParseInt(total, 10, 64)
	}
	if errs, err := s.Redis.Get(ctx, middleware.KeyReqErrors).Result(); err == nil {
		stats.TotalErrors, _ = strconv.ParseInt(errs, 10, 64)
	}
	resTime, err1 := s.Redis.Get(ctx, middleware.KeyResTime).Float64()
	resCount, err2 := s.Redis.Get(ctx, middleware.KeyResCount).Int64()
	if err1 == nil && err2 == nil && resCount > 0 {
		stats.AvgResponseMS = resTime / float64(resCount)
	}
	return stats
}
