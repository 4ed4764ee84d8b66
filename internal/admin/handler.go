// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/middleware"
)

// Counters feed the admin overview. A nil counter is reported as zero.
type Counters struct {
	Users     func(ctx context.Context) (int, error)
	UserTypes func(ctx context.Context) (int, error)
	ChatApps  func(ctx context.Context) (total, adminOnly int, err error)
	Feedback  func(ctx context.Context) (map[string]int, error)
}

// HandlerConfig wires the admin section to the rest of the process. Every
// field is optional.
type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
	Counters   Counters
}

type Handler struct {
	HandlerConfig
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{HandlerConfig: cfg}
}

// RegisterRoutes mounts the overview for the whole admin section and the
// infrastructure stats for SUPERUSER only.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireAdmin)

		r.Get("/overview", h.GetOverview)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperuser)

			r.Get("/stats", h.GetSystemStats)
			r.Get("/stats/db", h.GetDatabaseStats)
			r.Get("/stats/redis", h.GetRedisStats)
			r.Get("/stats/runtime", h.GetRuntimeStats)
		})
	})
}

// GetOverview gathers the section counters concurrently. The first
// failing counter fails the whole response.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	if err := access.Authorize(middleware.GetIdentity(r.Context()), access.ActionViewAdminSection); err != nil {
		core.HandleServiceError(w, r, err, "overview")
		return
	}

	resp := OverviewResponse{Feedback: map[string]int{}}
	c := h.Counters

	g, ctx := errgroup.WithContext(r.Context())
	if c.Users != nil {
		g.Go(func() (err error) {
			resp.Users, err = c.Users(ctx)
			return err
		})
	}
	if c.UserTypes != nil {
		g.Go(func() (err error) {
			resp.UserTypes, err = c.UserTypes(ctx)
			return err
		})
	}
	if c.ChatApps != nil {
		g.Go(func() (err error) {
			resp.ChatApps, resp.AdminOnlyApps, err = c.ChatApps(ctx)
			return err
		})
	}
	if c.Feedback != nil {
		g.Go(func() error {
			counts, err := c.Feedback(ctx)
			if err == nil {
				resp.Feedback = counts
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		core.HandleServiceError(w, r, err, "overview")
		return
	}
	core.OK(w, resp)
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: healthy(r.Context(), h.DBPing),
			Stats:   h.dbPool(),
		},
		Redis: RedisStatus{
			Healthy: healthy(r.Context(), h.RedisPing),
			Stats:   h.redisPool(),
		},
		Runtime: readRuntimeStats(),
	})
}

// healthy treats an unconfigured probe as passing.
func healthy(ctx context.Context, ping func(context.Context) error) bool {
	return ping == nil || ping(ctx) == nil
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.dbPool())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.redisPool())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntimeStats())
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

func (h *Handler) dbPool() *DBPoolStats {
	if h.DBStats == nil {
		return nil
	}

	stats := h.DBStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) redisPool() *RedisPoolStats {
	if h.RedisStats == nil {
		return nil
	}

	stats := h.RedisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

type OverviewResponse struct {
	Users         int            `json:"users"`
	UserTypes     int            `json:"userTypes"`
	ChatApps      int            `json:"chatApps"`
	AdminOnlyApps int            `json:"adminOnlyApps"`
	Feedback      map[string]int `json:"feedback"`
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"maxOpenConnections"`
	OpenConnections    int    `json:"openConnections"`
	InUse              int    `json:"inUse"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"waitCount"`
	WaitDuration       string `json:"waitDuration"`
	MaxIdleClosed      int64  `json:"maxIdleClosed"`
	MaxIdleTimeClosed  int64  `json:"maxIdleTimeClosed"`
	MaxLifetimeClosed  int64  `json:"maxLifetimeClosed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"totalConns"`
	IdleConns  uint32 `json:"idleConns"`
	StaleConns uint32 `json:"staleConns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	NumCPU       int    `json:"numCpu"`
	MemAlloc     uint64 `json:"memAllocBytes"`
	MemSys       uint64 `json:"memSysBytes"`
	NumGC        uint32 `json:"numGc"`
}
