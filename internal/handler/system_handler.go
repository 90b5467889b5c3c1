package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/config"
)

const (
	metricsInterval = 7 * time.Second
	healthTimeout   = 2 * time.Second
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// QueueInspector reports worker queue backlogs.
type QueueInspector interface {
	QueueLengths(ctx context.Context, queues ...string) (map[string]int64, error)
}

// SystemHandler exposes liveness and streams runtime metrics via SSE.
type SystemHandler struct {
	checks    map[string]HealthCheck
	queues    QueueInspector
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(checks map[string]HealthCheck, queues QueueInspector, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		checks:    checks,
		queues:    queues,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Reports 503 when any dependency is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "dependencies": deps})
}

// ---------- SSE Endpoint ----------

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`

	// Worker Queues
	QueuePersistGradings int64 `json:"queue_persist_gradings"`
	QueueGradingUpdates  int64 `json:"queue_grading_updates"`
}

// SystemMetricsSSE godoc
// GET /api/v1/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Msg("Client connected to system metrics SSE")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	// Send immediately on connect, then every tick
	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Client disconnected from system metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	data, err := json.Marshal(h.collect(c.Request.Context()))
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := systemMetrics{
		Timestamp:  time.Now().Unix(),
		Uptime:     formatDuration(time.Since(h.startTime)),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.HeapSys,
		NumGC:      ms.NumGC,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
	}

	if h.queues != nil {
		lengths, err := h.queues.QueueLengths(ctx,
			config.WorkerKey.PersistGradingsQueue, config.WorkerKey.GradingUpdatesQueue)
		if err == nil {
			m.QueuePersistGradings = lengths[config.WorkerKey.PersistGradingsQueue]
			m.QueueGradingUpdates = lengths[config.WorkerKey.GradingUpdatesQueue]
		}
	}

	return m
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
