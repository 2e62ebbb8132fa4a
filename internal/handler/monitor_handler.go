package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsuite/cbt-backend/internal/config"
	"github.com/schoolsuite/cbt-backend/internal/response"
	"github.com/schoolsuite/cbt-backend/internal/service"
)

const metricsInterval = 7 * time.Second

// MonitorHandler serves liveness and an operator metrics stream.
type MonitorHandler struct {
	rdb       *redis.Client
	registry  *service.Registry
	startTime time.Time
	log       zerolog.Logger
}

func NewMonitorHandler(rdb *redis.Client, registry *service.Registry, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:       rdb,
		registry:  registry,
		startTime: time.Now(),
		log:       log.With().Str("component", "monitor_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Liveness probe: reports Redis reachability and uptime.
func (h *MonitorHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	redisStatus := "ok"
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		redisStatus = "unreachable"
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":         "ok",
		"redis":          redisStatus,
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
	})
}

type monitorMetrics struct {
	Timestamp int64 `json:"timestamp"`

	// Sessions
	ActiveSessions int `json:"active_sessions"`

	// Worker queue
	QueueAttempts int64 `json:"queue_attempts"`

	// Go runtime
	Goroutines  int     `json:"goroutines"`
	HeapAlloc   uint64  `json:"heap_alloc"`
	NumGC       uint32  `json:"num_gc"`
	GoVersion   string  `json:"go_version"`
	NumCPU      int     `json:"num_cpu"`
	LoadAvg1    float64 `json:"load_avg_1"`
	AppRSSBytes uint64  `json:"app_rss_bytes"`
}

// MetricsSSE godoc
// GET /api/v1/admin/monitor/metrics
// Streams process and queue metrics to the operator dashboard via SSE.
func (h *MonitorHandler) MetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Msg("Operator connected to metrics SSE")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	// Send immediately on connect, then every tick
	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Operator disconnected from metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *MonitorHandler) writeMetrics(c *gin.Context) {
	m := h.collect()
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *MonitorHandler) collect() monitorMetrics {
	m := monitorMetrics{
		Timestamp:      time.Now().Unix(),
		ActiveSessions: h.registry.Len(),
		GoVersion:      runtime.Version(),
		NumCPU:         runtime.NumCPU(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.Goroutines = runtime.NumGoroutine()
	m.HeapAlloc = ms.HeapAlloc
	m.NumGC = ms.NumGC

	m.LoadAvg1 = readLoadAvg1()
	m.AppRSSBytes = readProcessRSS()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	m.QueueAttempts, _ = h.rdb.LLen(ctx, config.WorkerKey.PersistAttemptsQueue).Result()

	return m
}

// readLoadAvg1 parses the one-minute load average from /proc/loadavg.
func readLoadAvg1() float64 {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0
	}
	load, _ := strconv.ParseFloat(fields[0], 64)
	return load
}

// readProcessRSS reads VmRSS from /proc/self/status, in bytes.
func readProcessRSS() uint64 {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "VmRSS:") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return 0
			}
			kb, _ := strconv.ParseUint(fields[1], 10, 64)
			return kb * 1024
		}
	}
	return 0
}
