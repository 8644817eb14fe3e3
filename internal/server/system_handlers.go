package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/replica"
	"github.com/masterc/wealthdesk/internal/scheduler"
)

// SystemHandlers handles system monitoring and replica operations
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	store       *database.Store
	refresher   *replica.Refresher
	scheduler   *scheduler.Scheduler
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status           string              `json:"status"`
	Uptime           string              `json:"uptime"`
	Goroutines       int                 `json:"goroutines"`
	CPUPercent       float64             `json:"cpu_percent"`
	MemoryPercent    float64             `json:"memory_percent"`
	ReplicaPath      string              `json:"replica_path"`
	ReplicaAvailable bool                `json:"replica_available"`
	ReplicaSizeBytes int64               `json:"replica_size_bytes"`
	RefreshSource    bool                `json:"refresh_configured"`
	LastRefresh      *replica.Result     `json:"last_refresh,omitempty"`
	Jobs             []scheduler.JobInfo `json:"jobs"`
	LastChecked      string              `json:"last_checked"`
}

// DatabaseStatsResponse is returned by GET /api/system/database
type DatabaseStatsResponse struct {
	File        *database.Stats       `json:"file"`
	Tables      []database.TableStats `json:"tables"`
	LastChecked string                `json:"last_checked"`
}

// DiskUsageResponse is returned by GET /api/system/disk
type DiskUsageResponse struct {
	DataDirMB float64 `json:"data_dir_mb"`
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	store *database.Store,
	refresher *replica.Refresher,
	sched *scheduler.Scheduler,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		store:       store,
		refresher:   refresher,
		scheduler:   sched,
	}
}

// HandleSystemStatus returns process and replica status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:           "healthy",
		Uptime:           time.Since(h.startupTime).Round(time.Second).String(),
		Goroutines:       runtime.NumGoroutine(),
		CPUPercent:       cpuPercent,
		MemoryPercent:    memPercent,
		ReplicaPath:      h.store.Path(),
		ReplicaAvailable: h.store.Available(),
		Jobs:             []scheduler.JobInfo{},
		LastChecked:      time.Now().Format(time.RFC3339),
	}

	if info, err := os.Stat(h.store.Path()); err == nil {
		response.ReplicaSizeBytes = info.Size()
	}
	if !response.ReplicaAvailable {
		response.Status = "degraded"
	}
	if h.refresher != nil {
		response.RefreshSource = h.refresher.Configured()
		response.LastRefresh = h.refresher.Last()
	}
	if h.scheduler != nil {
		response.Jobs = h.scheduler.Jobs()
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDatabaseStats returns file statistics and per-table row counts
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	fileStats, err := h.store.GetStats()
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	tables, err := h.store.TableStats()
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, DatabaseStatsResponse{
		File:        fileStats,
		Tables:      tables,
		LastChecked: time.Now().Format(time.RFC3339),
	})
}

// HandleDiskUsage returns the size of the data directory
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting disk usage")
	h.writeJSON(w, http.StatusOK, DiskUsageResponse{DataDirMB: h.getDirSize(h.dataDir)})
}

// HandleReplicaRefresh fetches and installs a fresh replica
// POST /api/replica/refresh
func (h *SystemHandlers) HandleReplicaRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil || !h.refresher.Configured() {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": replica.ErrNotConfigured.Error()})
		return
	}

	h.log.Info().Msg("Manual replica refresh triggered")
	result, err := h.refresher.Refresh(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, database.ErrInvalidReplica) {
			status = http.StatusUnprocessableEntity
		}
		h.writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *SystemHandlers) writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, database.ErrStorageUnavailable) {
		status = http.StatusServiceUnavailable
	} else {
		h.log.Error().Err(err).Msg("Failed to read database stats")
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats samples CPU over 100ms and reads memory usage
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
