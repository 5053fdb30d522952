// Package monitor samples engine health once per second: tick timing from
// the loop, write pressure from the storage backend, and the result goes
// to the backend, to InfluxDB when configured, and to a status file for
// operators tailing the install directory.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/virtualrange/weaponsim/internal/logging"
	"github.com/virtualrange/weaponsim/internal/session"
	"github.com/virtualrange/weaponsim/internal/sim"
	"github.com/virtualrange/weaponsim/internal/storage"
	"github.com/virtualrange/weaponsim/internal/worker"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// PerfWriter receives performance samples. The Influx manager implements
// it; a nil writer keeps samples local.
type PerfWriter interface {
	WritePerfSample(ctx context.Context, sample core.PerfSample) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager     *logging.SlogManager
	SessionManager *session.Manager
	WorkerManager  *worker.Manager
	StatusDir      string
}

// Service manages status monitoring
type Service struct {
	deps    Dependencies
	backend storage.Backend
	perf    PerfWriter

	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
	lastTick  sim.TickResult
}

// NewService creates a new monitor service
func NewService(deps Dependencies, backend storage.Backend) *Service {
	return &Service{
		deps:     deps,
		backend:  backend,
		stopChan: make(chan struct{}),
	}
}

// SetPerfWriter enables sample export to InfluxDB.
func (s *Service) SetPerfWriter(w PerfWriter) {
	s.perf = w
}

// ObserveTick records the most recent tick result. Wire it as the loop's
// AfterTick hook.
func (s *Service) ObserveTick(r sim.TickResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = r
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Sample builds a performance sample from the last completed tick and the
// backend's current write pressure.
func (s *Service) Sample() core.PerfSample {
	s.mu.RLock()
	tick := s.lastTick
	s.mu.RUnlock()

	sample := core.PerfSample{
		SessionID:       s.deps.SessionManager.SessionID(),
		Time:            time.Now(),
		Tick:            tick.Tick,
		TickDurationMs:  float32(tick.Duration.Seconds() * 1000),
		TickBudgetMs:    float32(tick.Budget.Seconds() * 1000),
		CommandQueueLen: tick.QueueLen,
		ActiveWeapons:   tick.ActiveWeapons,
		ActiveSequences: tick.ActiveSequences,
	}

	if d, ok := s.backend.(storage.Drainable); ok {
		for _, n := range d.QueueLengths() {
			sample.WriteQueueLen += n
		}
	}

	return sample
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor")

		statusFile, err := os.Create(filepath.Join(s.deps.StatusDir, "status.txt"))
		if err != nil {
			logger.Error("Error creating status file", "error", err)
		}
		defer statusFile.Close()

		ticker := time.NewTicker(1000 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				if _, active := s.deps.SessionManager.Current(); !active {
					continue
				}

				sample := s.Sample()
				s.writeStatus(statusFile, sample)

				if err := s.backend.RecordPerfSample(&sample); err != nil {
					logger.Error("Error recording perf sample", "error", err)
				}
				if s.perf != nil {
					if err := s.perf.WritePerfSample(context.Background(), sample); err != nil {
						logger.Error("Error writing perf sample to InfluxDB", "error", err)
					}
				}
			}
		}
	}()

	return nil
}

func (s *Service) writeStatus(statusFile *os.File, sample core.PerfSample) {
	if statusFile == nil {
		return
	}
	statusStr, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		statusStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	statusFile.Truncate(0)
	statusFile.Seek(0, 0)
	statusFile.Write(statusStr)
	statusFile.WriteString("\n")
	statusFile.WriteString(fmt.Sprintf("lastDbWriteMs: %d\n", s.deps.WorkerManager.GetLastDBWriteDuration().Milliseconds()))
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
