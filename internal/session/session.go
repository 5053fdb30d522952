// Package session owns the recording lifecycle: session start and end,
// weapon registration persistence, and stamping engine events with the
// active session before they reach storage.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/virtualrange/weaponsim/internal/cache"
	"github.com/virtualrange/weaponsim/internal/logging"
	"github.com/virtualrange/weaponsim/internal/parser"
	"github.com/virtualrange/weaponsim/internal/sim"
	"github.com/virtualrange/weaponsim/internal/storage"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// CallbackWriter delivers asynchronous responses to the host. The host
// bridge implements it; a nil writer silently drops callbacks.
type CallbackWriter interface {
	Write(command string, data ...string) error
}

// Uploader sends an exported recording to the review web frontend.
type Uploader interface {
	Upload(filePath string, meta core.UploadMetadata) error
}

// Dependencies holds all dependencies for the session manager
type Dependencies struct {
	WeaponCache   *cache.WeaponCache
	MagazineCache *cache.MagazineCache
	LogManager    *logging.SlogManager
	ParserService parser.Service
}

// Manager tracks the active session. It implements weapon.Recorder and
// sim.WeaponObserver so engine output lands in the backend already
// associated with the session that produced it.
type Manager struct {
	deps     Dependencies
	backend  storage.Backend
	logger   *slog.Logger
	engine   *sim.Engine
	callback CallbackWriter
	uploader Uploader

	mu      sync.RWMutex
	session *core.Session
	rng     *core.Range
	active  bool
}

// NewManager creates a new session manager
func NewManager(deps Dependencies, backend storage.Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		deps:    deps,
		backend: backend,
		logger:  logger,
		session: &core.Session{Name: "No session active"},
		rng:     &core.Range{Name: "No range loaded"},
	}
}

// SetEngine wires the engine so session start can reset simulation state.
func (m *Manager) SetEngine(e *sim.Engine) {
	m.engine = e
}

// SetCallback enables host callbacks for session lifecycle responses.
func (m *Manager) SetCallback(w CallbackWriter) {
	m.callback = w
}

// SetUploader enables recording upload at session end.
func (m *Manager) SetUploader(u Uploader) {
	m.uploader = u
}

// Current returns a copy of the active session, or false when none is
// in progress.
func (m *Manager) Current() (core.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.session, m.active
}

// SessionID returns the active session ID, or 0 when none is in progress.
func (m *Manager) SessionID() uint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.active {
		return 0
	}
	return m.session.ID
}

// StartSession begins a new recording: it persists the session and range,
// clears per-session caches and simulation state, and acknowledges to the
// host. The backend assigns session.ID.
func (m *Manager) StartSession(session core.Session, rng core.Range) error {
	if err := m.backend.StartSession(&session, &rng); err != nil {
		return fmt.Errorf("failed to start session in storage backend: %w", err)
	}
	session.RangeID = rng.ID

	// Clear state carried over from any previous session.
	m.deps.WeaponCache.Reset()
	m.deps.MagazineCache.Reset()
	if m.engine != nil {
		m.engine.Reset()
	}

	m.mu.Lock()
	m.session = &session
	m.rng = &rng
	m.active = true
	m.mu.Unlock()

	m.writeLog(":SESSION:START:", "New session logged", "INFO")
	m.logger.Info("session started",
		"sessionName", session.Name,
		"scenarioName", session.ScenarioName,
		"rangeName", rng.Name,
		"tag", session.Tag)

	// callback to host to begin sending data
	m.writeCallback(":SESSION:OK:", "OK")
	return nil
}

// EndSession closes the active recording, exports it, and uploads the
// export when an uploader is configured. Upload failures are logged and
// do not fail the end of the session.
func (m *Manager) EndSession() error {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	m.session.EndTime = time.Now()
	session := *m.session
	m.active = false
	m.mu.Unlock()

	if err := m.backend.EndSession(); err != nil {
		return fmt.Errorf("failed to end session in storage backend: %w", err)
	}

	m.logger.Info("session ended",
		"sessionName", session.Name,
		"duration", session.EndTime.Sub(session.StartTime).String())

	if up, ok := m.backend.(storage.Uploadable); ok && m.uploader != nil {
		path := up.GetExportedFilePath()
		if path != "" {
			if err := m.uploader.Upload(path, up.GetExportMetadata()); err != nil {
				m.logger.Error("failed to upload recording", "path", path, "error", err)
			} else {
				m.logger.Info("recording uploaded", "path", path)
			}
		}
	}

	m.writeLog(":SESSION:END:", "Session ended", "INFO")
	m.writeCallback(":SESSION:SAVED:", "OK")
	return nil
}

func (m *Manager) writeLog(functionName, data, level string) {
	if m.deps.LogManager != nil {
		m.deps.LogManager.WriteLog(functionName, data, level)
	}
}

func (m *Manager) writeCallback(command string, data ...string) {
	if m.callback == nil {
		return
	}
	if err := m.callback.Write(command, data...); err != nil {
		m.logger.Error("failed to write host callback", "command", command, "error", err)
	}
}
