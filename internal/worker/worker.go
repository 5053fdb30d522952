// Package worker routes dispatched bridge commands into the simulation
// loop and the storage backend. Input commands are converted to staged
// sim commands; recorded events and host metrics go straight to storage.
package worker

import (
	"context"
	"fmt"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/virtualrange/weaponsim/internal/cache"
	"github.com/virtualrange/weaponsim/internal/logging"
	"github.com/virtualrange/weaponsim/internal/parser"
	"github.com/virtualrange/weaponsim/internal/sim"
	"github.com/virtualrange/weaponsim/internal/storage"
)

// ErrTooEarlyForStateAssociation is returned when weapon-scoped data arrives before the weapon is registered
var ErrTooEarlyForStateAssociation = fmt.Errorf("too early for state association")

// MetricWriter receives host-originated metric points. The Influx manager
// implements it; a nil writer disables the :METRIC: path.
type MetricWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	WeaponCache   *cache.WeaponCache
	MagazineCache *cache.MagazineCache
	LogManager    *logging.SlogManager
	ParserService parser.Service
}

// Manager owns the dispatcher handlers for bridge commands.
type Manager struct {
	deps    Dependencies
	backend storage.Backend
	loop    *sim.Loop
	metrics MetricWriter
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend, loop *sim.Loop) *Manager {
	return &Manager{
		deps:    deps,
		backend: backend,
		loop:    loop,
	}
}

// SetMetricWriter enables the :METRIC: handler. Pass the Influx manager.
func (m *Manager) SetMetricWriter(w MetricWriter) {
	m.metrics = w
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't expose write pressure.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if d, ok := m.backend.(storage.Drainable); ok {
		return time.Duration(float64(d.LastWriteDurationMs()) * float64(time.Millisecond))
	}
	return 0
}
