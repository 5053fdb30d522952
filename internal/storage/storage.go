// internal/storage/storage.go
package storage

import "github.com/virtualrange/weaponsim/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(session *core.Session, rng *core.Range) error
	EndSession() error

	// Weapon registration
	AddWeapon(w *core.Weapon) error

	// Event recording
	RecordShotEvent(e *core.ShotEvent) error
	RecordCycleEvent(e *core.CycleEvent) error
	RecordSequenceEvent(e *core.SequenceEvent) error
	RecordMagazineLoad(m *core.MagazineLoad) error
	RecordGeneralEvent(e *core.GeneralEvent) error
	RecordPerfSample(p *core.PerfSample) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the review web frontend.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}

// Drainable is an optional interface for queue-backed backends that can
// report write pressure to the monitor.
type Drainable interface {
	QueueLengths() map[string]int
	LastWriteDurationMs() float32
}
