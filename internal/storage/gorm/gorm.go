// Package gormstorage implements the storage.Backend interface on a GORM
// database with internal queues and a background DB writer goroutine.
// The postgres and sqlite backends both build on it; they differ only in
// how the connection is made and persisted.
package gormstorage

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/virtualrange/weaponsim/internal/cache"
	"github.com/virtualrange/weaponsim/internal/logging"
	"github.com/virtualrange/weaponsim/internal/model"
	"github.com/virtualrange/weaponsim/internal/model/convert"
	"github.com/virtualrange/weaponsim/internal/queue"
	"github.com/virtualrange/weaponsim/pkg/core"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB          *gorm.DB
	WeaponCache *cache.WeaponCache
	LogManager  *logging.SlogManager
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Weapons        *queue.Queue[model.Weapon]
	ShotEvents     *queue.Queue[model.ShotEvent]
	CycleEvents    *queue.Queue[model.CycleEvent]
	SequenceEvents *queue.Queue[model.SequenceEvent]
	MagazineLoads  *queue.Queue[model.MagazineLoad]
	GeneralEvents  *queue.Queue[model.GeneralEvent]
	PerfSamples    *queue.Queue[model.SimPerformance]
}

func newQueues() *queues {
	return &queues{
		Weapons:        queue.New[model.Weapon](),
		ShotEvents:     queue.New[model.ShotEvent](),
		CycleEvents:    queue.New[model.CycleEvent](),
		SequenceEvents: queue.New[model.SequenceEvent](),
		MagazineLoads:  queue.New[model.MagazineLoad](),
		GeneralEvents:  queue.New[model.GeneralEvent](),
		PerfSamples:    queue.New[model.SimPerformance](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps        Dependencies
	queues      *queues
	sessionID   atomic.Uint64
	lastWriteMs atomic.Uint32
	stopChan    chan struct{}
	dbReady     bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps: deps,
	}
}

// Init creates internal queues, runs schema migration, and starts the DB
// writer goroutine. With no DB injected the backend runs in queue-only
// mode; the writers stay idle until a connection is provided.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if b.deps.DB != nil {
		if err := b.setupDB(); err != nil {
			return fmt.Errorf("failed to setup DB: %w", err)
		}
		b.dbReady = true
	}

	b.startDBWriters()
	return nil
}

// setupDB migrates tables and creates default group settings if they don't exist.
func (b *Backend) setupDB() error {
	db := b.deps.DB
	log := b.deps.LogManager

	if !db.Migrator().HasTable(&model.SimInfo{}) {
		if err := db.AutoMigrate(&model.SimInfo{}); err != nil {
			log.WriteLog("setupDB", fmt.Sprintf("Failed to create sim_info table: %s", err), "ERROR")
			return fmt.Errorf("failed to auto-migrate SimInfo: %w", err)
		}
		if err := db.Create(&model.SimInfo{
			GroupName:        "Virtual Range",
			GroupDescription: "Virtual Range",
			GroupWebsite:     "http://localhost:5000",
		}).Error; err != nil {
			return fmt.Errorf("failed to create sim_info entry: %w", err)
		}
	}

	if db.Name() == "postgres" {
		if err := db.Exec(`CREATE Extension IF NOT EXISTS postgis;`).Error; err != nil {
			return fmt.Errorf("failed to create PostGIS Extension: %w", err)
		}
		log.WriteLog("setupDB", "PostGIS Extension created", "INFO")
	}

	log.WriteLog("setupDB", "Migrating schema", "INFO")
	models := model.DatabaseModels
	if db.Name() == "sqlite" {
		models = model.DatabaseModelsSQLite
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.WriteLog("setupDB", "Database setup complete", "INFO")
	return nil
}

// Close stops the DB writer goroutine.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	return nil
}

// StartSession performs range get-or-insert and session create in the DB.
func (b *Backend) StartSession(coreSession *core.Session, coreRange *core.Range) error {
	if b.deps.DB == nil {
		return nil
	}

	db := b.deps.DB

	gormSession := convert.CoreToSession(*coreSession)
	gormRange := convert.CoreToRange(*coreRange)

	// Range get-or-insert
	if _, err := gormRange.GetOrInsert(db); err != nil {
		return fmt.Errorf("failed to get or insert range: %w", err)
	}

	// Session create
	gormSession.Range = gormRange
	if err := db.Create(&gormSession).Error; err != nil {
		return fmt.Errorf("failed to insert new session: %w", err)
	}

	// Assign DB-generated IDs back to core types
	coreSession.ID = gormSession.ID
	coreRange.ID = gormRange.ID

	// Store session ID for the DB writer goroutine
	b.sessionID.Store(uint64(gormSession.ID))

	return nil
}

// SetSessionID sets the current session ID for the DB writer (used by CLI tools).
func (b *Backend) SetSessionID(id uint) {
	b.sessionID.Store(uint64(id))
}

// EndSession stamps the end time on the current session row.
func (b *Backend) EndSession() error {
	sessionID := uint(b.sessionID.Load())
	if b.deps.DB == nil || sessionID == 0 {
		return nil
	}

	err := b.deps.DB.Model(&model.Session{}).
		Where("id = ?", sessionID).
		Update("end_time", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to stamp session end time: %w", err)
	}
	return nil
}

// AddWeapon converts a core weapon to GORM and pushes to the write queue.
func (b *Backend) AddWeapon(w *core.Weapon) error {
	gormObj := convert.CoreToWeapon(*w, time.Now())
	b.queues.Weapons.Push(gormObj)
	return nil
}

// RecordShotEvent converts and queues a shot event.
func (b *Backend) RecordShotEvent(e *core.ShotEvent) error {
	gormObj := convert.CoreToShotEvent(*e)
	b.queues.ShotEvents.Push(gormObj)
	return nil
}

// RecordCycleEvent converts and queues a cycle event.
func (b *Backend) RecordCycleEvent(e *core.CycleEvent) error {
	gormObj := convert.CoreToCycleEvent(*e)
	b.queues.CycleEvents.Push(gormObj)
	return nil
}

// RecordSequenceEvent converts and queues a sequence event.
func (b *Backend) RecordSequenceEvent(e *core.SequenceEvent) error {
	gormObj := convert.CoreToSequenceEvent(*e)
	b.queues.SequenceEvents.Push(gormObj)
	return nil
}

// RecordMagazineLoad converts and queues a magazine load.
func (b *Backend) RecordMagazineLoad(m *core.MagazineLoad) error {
	gormObj := convert.CoreToMagazineLoad(*m, time.Now())
	b.queues.MagazineLoads.Push(gormObj)
	return nil
}

// RecordGeneralEvent converts and queues a general event.
func (b *Backend) RecordGeneralEvent(e *core.GeneralEvent) error {
	gormObj := convert.CoreToGeneralEvent(*e)
	b.queues.GeneralEvents.Push(gormObj)
	return nil
}

// RecordPerfSample converts and queues an engine health sample. The write
// queue lengths are filled in at queue time so the row reflects pressure
// when the sample was taken, not when it was flushed.
func (b *Backend) RecordPerfSample(p *core.PerfSample) error {
	gormObj := convert.CoreToSimPerformance(*p)
	gormObj.WriteQueueLengths = model.WriteQueueLengths{
		Weapons:        uint16(b.queues.Weapons.Len()),
		ShotEvents:     uint16(b.queues.ShotEvents.Len()),
		CycleEvents:    uint16(b.queues.CycleEvents.Len()),
		SequenceEvents: uint16(b.queues.SequenceEvents.Len()),
		MagazineLoads:  uint16(b.queues.MagazineLoads.Len()),
		GeneralEvents:  uint16(b.queues.GeneralEvents.Len()),
	}
	b.queues.PerfSamples.Push(gormObj)
	return nil
}

// QueueLengths reports the current depth of each write queue.
func (b *Backend) QueueLengths() map[string]int {
	return map[string]int{
		"weapons":         b.queues.Weapons.Len(),
		"shot_events":     b.queues.ShotEvents.Len(),
		"cycle_events":    b.queues.CycleEvents.Len(),
		"sequence_events": b.queues.SequenceEvents.Len(),
		"magazine_loads":  b.queues.MagazineLoads.Len(),
		"general_events":  b.queues.GeneralEvents.Len(),
		"perf_samples":    b.queues.PerfSamples.Len(),
	}
}

// LastWriteDurationMs reports how long the most recent write cycle took.
func (b *Backend) LastWriteDurationMs() float32 {
	return math.Float32frombits(b.lastWriteMs.Load())
}

// writeQueue writes all items from a queue to the database in a transaction.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string), prepare func([]T), onSuccess func([]T)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.GetAndEmpty()
	if prepare != nil {
		prepare(items)
	}
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Push(items...)
		return
	}

	tx.Commit()
	if onSuccess != nil {
		onSuccess(items)
	}
}

// startDBWriters starts the background goroutine that periodically drains queues into the DB.
func (b *Backend) startDBWriters() {
	log := b.deps.LogManager.WriteLog

	go func() {
		for {
			select {
			case <-b.stopChan:
				return
			default:
			}

			if !b.dbReady {
				time.Sleep(1 * time.Second)
				continue
			}

			// Read sessionID once per write cycle
			sessionID := uint(b.sessionID.Load())

			// stampSessionID helpers
			stampWeapons := func(items []model.Weapon) {
				for i := range items {
					items[i].SessionID = sessionID
				}
			}
			stampShotEvents := func(items []model.ShotEvent) {
				for i := range items {
					items[i].SessionID = sessionID
				}
			}
			stampCycleEvents := func(items []model.CycleEvent) {
				for i := range items {
					items[i].SessionID = sessionID
				}
			}
			stampSequenceEvents := func(items []model.SequenceEvent) {
				for i := range items {
					items[i].SessionID = sessionID
				}
			}
			stampMagazineLoads := func(items []model.MagazineLoad) {
				for i := range items {
					items[i].SessionID = sessionID
				}
			}
			stampGeneralEvents := func(items []model.GeneralEvent) {
				for i := range items {
					items[i].SessionID = sessionID
				}
			}
			stampPerfSamples := func(items []model.SimPerformance) {
				for i := range items {
					items[i].SessionID = sessionID
				}
			}

			start := time.Now()

			// Registrations first so event foreign keys resolve
			writeQueue(b.deps.DB, b.queues.Weapons, "weapons", log, stampWeapons, func(items []model.Weapon) {
				if b.deps.WeaponCache == nil {
					return
				}
				for _, weapon := range items {
					b.deps.WeaponCache.Add(weapon)
				}
			})

			// Events
			writeQueue(b.deps.DB, b.queues.ShotEvents, "shot events", log, stampShotEvents, nil)
			writeQueue(b.deps.DB, b.queues.CycleEvents, "cycle events", log, stampCycleEvents, nil)
			writeQueue(b.deps.DB, b.queues.SequenceEvents, "sequence events", log, stampSequenceEvents, nil)
			writeQueue(b.deps.DB, b.queues.MagazineLoads, "magazine loads", log, stampMagazineLoads, nil)
			writeQueue(b.deps.DB, b.queues.GeneralEvents, "general events", log, stampGeneralEvents, nil)
			writeQueue(b.deps.DB, b.queues.PerfSamples, "perf samples", log, stampPerfSamples, nil)

			b.lastWriteMs.Store(math.Float32bits(float32(time.Since(start).Seconds() * 1000)))

			time.Sleep(2 * time.Second)
		}
	}()
}
