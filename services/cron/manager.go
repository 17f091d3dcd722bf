package cron

import (
	"log"

	"github.com/robfig/cron/v3"
	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/utils/blob"
)

// Manager schedules the background maintenance jobs: periodic database
// snapshots into the blob store and a daily stats line.
type Manager struct {
	cron  *cron.Cron
	store *database.Store
	blobs blob.Store

	snapshotEnabled bool
}

// NewManager creates a new cron manager
func NewManager(store *database.Store, blobs blob.Store, snapshotEnabled bool) *Manager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &Manager{
		cron:            c,
		store:           store,
		blobs:           blobs,
		snapshotEnabled: snapshotEnabled,
	}
}

// Start registers all jobs and starts the scheduler
func (m *Manager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *Manager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

func (m *Manager) registerJobs() error {
	// Every 5 minutes: export a database image into the blob store
	if m.snapshotEnabled {
		_, err := m.cron.AddFunc("0 */5 * * * *", func() {
			log.Println("Cron job started: database_snapshot")
			m.SnapshotDatabase()
		})
		if err != nil {
			return err
		}
	}

	// Daily at 2 AM: log database statistics
	_, err := m.cron.AddFunc("0 0 2 * * *", func() {
		log.Println("Cron job started: log_stats")
		m.LogStats()
	})
	return err
}
