package cron

import (
	"context"
	"log"
	"time"
)

// SnapshotBlobKey is the fixed blob-store key the exported database image is
// written under.
const SnapshotBlobKey = "study-assistant.db.snapshot"

// SnapshotDatabase exports a consistent database image into the blob store
func (m *Manager) SnapshotDatabase() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := m.store.Snapshot(ctx, m.blobs, SnapshotBlobKey); err != nil {
		log.Println("Database snapshot failed:", err)
	}
}

// LogStats writes one summary line about the database contents
func (m *Manager) LogStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := m.store.GetStats(ctx)
	if err != nil {
		log.Println("Failed to collect stats:", err)
		return
	}
	log.Printf("Database stats: %d courses, %d chat messages, %d bytes",
		stats.TotalCourses, stats.TotalMessages, stats.DatabaseSizeBytes)
}
