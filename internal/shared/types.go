package shared

// Asynq task types.
const (
	// TypeCleanupAssets deletes stale remote assets after a committed edit.
	TypeCleanupAssets = "content:cleanup_assets"
	// TypeDeleteRecordAssets removes every object under a record's folder.
	TypeDeleteRecordAssets = "content:delete_record_assets"
	// TypeOrphanSweep reconciles the bucket against database references.
	TypeOrphanSweep = "content:orphan_sweep"
)

// Asynq queue names.
const (
	QueueContent = "content"
	QueueSweep   = "sweep"
)
