package model

// CleanupAssetsPayload asks the worker to delete stale remote assets after a
// committed edit.
type CleanupAssetsPayload struct {
	Variant string   `json:"variant"`
	URLs    []string `json:"urls"`
}

// DeleteRecordAssetsPayload asks the worker to remove every object under a
// deleted record's folder.
type DeleteRecordAssetsPayload struct {
	Variant  string `json:"variant"`
	RecordID string `json:"record_id"`
}

// OrphanSweepPayload triggers the scheduled bucket-vs-database sweep.
type OrphanSweepPayload struct{}
