package models

import "time"

// SnapshotInfo represents metadata about a saved project snapshot.
type SnapshotInfo struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	SavedAt time.Time `json:"savedAt"`
	Version string    `json:"version"` // schema version of the stored project
}
