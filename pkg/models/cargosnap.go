package models

import "time"

// CargoSnapFile is a file synced from the CargoSnap platform. The client
// only reads these and triggers syncs; the backend owns the sync itself.
type CargoSnapFile struct {
	ID            int        `json:"id"`
	ScanCode      string     `json:"scan_code"`
	Reference     string     `json:"reference,omitempty"`
	Closed        bool       `json:"closed"`
	ImagesCount   int        `json:"images_count"`
	DownloadedAt  *time.Time `json:"downloaded_at,omitempty"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	LocationName  string     `json:"location_name,omitempty"`
	FormSubmitted bool       `json:"form_submitted"`
}

// CargoSnapStats summarizes the synced file set.
type CargoSnapStats struct {
	TotalFiles      int `json:"total_files"`
	TotalImages     int `json:"total_images"`
	PendingDownload int `json:"pending_download"`
}

// CargoSnapSyncLog is one sync attempt recorded by the backend.
type CargoSnapSyncLog struct {
	ID         int        `json:"id"`
	Status     string     `json:"status"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
