package models

import (
	"sync"
	"time"
)

// Geolocation is a best-effort position fix attached to a photo.
type Geolocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"` // meters
}

// DeviceInfo records which device produced a capture.
type DeviceInfo struct {
	Platform  string `json:"platform,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Model     string `json:"model,omitempty"`
	OS        string `json:"os,omitempty"`
}

// PreviewHandle wraps the transient preview resource backing a captured
// photo. The underlying release function runs at most once no matter how
// many paths (retake, removal, session teardown) reach it.
type PreviewHandle struct {
	uri string

	mu       sync.Mutex
	released bool
	release  func() error
}

func NewPreviewHandle(uri string, release func() error) *PreviewHandle {
	return &PreviewHandle{uri: uri, release: release}
}

// URI returns the preview location (object URL, temp file path).
func (h *PreviewHandle) URI() string {
	if h == nil {
		return ""
	}

	return h.uri
}

// Release frees the underlying resource. Subsequent calls are no-ops.
func (h *PreviewHandle) Release() error {
	if h == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released || h.release == nil {
		h.released = true

		return nil
	}

	h.released = true

	return h.release()
}

// Released reports whether the preview resource has been freed.
func (h *PreviewHandle) Released() bool {
	if h == nil {
		return true
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.released
}

// CapturedPhoto is one confirmed (or pending-confirmation) camera or
// gallery artifact. It is owned by the capture session until confirmed,
// then transferred into the runner's per-step photo list.
type CapturedPhoto struct {
	Data        []byte         `json:"-"`
	ContentType string         `json:"content_type"`
	Filename    string         `json:"filename"`
	Title       string         `json:"title,omitempty"`
	Location    *Geolocation   `json:"location,omitempty"`
	CapturedAt  time.Time      `json:"captured_at"`
	Device      *DeviceInfo    `json:"device,omitempty"`
	Preview     *PreviewHandle `json:"-"`
}
