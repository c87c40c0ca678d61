package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/inspecta/inspecta/pkg/models"
)

// CargoSnapFiles lists synced CargoSnap files, paginated.
func (c *Client) CargoSnapFiles(ctx context.Context, page, limit int) ([]models.CargoSnapFile, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	return list[models.CargoSnapFile](ctx, c, "/cargosnap/files/", query)
}

// CargoSnapFileByID fetches one synced file with its details.
func (c *Client) CargoSnapFileByID(ctx context.Context, id int) (*models.CargoSnapFile, error) {
	var file models.CargoSnapFile

	path := fmt.Sprintf("/cargosnap/files/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &file); err != nil {
		return nil, err
	}

	return &file, nil
}

// CargoSnapStats fetches aggregate counters over the synced file set.
func (c *Client) CargoSnapStats(ctx context.Context) (*models.CargoSnapStats, error) {
	var stats models.CargoSnapStats

	if err := c.do(ctx, http.MethodGet, "/cargosnap/files/stats/", nil, nil, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// TriggerCargoSnapSync asks the backend to run a sync pass. The sync
// itself is entirely backend-side; the client only triggers and reads.
func (c *Client) TriggerCargoSnapSync(ctx context.Context, downloadImages bool) error {
	body := map[string]bool{"download_images": downloadImages}

	return c.do(ctx, http.MethodPost, "/cargosnap/sync-logs/trigger_sync/", nil, body, nil)
}

// SyncCargoSnapFile re-syncs a single file.
func (c *Client) SyncCargoSnapFile(ctx context.Context, id int, downloadImages bool) error {
	body := map[string]bool{"download_images": downloadImages}
	path := fmt.Sprintf("/cargosnap/files/%d/sync/", id)

	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

// DownloadCargoSnapImages asks the backend to pull the images of one
// file from the CargoSnap platform.
func (c *Client) DownloadCargoSnapImages(ctx context.Context, id int) error {
	path := fmt.Sprintf("/cargosnap/files/%d/download_images/", id)

	return c.do(ctx, http.MethodPost, path, nil, map[string]any{}, nil)
}
