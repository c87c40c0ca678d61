// Package file provides file-based persistence for run snapshots.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inspecta/inspecta/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system. Each run snapshot is one JSON file under <root>/runs.
type Persistence struct {
	root string
}

// NewPersistence creates a new instance rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) runsDir() string {
	return filepath.Join(p.root, "runs")
}

func (p *Persistence) runPath(id string) string {
	return filepath.Join(p.runsDir(), id+".json")
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Runs loads every persisted run snapshot, newest first.
func (p *Persistence) Runs(_ context.Context) ([]*persistence.RunRecord, error) {
	entries, err := os.ReadDir(p.runsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*persistence.RunRecord{}, nil
		}

		return nil, fmt.Errorf("failed to list run files: %w", err)
	}

	records := make([]*persistence.RunRecord, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")

		record, err := p.load(id)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// RunByID loads one run snapshot.
func (p *Persistence) RunByID(_ context.Context, id string) (*persistence.RunRecord, error) {
	return p.load(id)
}

// SaveRun writes a run snapshot, creating or replacing its file.
func (p *Persistence) SaveRun(_ context.Context, record *persistence.RunRecord) error {
	if err := os.MkdirAll(p.runsDir(), 0o755); err != nil {
		return persistence.NewRunError("SaveRun", record.ID, err)
	}

	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return persistence.NewRunError("SaveRun", record.ID, err)
	}

	if err := os.WriteFile(p.runPath(record.ID), body, 0o644); err != nil {
		return persistence.NewRunError("SaveRun", record.ID, err)
	}

	return nil
}

// DeleteRun removes a run snapshot file.
func (p *Persistence) DeleteRun(_ context.Context, id string) error {
	err := os.Remove(p.runPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewRunError("DeleteRun", id, persistence.ErrRunNotFound)
		}

		return persistence.NewRunError("DeleteRun", id, err)
	}

	return nil
}

func (p *Persistence) load(id string) (*persistence.RunRecord, error) {
	body, err := os.ReadFile(p.runPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("RunByID", id, err)
	}

	var record persistence.RunRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, persistence.NewRunError("RunByID", id, err)
	}

	return &record, nil
}
