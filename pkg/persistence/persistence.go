// Package persistence provides the storage abstraction for inspection
// run state snapshots.
package persistence

import (
	"context"
	"time"
)

// RunStatus tracks where a persisted run stands.
type RunStatus string

const (
	RunStatusInProgress RunStatus = "IN_PROGRESS"
	RunStatusCompleted  RunStatus = "COMPLETED"
)

// RunRecord is the durable snapshot of one workflow run. Photo binaries
// stay in memory with the live run; only counts are persisted.
type RunRecord struct {
	ID             string         `json:"id"`
	InspectionID   int            `json:"inspection_id"`
	WorkflowID     string         `json:"workflow_id"`
	Status         RunStatus      `json:"status"`
	Cursor         int            `json:"cursor"`
	TotalSteps     int            `json:"total_steps"`
	Answers        map[string]any `json:"answers"`
	CompletedSteps []int          `json:"completed_steps"`
	PhotoCounts    map[string]int `json:"photo_counts"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Persistence interface {
	Runs(ctx context.Context) ([]*RunRecord, error)
	RunByID(ctx context.Context, id string) (*RunRecord, error)
	SaveRun(ctx context.Context, record *RunRecord) error
	DeleteRun(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
