package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/persistence"
)

var ErrRunNotFound = errors.New("workflow run not found")

// Run pairs a live runner with its identity. The runner itself is not
// safe for concurrent use; every access to it goes through the manager,
// which serializes under one lock.
type Run struct {
	ID           string
	InspectionID int
	Runner       *Runner
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Manager owns the live workflow runs of this process and mirrors their
// progress into the persistence layer so interrupted runs stay visible.
type Manager struct {
	mu     sync.Mutex
	runs   map[string]*Run
	store  persistence.Persistence
	logger *slog.Logger
}

func NewManager(store persistence.Persistence, logger *slog.Logger) *Manager {
	return &Manager{
		runs:   make(map[string]*Run),
		store:  store,
		logger: logger,
	}
}

// StartRun creates a runner for the definition and registers it.
func (m *Manager) StartRun(ctx context.Context, inspectionID int, wf *models.Workflow, opts ...Option) (*Run, error) {
	runner, err := NewRunner(wf, opts...)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &Run{
		ID:           uuid.New().String(),
		InspectionID: inspectionID,
		Runner:       runner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	m.mu.Lock()
	m.runs[run.ID] = run
	m.snapshotLocked(ctx, run)
	m.mu.Unlock()

	m.logger.Info("workflow run started",
		"run_id", run.ID, "inspection_id", inspectionID, "workflow_id", wf.ID)

	return run, nil
}

// Run returns a live run by ID. Reads of the runner's state must go
// through View instead; the returned pointer is only safe for its
// immutable identity fields.
func (m *Manager) Run(id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}

	return run, nil
}

// View runs a read against a live run under the manager lock, without
// touching UpdatedAt or the snapshot. The function's error is passed
// through.
func (m *Manager) View(id string, view func(*Run) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return ErrRunNotFound
	}

	return view(run)
}

// Update runs a mutation against a live run and snapshots the result.
// The manager lock is held across the mutation, so concurrent requests
// touching the same run serialize here. The mutation's error is passed
// through.
func (m *Manager) Update(ctx context.Context, id string, mutate func(*Run) error) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}

	if err := mutate(run); err != nil {
		return nil, err
	}

	run.UpdatedAt = time.Now().UTC()
	m.snapshotLocked(ctx, run)

	return run, nil
}

// EndRun drops a run from the live set. Completed runs keep their final
// snapshot; abandoned ones release photo resources and lose it.
func (m *Manager) EndRun(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return ErrRunNotFound
	}

	delete(m.runs, id)

	if run.Runner.Done() {
		m.snapshotLocked(ctx, run)

		return nil
	}

	run.Runner.ReleasePhotos()

	if m.store != nil {
		if err := m.store.DeleteRun(ctx, id); err != nil && !persistence.IsRunNotFound(err) {
			m.logger.Warn("failed to delete run snapshot", "run_id", id, "error", err)
		}
	}

	return nil
}

// snapshotLocked mirrors the run's current progress into persistence.
// Storage failures are logged, never surfaced; the live run stays
// authoritative. Caller holds m.mu.
func (m *Manager) snapshotLocked(ctx context.Context, run *Run) {
	if m.store == nil {
		return
	}

	if err := m.store.SaveRun(ctx, snapshotRecord(run)); err != nil {
		m.logger.Warn("failed to snapshot run", "run_id", run.ID, "error", err)
	}
}

func snapshotRecord(run *Run) *persistence.RunRecord {
	r := run.Runner

	status := persistence.RunStatusInProgress
	if r.Done() {
		status = persistence.RunStatusCompleted
	}

	answers := make(map[string]any)
	photoCounts := make(map[string]int)
	completed := make([]int, 0)

	for _, step := range r.Workflow().Steps {
		for _, field := range step.Fields() {
			if value := r.Answer(field.ID); value != nil {
				answers[field.ID] = value
			}
		}
	}

	for index, step := range r.Workflow().Steps {
		if count := len(r.PhotosForStep(step.ID)); count > 0 {
			photoCounts[step.ID] = count
		}

		if r.StepCompleted(index) {
			completed = append(completed, index)
		}
	}

	return &persistence.RunRecord{
		ID:             run.ID,
		InspectionID:   run.InspectionID,
		WorkflowID:     r.Workflow().ID,
		Status:         status,
		Cursor:         r.Cursor(),
		TotalSteps:     r.TotalSteps(),
		Answers:        answers,
		CompletedSteps: completed,
		PhotoCounts:    photoCounts,
		CreatedAt:      run.CreatedAt,
		UpdatedAt:      run.UpdatedAt,
	}
}
