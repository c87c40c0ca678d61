package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspecta/inspecta/pkg/persistence"
	"github.com/inspecta/inspecta/pkg/persistence/file"
)

func record(id string, createdAt time.Time) *persistence.RunRecord {
	return &persistence.RunRecord{
		ID:           id,
		InspectionID: 1,
		WorkflowID:   "wf-1",
		Status:       persistence.RunStatusInProgress,
		TotalSteps:   3,
		Answers:      map[string]any{"container": "MSCU1234567"},
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestFilePersistence_SaveAndLoad(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, p.SaveRun(ctx, record("run-1", now)))

	loaded, err := p.RunByID(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, "wf-1", loaded.WorkflowID)
	assert.Equal(t, "MSCU1234567", loaded.Answers["container"])
	assert.True(t, loaded.CreatedAt.Equal(now))
}

func TestFilePersistence_SaveOverwrites(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	r := record("run-1", time.Now().UTC())
	require.NoError(t, p.SaveRun(ctx, r))

	r.Status = persistence.RunStatusCompleted
	require.NoError(t, p.SaveRun(ctx, r))

	loaded, err := p.RunByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, persistence.RunStatusCompleted, loaded.Status)
}

func TestFilePersistence_RunsNewestFirst(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, p.SaveRun(ctx, record("older", base.Add(-time.Hour))))
	require.NoError(t, p.SaveRun(ctx, record("newer", base)))

	records, err := p.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].ID)
	assert.Equal(t, "older", records[1].ID)
}

func TestFilePersistence_EmptyRootListsNothing(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())

	records, err := p.Runs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFilePersistence_MissingRun(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())

	_, err := p.RunByID(context.Background(), "missing")
	assert.True(t, persistence.IsRunNotFound(err))

	err = p.DeleteRun(context.Background(), "missing")
	assert.True(t, persistence.IsRunNotFound(err))
}

func TestFilePersistence_Delete(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, p.SaveRun(ctx, record("run-1", time.Now().UTC())))
	require.NoError(t, p.DeleteRun(ctx, "run-1"))

	_, err := p.RunByID(ctx, "run-1")
	assert.True(t, persistence.IsRunNotFound(err))
}

func TestFilePersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	assert.NoError(t, p.HealthCheck(context.Background()))

	missing := file.NewPersistence("/nonexistent/inspecta-test")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
