package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/notify"
	"github.com/inspecta/inspecta/pkg/validation"
	"github.com/inspecta/inspecta/pkg/workflow"
)

func intPtr(v int) *int { return &v }

func testWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:   "wf-1",
		Name: "Container inspection",
		Steps: []*models.WorkflowStep{
			{
				ID:       "step-form",
				Name:     "Dados do container",
				StepType: models.StepTypeForm,
				Forms: []*models.Form{
					{
						ID:   "form-1",
						Name: "Identificação",
						Fields: []*models.Field{
							{ID: "container", Label: "Container", FieldType: models.FieldTypeText, IsRequired: true},
							{ID: "origin", Label: "Origem", FieldType: models.FieldTypeText, DefaultValue: "Santos"},
						},
					},
				},
			},
			{
				ID:          "step-photos",
				Name:        "Fotos",
				StepType:    models.StepTypePhoto,
				IsSkippable: true,
				MinPhotos:   1,
				MaxPhotos:   intPtr(2),
			},
			{
				ID:          "step-final",
				Name:        "Confirmação",
				StepType:    models.StepTypeApproval,
				IsSkippable: true,
			},
		},
	}
}

func photo() *models.CapturedPhoto {
	return &models.CapturedPhoto{
		Data:        []byte{0xff, 0xd8},
		ContentType: "image/jpeg",
		Filename:    "photo.jpg",
		Preview:     models.NewPreviewHandle("mem://photo.jpg", nil),
	}
}

func TestNewRunner_SeedsDefaults(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	assert.Equal(t, "Santos", r.Answer("origin"))
	assert.Nil(t, r.Answer("container"))
	assert.Equal(t, 0, r.Cursor())
	assert.Equal(t, 3, r.TotalSteps())
}

func TestNewRunner_RejectsEmptyWorkflow(t *testing.T) {
	t.Parallel()

	_, err := workflow.NewRunner(&models.Workflow{ID: "empty"})
	assert.ErrorIs(t, err, workflow.ErrNoSteps)

	_, err = workflow.NewRunner(nil)
	assert.ErrorIs(t, err, workflow.ErrNoSteps)
}

func TestRunner_NextBlockedByValidation(t *testing.T) {
	t.Parallel()

	recorder := &notify.Recorder{}
	r, err := workflow.NewRunner(testWorkflow(), workflow.WithNotifier(recorder))
	require.NoError(t, err)

	moved := r.Next()

	assert.False(t, moved)
	assert.Equal(t, 0, r.Cursor())
	assert.Equal(t, "Campo obrigatório", r.Errors()["container"])
	assert.Equal(t, []string{"Por favor, preencha todos os campos obrigatórios"}, recorder.Warnings)
}

func TestRunner_SetAnswerClearsFieldError(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	r.Next()
	require.Contains(t, r.Errors(), "container")

	r.SetAnswer("container", "MSCU1234567")
	assert.NotContains(t, r.Errors(), "container")
}

func TestRunner_ForwardAndBackward(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	r.SetAnswer("container", "MSCU1234567")
	require.True(t, r.Next())
	assert.Equal(t, 1, r.Cursor())

	// Backward navigation is never blocked, even off an invalid step.
	r.Previous()
	assert.Equal(t, 0, r.Cursor())
	assert.True(t, r.Errors().Empty())

	r.Previous()
	assert.Equal(t, 0, r.Cursor())
}

func TestRunner_PhotoQuotaEnforcedOnAdd(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	r.SetAnswer("container", "MSCU1234567")
	require.True(t, r.Next())

	require.NoError(t, r.AddPhoto(photo()))
	require.NoError(t, r.AddPhoto(photo()))
	assert.ErrorIs(t, r.AddPhoto(photo()), workflow.ErrPhotoQuota)

	photos := r.Photos()
	require.Len(t, photos, 2)
	assert.Equal(t, "Foto 1", photos[0].Title)
	assert.Equal(t, "Foto 2", photos[1].Title)
}

func TestRunner_AddPhotoOnFormStep(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	assert.ErrorIs(t, r.AddPhoto(photo()), workflow.ErrNotPhotoStep)
}

func TestRunner_RemovePhotoReleasesPreview(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	r.SetAnswer("container", "MSCU1234567")
	require.True(t, r.Next())

	released := false
	first := &models.CapturedPhoto{
		Data:     []byte{1},
		Filename: "a.jpg",
		Preview: models.NewPreviewHandle("mem://a.jpg", func() error {
			released = true

			return nil
		}),
	}

	require.NoError(t, r.AddPhoto(first))
	require.NoError(t, r.AddPhoto(photo()))

	require.NoError(t, r.RemovePhoto(0))

	assert.True(t, released)
	require.Len(t, r.Photos(), 1)

	assert.ErrorIs(t, r.RemovePhoto(5), workflow.ErrPhotoNotFound)
}

func TestRunner_SkipSemantics(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	// First step is neither skippable nor is the workflow permissive.
	assert.ErrorIs(t, r.Skip(), workflow.ErrSkipNotAllowed)

	r.SetAnswer("container", "MSCU1234567")
	require.True(t, r.Next())

	// Photo step is skippable; data entered before skipping survives.
	require.NoError(t, r.AddPhoto(photo()))
	require.NoError(t, r.Skip())
	assert.Equal(t, 2, r.Cursor())
	assert.False(t, r.StepCompleted(1))

	// Last step can never be skipped.
	assert.ErrorIs(t, r.Skip(), workflow.ErrSkipOnLastStep)
}

func TestRunner_SkipAllowedByWorkflowFlag(t *testing.T) {
	t.Parallel()

	wf := testWorkflow()
	wf.AllowSkipSteps = true

	r, err := workflow.NewRunner(wf)
	require.NoError(t, err)

	assert.NoError(t, r.Skip())
	assert.Equal(t, 1, r.Cursor())
}

func TestRunner_CompletionAndResult(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	_, err = r.Result()
	assert.ErrorIs(t, err, workflow.ErrRunNotCompleted)

	r.SetAnswer("container", "MSCU1234567")
	require.True(t, r.Next())
	require.NoError(t, r.AddPhoto(photo()))
	require.True(t, r.Next())

	// Last step validates too.
	require.True(t, r.Next())
	assert.True(t, r.Done())
	assert.Nil(t, r.CurrentStep())
	assert.InDelta(t, 100, r.Progress(), 0.001)

	result, err := r.Result()
	require.NoError(t, err)

	assert.Equal(t, "wf-1", result.WorkflowID)
	assert.Equal(t, []int{0, 1, 2}, result.CompletedSteps)
	assert.Equal(t, "MSCU1234567", result.Answers["container"])
	assert.Len(t, result.PhotosByStep["step-photos"], 1)
}

func TestRunner_LastStepValidationBlocksCompletion(t *testing.T) {
	t.Parallel()

	wf := &models.Workflow{
		ID:   "wf-2",
		Name: "Single photo step",
		Steps: []*models.WorkflowStep{
			{ID: "only", Name: "Fotos", StepType: models.StepTypePhoto, MinPhotos: 1},
		},
	}

	r, err := workflow.NewRunner(wf)
	require.NoError(t, err)

	assert.False(t, r.Next())
	assert.False(t, r.Done())
	assert.Equal(t, "Mínimo de 1 fotos necessário", r.Errors()[validation.PhotosKey])

	require.NoError(t, r.AddPhoto(photo()))
	assert.True(t, r.Next())
	assert.True(t, r.Done())
}

func TestRunner_ProgressByCursor(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	assert.InDelta(t, 100.0/3, r.Progress(), 0.001)

	r.SetAnswer("container", "MSCU1234567")
	require.True(t, r.Next())
	assert.InDelta(t, 200.0/3, r.Progress(), 0.001)
}

func TestRunner_ReleasePhotos(t *testing.T) {
	t.Parallel()

	r, err := workflow.NewRunner(testWorkflow())
	require.NoError(t, err)

	r.SetAnswer("container", "MSCU1234567")
	require.True(t, r.Next())

	releases := 0
	p := &models.CapturedPhoto{
		Data:     []byte{1},
		Filename: "a.jpg",
		Preview: models.NewPreviewHandle("mem://a.jpg", func() error {
			releases++

			return nil
		}),
	}
	require.NoError(t, r.AddPhoto(p))

	r.ReleasePhotos()
	r.ReleasePhotos()

	assert.Equal(t, 1, releases)
}
