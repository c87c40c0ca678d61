// Package workflow contains the client-side execution engine for guided
// inspection workflows: a step cursor walked forward and backward over a
// server-defined sequence of heterogeneous steps, accumulating form
// answers and captured photos until a single result payload is produced.
package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/inspecta/inspecta/pkg/models"
	"github.com/inspecta/inspecta/pkg/notify"
	"github.com/inspecta/inspecta/pkg/validation"
)

var (
	ErrNoSteps         = errors.New("workflow has no steps")
	ErrRunDone         = errors.New("workflow run already completed")
	ErrNotPhotoStep    = errors.New("current step does not accept photos")
	ErrPhotoQuota      = errors.New("photo quota for step reached")
	ErrPhotoNotFound   = errors.New("photo index out of range")
	ErrSkipNotAllowed  = errors.New("step cannot be skipped")
	ErrSkipOnLastStep  = errors.New("last step cannot be skipped")
	ErrRunNotCompleted = errors.New("workflow run not completed yet")
)

// Result is the payload produced when a run reaches the end of its last
// step. The shape matches what the backend execution endpoint consumes.
type Result struct {
	WorkflowID     string                             `json:"workflow_id"`
	Answers        map[string]any                     `json:"step_data"`
	PhotosByStep   map[string][]*models.CapturedPhoto `json:"photos"`
	CompletedSteps []int                              `json:"completed_steps"`
}

// Runner owns all mutable state of one workflow run. It is not safe for
// concurrent use; only one step is ever interactive at a time.
type Runner struct {
	workflow  *models.Workflow
	cursor    int
	answers   map[string]any
	photos    map[string][]*models.CapturedPhoto
	errors    validation.ErrorMap
	completed map[int]struct{}
	done      bool

	notifier notify.Notifier
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

func WithNotifier(n notify.Notifier) Option {
	return func(r *Runner) { r.notifier = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner starts a run positioned at the first step. Field default
// values across all FORM steps are seeded into the answer map up front.
func NewRunner(wf *models.Workflow, opts ...Option) (*Runner, error) {
	if wf == nil || len(wf.Steps) == 0 {
		return nil, ErrNoSteps
	}

	r := &Runner{
		workflow:  wf,
		answers:   make(map[string]any),
		photos:    make(map[string][]*models.CapturedPhoto),
		errors:    validation.ErrorMap{},
		completed: make(map[int]struct{}),
		notifier:  notify.Discard{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.With("workflow_id", wf.ID)

	for _, step := range wf.Steps {
		if step.StepType != models.StepTypeForm {
			continue
		}

		for _, field := range step.Fields() {
			if field.DefaultValue != "" {
				r.answers[field.ID] = field.DefaultValue
			}
		}
	}

	return r, nil
}

func (r *Runner) Workflow() *models.Workflow { return r.workflow }

// CurrentStep returns the step under the cursor, or nil once the run is
// done.
func (r *Runner) CurrentStep() *models.WorkflowStep {
	if r.done {
		return nil
	}

	return r.workflow.Steps[r.cursor]
}

func (r *Runner) Cursor() int     { return r.cursor }
func (r *Runner) TotalSteps() int { return len(r.workflow.Steps) }
func (r *Runner) Done() bool      { return r.done }

// Progress reports completion percentage for the progress bar.
func (r *Runner) Progress() float64 {
	if r.done {
		return 100
	}

	return float64(r.cursor+1) / float64(len(r.workflow.Steps)) * 100
}

// Errors returns the error map from the last failed validation pass.
func (r *Runner) Errors() validation.ErrorMap { return r.errors }

// Answer returns the current value for a field.
func (r *Runner) Answer(fieldID string) any { return r.answers[fieldID] }

// SetAnswer records a field value and optimistically clears any existing
// error for that field. It does not re-validate.
func (r *Runner) SetAnswer(fieldID string, value any) {
	if r.done {
		return
	}

	r.answers[fieldID] = value
	delete(r.errors, fieldID)
}

// Photos returns the confirmed photos of the current step, in capture
// order.
func (r *Runner) Photos() []*models.CapturedPhoto {
	step := r.CurrentStep()
	if step == nil {
		return nil
	}

	return r.photos[step.ID]
}

// PhotosForStep returns the confirmed photos of any step by ID.
func (r *Runner) PhotosForStep(stepID string) []*models.CapturedPhoto {
	return r.photos[stepID]
}

// StepCompleted reports whether the step at the given index has passed
// validation at least once.
func (r *Runner) StepCompleted(index int) bool {
	_, ok := r.completed[index]

	return ok
}

// AddPhoto appends a confirmed capture to the current PHOTO step. The
// quota is enforced here, before the photo is accepted, not only at
// validation time. Captions are sequential.
func (r *Runner) AddPhoto(photo *models.CapturedPhoto) error {
	step := r.CurrentStep()
	if step == nil {
		return ErrRunDone
	}

	if step.StepType != models.StepTypePhoto {
		return ErrNotPhotoStep
	}

	existing := r.photos[step.ID]
	if step.MaxPhotos != nil && len(existing) >= *step.MaxPhotos {
		return ErrPhotoQuota
	}

	photo.Title = fmt.Sprintf("Foto %d", len(existing)+1)
	r.photos[step.ID] = append(existing, photo)
	delete(r.errors, validation.PhotosKey)

	r.notifier.Success("Foto capturada com sucesso!")
	r.logger.Debug("photo added", "step_id", step.ID, "count", len(r.photos[step.ID]))

	return nil
}

// RemovePhoto drops a photo from the current step by position and
// releases its preview resource.
func (r *Runner) RemovePhoto(index int) error {
	step := r.CurrentStep()
	if step == nil {
		return ErrRunDone
	}

	list := r.photos[step.ID]
	if index < 0 || index >= len(list) {
		return ErrPhotoNotFound
	}

	if err := list[index].Preview.Release(); err != nil {
		r.logger.Warn("failed to release photo preview", "error", err)
	}

	r.photos[step.ID] = append(list[:index:index], list[index+1:]...)

	return nil
}

// Next validates the current step and advances on success. On the last
// step a successful pass completes the run. On failure the cursor stays
// put, the error map is surfaced and a non-blocking warning is emitted.
// The return value reports whether the cursor moved (or the run
// finished).
func (r *Runner) Next() bool {
	step := r.CurrentStep()
	if step == nil {
		return false
	}

	errs := validation.ValidateStep(step, r.answers, r.photos[step.ID])
	if !errs.Empty() {
		r.errors = errs
		r.notifier.Warning("Por favor, preencha todos os campos obrigatórios")
		r.logger.Debug("step blocked by validation", "step_id", step.ID, "errors", len(errs))

		return false
	}

	r.completed[r.cursor] = struct{}{}
	r.errors = validation.ErrorMap{}

	if r.cursor == len(r.workflow.Steps)-1 {
		r.done = true
		r.logger.Info("workflow run completed", "steps", len(r.workflow.Steps))

		return true
	}

	r.cursor++

	return true
}

// Previous moves back one step. Backward navigation is never blocked and
// never re-validates the step being left.
func (r *Runner) Previous() {
	if r.done || r.cursor == 0 {
		return
	}

	r.cursor--
	r.errors = validation.ErrorMap{}
}

// Skip advances without validating and without marking the step
// complete. Answers and photos already entered for the step are kept.
// Skipping is permitted when the step or the workflow allows it, and
// never on the last step.
func (r *Runner) Skip() error {
	step := r.CurrentStep()
	if step == nil {
		return ErrRunDone
	}

	if !step.IsSkippable && !r.workflow.AllowSkipSteps {
		return ErrSkipNotAllowed
	}

	if r.cursor == len(r.workflow.Steps)-1 {
		return ErrSkipOnLastStep
	}

	r.cursor++
	r.errors = validation.ErrorMap{}

	return nil
}

// Result assembles the final payload. Valid only after the run is done;
// the runner holds no further responsibility afterwards.
func (r *Runner) Result() (*Result, error) {
	if !r.done {
		return nil, ErrRunNotCompleted
	}

	completed := make([]int, 0, len(r.completed))
	for index := range r.completed {
		completed = append(completed, index)
	}

	sort.Ints(completed)

	return &Result{
		WorkflowID:     r.workflow.ID,
		Answers:        r.answers,
		PhotosByStep:   r.photos,
		CompletedSteps: completed,
	}, nil
}

// ReleasePhotos frees every confirmed photo preview, for the
// cancellation path where the run is abandoned before completion.
func (r *Runner) ReleasePhotos() {
	for stepID, list := range r.photos {
		for _, photo := range list {
			if err := photo.Preview.Release(); err != nil {
				r.logger.Warn("failed to release photo preview", "step_id", stepID, "error", err)
			}
		}
	}
}
