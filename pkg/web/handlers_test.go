package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspecta/inspecta/pkg/client"
	"github.com/inspecta/inspecta/pkg/flow"
	"github.com/inspecta/inspecta/pkg/persistence/file"
	"github.com/inspecta/inspecta/pkg/web"
	"github.com/inspecta/inspecta/pkg/workflow"
)

const definitionJSON = `[{
	"id": "wf-1",
	"name": "Container inspection",
	"is_default": true,
	"steps": [
		{
			"id": "step-form",
			"name": "Dados",
			"step_type": "FORM",
			"forms": [{
				"id": "form-1",
				"name": "Identificação",
				"fields": [
					{"id": "container", "label": "Container", "field_type": "TEXT", "is_required": true}
				]
			}]
		},
		{
			"id": "step-photos",
			"name": "Fotos",
			"step_type": "PHOTO",
			"min_photos": 1,
			"max_photos": 2
		}
	]
}]`

// fakeBackend records which inspection endpoints the run API called.
type fakeBackend struct {
	mu        sync.Mutex
	completed int
	uploads   int
}

func (b *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/inspections/types/":
			_, _ = w.Write([]byte(`[{"id":1,"name":"Container"}]`))
		case r.URL.Path == "/inspections/inspections/" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":55,"title":"Vistoria","inspection_type":1,"status":"IN_PROGRESS"}`))
		case r.URL.Path == "/inspections/inspections/55/start/":
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/inspections/inspections/55/complete/":
			b.mu.Lock()
			b.completed++
			b.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/inspections/photos/":
			b.mu.Lock()
			b.uploads++
			b.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		case r.URL.Path == "/workflows/workflows/":
			_, _ = w.Write([]byte(definitionJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func setupTestApp(t *testing.T) (*fiber.App, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	apiClient := client.New(server.URL)

	repository, err := workflow.NewRepository(apiClient)
	require.NoError(t, err)

	logger := slog.Default()
	store := file.NewPersistence(t.TempDir())
	manager := workflow.NewManager(store, logger)
	flowService := flow.NewService(apiClient, repository, logger)

	handlers := web.NewAPIHandlers(flowService, manager, store,
		validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	app.Get("/inspection-types", handlers.GetInspectionTypes)

	r := app.Group("/runs")
	r.Post("/", handlers.CreateRun)
	r.Get("/", handlers.GetRuns)
	r.Get("/:id", handlers.GetRun)
	r.Delete("/:id", handlers.AbandonRun)
	r.Put("/:id/answers", handlers.SetAnswer)
	r.Post("/:id/photos", handlers.AddPhoto)
	r.Delete("/:id/photos/:index", handlers.RemovePhoto)
	r.Post("/:id/next", handlers.Next)
	r.Post("/:id/previous", handlers.Previous)
	r.Post("/:id/skip", handlers.Skip)
	r.Post("/:id/complete", handlers.CompleteRun)

	return app, backend
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	return resp, payload
}

func createRun(t *testing.T, app *fiber.App) web.RunStateResponse {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/runs/", map[string]any{
		"title":           "Vistoria MSC",
		"inspection_type": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created web.CreateRunResponse

	require.NoError(t, json.Unmarshal(body, &created))
	require.NotNil(t, created.Run)

	return *created.Run
}

func TestCreateRun(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	run := createRun(t, app)

	assert.Equal(t, 55, run.InspectionID)
	assert.Equal(t, "wf-1", run.WorkflowID)
	assert.Equal(t, 0, run.Cursor)
	assert.Equal(t, 2, run.TotalSteps)
	require.NotNil(t, run.CurrentStep)
	assert.Equal(t, "step-form", run.CurrentStep.ID)
}

func TestCreateRun_ValidationError(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/runs/", map[string]any{"inspection_type": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRun_NotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNext_BlockedByValidation(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	run := createRun(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state web.RunStateResponse

	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 0, state.Cursor)
	assert.Equal(t, "Campo obrigatório", state.Errors["container"])
}

func TestAnswerThenNextAdvances(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	run := createRun(t, app)

	resp, _ := doJSON(t, app, http.MethodPut, "/runs/"+run.ID+"/answers", web.AnswerRequest{
		FieldID: "container",
		Value:   "MSCU1234567",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state web.RunStateResponse

	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 1, state.Cursor)
	assert.Equal(t, "step-photos", state.CurrentStep.ID)
}

func TestPhotoQuotaOverHTTP(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	run := createRun(t, app)

	doJSON(t, app, http.MethodPut, "/runs/"+run.ID+"/answers", web.AnswerRequest{FieldID: "container", Value: "X"})
	doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/next", nil)

	photo := web.PhotoRequest{Data: []byte{0xff, 0xd8}, Filename: "a.jpg"}

	resp, _ := doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/photos", photo)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/photos", photo)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/photos", photo)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodDelete, "/runs/"+run.ID+"/photos/0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state web.RunStateResponse

	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 1, state.PhotoCount)
}

func TestSkipNotAllowed(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	run := createRun(t, app)

	resp, _ := doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/skip", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCompleteRunLifecycle(t *testing.T) {
	t.Parallel()

	app, backend := setupTestApp(t)
	run := createRun(t, app)

	// Completing before the run is done conflicts.
	resp, _ := doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/complete", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	doJSON(t, app, http.MethodPut, "/runs/"+run.ID+"/answers", web.AnswerRequest{FieldID: "container", Value: "X"})
	doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/next", nil)
	doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/photos", web.PhotoRequest{Data: []byte{0xff}, Filename: "a.jpg"})

	resp, body := doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state web.RunStateResponse

	require.NoError(t, json.Unmarshal(body, &state))
	require.True(t, state.Done)

	resp, _ = doJSON(t, app, http.MethodPost, "/runs/"+run.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 1, backend.completed)
	assert.Equal(t, 1, backend.uploads)

	// The run is gone from the live set afterwards.
	resp, _ = doJSON(t, app, http.MethodGet, "/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAbandonRun(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)
	run := createRun(t, app)

	resp, _ := doJSON(t, app, http.MethodDelete, "/runs/"+run.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetInspectionTypes(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/inspection-types", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Container")
}
