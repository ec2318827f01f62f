// handlers_snapshot_test.go - Tests for snapshot handlers
package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write([]byte(content))
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestSnapshotHandler_SaveListRenameDelete(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/project/snapshots", map[string]string{"name": "baseline"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var info models.SnapshotInfo
	decodeJSON(t, rec, &info)
	assert.Equal(t, "baseline", info.Name)
	assert.NotEmpty(t, info.ID)

	rec = env.do(http.MethodPost, "/api/project/snapshots", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/project/snapshots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.SnapshotInfo
	decodeJSON(t, rec, &list)
	assert.Len(t, list, 1)

	rec = env.do(http.MethodGet, "/api/project/snapshots?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/api/project/snapshots/"+info.ID, map[string]string{"name": "renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &info)
	assert.Equal(t, "renamed", info.Name)

	rec = env.do(http.MethodPut, "/api/project/snapshots/missing", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, "/api/project/snapshots/"+info.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, env.store.SnapshotCount())

	rec = env.do(http.MethodDelete, "/api/project/snapshots/"+info.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSnapshotHandler_DeleteDisabled(t *testing.T) {
	env := newTestEnv(t)
	h := NewSnapshotHandler(env.store, env.project, false, "")
	env.store.AddSnapshot("keep", "keep", []byte(`{}`), models.ProjectVersion)

	c, _ := env.context(http.MethodDelete, "/api/project/snapshots/keep", nil)
	c.SetParamNames("id")
	c.SetParamValues("keep")

	err := h.HandleDeleteSnapshot(c)
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected APIError, got %T", err)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, 1, env.store.SnapshotCount())
}

func TestSnapshotHandler_LoadSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.store.AddSnapshot("empty", "empty", []byte(`{"version":"1.00"}`), models.ProjectVersion)

	rec := env.do(http.MethodPost, "/api/project/snapshots/empty/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	p, err := env.project.Project()
	require.NoError(t, err)
	assert.Empty(t, p.Devices)

	rec = env.do(http.MethodPost, "/api/project/snapshots/missing/load", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSnapshotHandler_HandleImportSnapshot(t *testing.T) {
	yamlProject := `
version: "1.00"
devices:
  d9:
    id: d9
    name: Imported
`
	tests := []struct {
		name       string
		filename   string
		content    string
		load       string
		wantStatus int
		wantLoaded bool
	}{
		{"yaml without load", "plant.yaml", yamlProject, "", http.StatusCreated, false},
		{"yaml with load", "plant.yml", yamlProject, "true", http.StatusCreated, true},
		{"json", "plant.json", `{"version":"1.00","devices":{"d9":{"id":"d9"}}}`, "1", http.StatusCreated, true},
		{"unsupported type", "plant.txt", yamlProject, "", http.StatusBadRequest, false},
		{"malformed", "plant.json", `{"devices":`, "", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			fields := map[string]string{}
			if tt.load != "" {
				fields["load"] = tt.load
			}
			req := multipartRequest(t, "/api/project/snapshots/import", tt.filename, tt.content, fields)
			rec := httptest.NewRecorder()

			env.e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			p, _ := env.project.Project()
			_, loaded := p.Devices["d9"]
			assert.Equal(t, tt.wantLoaded, loaded)
		})
	}
}

func TestSnapshotHandler_ImportWithoutFile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/project/snapshots/import", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSnapshotHandler_ImportBodyLimit(t *testing.T) {
	env := newTestEnv(t)
	handlers := NewHandlers(&Dependencies{
		Store:         env.store,
		Project:       env.project,
		Sessions:      env.sessions,
		MaxImportSize: "1K",
	})
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, handlers)

	content := `{"version":"1.00","texts":[{"name":"big","value":"` + strings.Repeat("a", 4096) + `"}]}`
	req := multipartRequest(t, "/api/project/snapshots/import", "big.json", content, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, env.store.SnapshotCount())
}
