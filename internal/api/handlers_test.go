package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hmi-editor/backend/internal/project"
	"github.com/hmi-editor/backend/internal/session"
	"github.com/hmi-editor/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	e        *echo.Echo
	store    *testutil.MockStorage
	project  *project.Service
	sessions *session.Manager
	handlers *Handlers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)

	store := testutil.NewMockStorage()
	svc := project.NewService(store, log)
	require.NoError(t, svc.Load(testutil.SampleProject()))
	sessions := session.NewManager(svc, 0, log)

	handlers := NewHandlers(&Dependencies{
		Store:                 store,
		Project:               svc,
		Sessions:              sessions,
		Version:               "test",
		AllowSnapshotDeletion: true,
		AllowedImportTypes:    ".json,.yaml,.yml",
		Log:                   log,
	})

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, handlers)

	return &testEnv{e: e, store: store, project: svc, sessions: sessions, handlers: handlers}
}

// do sends a request through the router and returns the recorder.
func (env *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// context builds an echo context for calling a handler directly.
func (env *testEnv) context(method, path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	decodeJSON(t, rec, &body)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "test", body["version"])
}
