// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"encoding/json"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/hmi-editor/backend/internal/session"
	"github.com/hmi-editor/backend/internal/tagoptions"
	"github.com/labstack/echo/v4"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ProjectHandler handles the current project and its scripts
type ProjectHandler interface {
	HandleGetProject(c echo.Context) error
	HandleApplyCommand(c echo.Context) error
	HandleExportMsgpack(c echo.Context) error
	HandleGetScripts(c echo.Context) error
	HandleSetScripts(c echo.Context) error
	HandleGetScalingScripts(c echo.Context) error
}

// SnapshotHandler handles stored project snapshots
type SnapshotHandler interface {
	HandleSaveSnapshot(c echo.Context) error
	HandleListSnapshots(c echo.Context) error
	HandleImportSnapshot(c echo.Context) error
	HandleLoadSnapshot(c echo.Context) error
	HandleRenameSnapshot(c echo.Context) error
	HandleDeleteSnapshot(c echo.Context) error
}

// TagOptionsHandler handles tag options dialog sessions
type TagOptionsHandler interface {
	HandleOpen(c echo.Context) error
	HandleGetState(c echo.Context) error
	HandlePatch(c echo.Context) error
	HandleSetParams(c echo.Context) error
	HandleConfirm(c echo.Context) error
	HandleCancel(c echo.Context) error
}

// ProjectPushHandler streams project notifications over WebSocket
type ProjectPushHandler interface {
	HandleWebSocket(c echo.Context) error
}

// ProjectService defines the project operations used by the handlers.
// This allows mocking in tests
type ProjectService interface {
	tagoptions.ScriptSource
	Project() (*models.ProjectData, error)
	SetScripts(scripts []models.Script)
	Apply(cmd models.ProjectDataCmdType, payload json.RawMessage) error
	Tags(deviceID string, tagIDs []string) (*models.Device, []*models.Tag, error)
	ApplyTagOption(deviceID string, tagIDs []string, opt *models.TagOption) error
	LoadSnapshot(id string) (*models.SnapshotInfo, error)
	SaveSnapshot(name string) (*models.SnapshotInfo, error)
}

// SessionManager defines the dialog session operations used by the handlers.
type SessionManager interface {
	Open(data tagoptions.Data, target *session.Target) (*session.Session, error)
	Get(id string) (*session.Session, bool)
	Touch(id string) bool
	Close(id string) error
}
