// handlers_project.go - Current project and script handlers
package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/hmi-editor/backend/internal/tagoptions"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// ProjectHandlerImpl implements the ProjectHandler interface
type ProjectHandlerImpl struct {
	project ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(svc ProjectService) ProjectHandler {
	return &ProjectHandlerImpl{project: svc}
}

// HandleGetProject returns the current project
func (h *ProjectHandlerImpl) HandleGetProject(c echo.Context) error {
	p, err := h.project.Project()
	if err != nil {
		return NewInternalError("failed to read project", err)
	}
	return c.JSON(http.StatusOK, p)
}

// HandleApplyCommand applies one edit command to the project
func (h *ProjectHandlerImpl) HandleApplyCommand(c echo.Context) error {
	var req projectCommandRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	if err := h.project.Apply(req.Cmd, req.Data); err != nil {
		return NewBadRequestError("failed to apply command", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleExportMsgpack returns the current project encoded as msgpack
func (h *ProjectHandlerImpl) HandleExportMsgpack(c echo.Context) error {
	p, err := h.project.Project()
	if err != nil {
		return NewInternalError("failed to read project", err)
	}

	data, err := encodeMsgpack(p)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="project.msgpack"`)
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// encodeMsgpack encodes v with the JSON field names so both exports share
// one schema.
func encodeMsgpack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HandleGetScripts returns all project scripts
func (h *ProjectHandlerImpl) HandleGetScripts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.project.GetScripts())
}

// HandleSetScripts replaces the project scripts. Open dialogs reload their
// scaling scripts.
func (h *ProjectHandlerImpl) HandleSetScripts(c echo.Context) error {
	var scripts []models.Script
	if err := c.Bind(&scripts); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	seen := make(map[string]bool, len(scripts))
	for _, s := range scripts {
		if s.ID == "" {
			return NewValidationError("id")
		}
		if seen[s.ID] {
			return NewConflictError("duplicate script id: " + s.ID)
		}
		seen[s.ID] = true
	}

	h.project.SetScripts(scripts)
	return c.JSON(http.StatusOK, h.project.GetScripts())
}

// HandleGetScalingScripts returns the scripts usable for tag scaling
func (h *ProjectHandlerImpl) HandleGetScalingScripts(c echo.Context) error {
	return c.JSON(http.StatusOK, tagoptions.ScalingScripts(h.project.GetScripts()))
}

// Request/Response types

type projectCommandRequest struct {
	Cmd  models.ProjectDataCmdType `json:"cmd"`
	Data json.RawMessage           `json:"data"`
}

func (r *projectCommandRequest) validate() error {
	if r.Cmd == "" {
		return NewValidationError("cmd")
	}
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return NewValidationError("data")
	}
	return nil
}
