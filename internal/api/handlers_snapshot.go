// handlers_snapshot.go - Project snapshot handlers
package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hmi-editor/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// SnapshotHandlerImpl implements the SnapshotHandler interface
type SnapshotHandlerImpl struct {
	store        storage.Store
	project      ProjectService
	allowDelete  bool
	allowedTypes []string
}

// NewSnapshotHandler creates a new snapshot handler. allowedTypes is a comma
// separated list of file extensions accepted by import; empty accepts all.
func NewSnapshotHandler(store storage.Store, svc ProjectService, allowDelete bool, allowedTypes string) SnapshotHandler {
	h := &SnapshotHandlerImpl{
		store:       store,
		project:     svc,
		allowDelete: allowDelete,
	}
	for _, ext := range strings.Split(allowedTypes, ",") {
		if ext = strings.ToLower(strings.TrimSpace(ext)); ext != "" {
			h.allowedTypes = append(h.allowedTypes, ext)
		}
	}
	return h
}

// HandleSaveSnapshot stores the current project
func (h *SnapshotHandlerImpl) HandleSaveSnapshot(c echo.Context) error {
	var req snapshotNameRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	info, err := h.project.SaveSnapshot(req.Name)
	if err != nil {
		return NewInternalError("failed to save snapshot", err)
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleListSnapshots returns stored snapshots, most recent first
func (h *SnapshotHandlerImpl) HandleListSnapshots(c echo.Context) error {
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	list, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list snapshots", err)
	}
	return c.JSON(http.StatusOK, list)
}

// HandleImportSnapshot stores an uploaded JSON or YAML project
// (multipart/form-data). With load=true the project is opened as well.
func (h *SnapshotHandlerImpl) HandleImportSnapshot(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}
	if !h.allowed(file.Filename) {
		return NewBadRequestError("unsupported file type: "+filepath.Ext(file.Filename), nil)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Import(file.Filename, src)
	if err != nil {
		return NewBadRequestError("invalid project file", err)
	}

	if load, _ := strconv.ParseBool(c.FormValue("load")); load {
		if _, err := h.project.LoadSnapshot(info.ID); err != nil {
			return fromDomainError("failed to load imported project", err)
		}
	}
	return c.JSON(http.StatusCreated, info)
}

func (h *SnapshotHandlerImpl) allowed(name string) bool {
	if len(h.allowedTypes) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, t := range h.allowedTypes {
		if t == ext {
			return true
		}
	}
	return false
}

// HandleLoadSnapshot makes a snapshot the current project
func (h *SnapshotHandlerImpl) HandleLoadSnapshot(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.project.LoadSnapshot(id)
	if err != nil {
		return fromDomainError("failed to load snapshot", err)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleRenameSnapshot updates the name of a snapshot
func (h *SnapshotHandlerImpl) HandleRenameSnapshot(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req snapshotNameRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("snapshot", id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteSnapshot deletes a snapshot
func (h *SnapshotHandlerImpl) HandleDeleteSnapshot(c echo.Context) error {
	if !h.allowDelete {
		return NewForbiddenError("snapshot deletion is disabled")
	}
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("snapshot", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// Request/Response types

type snapshotNameRequest struct {
	Name string `json:"name"`
}

func (r *snapshotNameRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name")
	}
	return nil
}
