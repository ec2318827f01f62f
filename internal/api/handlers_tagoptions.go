// handlers_tagoptions.go - Tag options dialog session handlers
package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/hmi-editor/backend/internal/session"
	"github.com/hmi-editor/backend/internal/tagoptions"
	"github.com/labstack/echo/v4"
)

// TagOptionsHandlerImpl implements the TagOptionsHandler interface
type TagOptionsHandlerImpl struct {
	sessions SessionManager
	project  ProjectService
}

// NewTagOptionsHandler creates a new tag options handler
func NewTagOptionsHandler(sessions SessionManager, svc ProjectService) TagOptionsHandler {
	return &TagOptionsHandlerImpl{sessions: sessions, project: svc}
}

// HandleOpen opens a dialog for a tag selection. The selection is either
// sent inline or named by device and tag ids of the current project.
func (h *TagOptionsHandlerImpl) HandleOpen(c echo.Context) error {
	var req openDialogRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	data := tagoptions.Data{Tags: req.Tags, Device: req.Device}
	var target *session.Target
	if req.DeviceID != "" {
		dev, tags, err := h.project.Tags(req.DeviceID, req.TagIDs)
		if err != nil {
			return fromDomainError("failed to resolve tags", err)
		}
		data = tagoptions.Data{Tags: tags, Device: dev}
		target = &session.Target{DeviceID: req.DeviceID, TagIDs: req.TagIDs}
	}

	sess, err := h.sessions.Open(data, target)
	if err != nil {
		return NewInternalError("failed to open dialog", err)
	}
	return c.JSON(http.StatusCreated, newDialogResponse(sess))
}

// HandleGetState returns the current dialog state
func (h *TagOptionsHandlerImpl) HandleGetState(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newDialogResponse(sess))
}

// HandlePatch sets form fields from a field to value map
func (h *TagOptionsHandlerImpl) HandlePatch(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var body map[string]interface{}
	if err := bindBody(c, &body); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if len(body) == 0 {
		return NewValidationError("body")
	}
	values := make(map[tagoptions.Field]any, len(body))
	for k, v := range body {
		values[tagoptions.Field(k)] = v
	}

	if err := sess.Dialog.Patch(values); err != nil {
		return fromDomainError("failed to update dialog", err)
	}
	return c.JSON(http.StatusOK, newDialogResponse(sess))
}

// HandleSetParams sets parameter values of a scaling script
func (h *TagOptionsHandlerImpl) HandleSetParams(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	side := tagoptions.Side(c.Param("side"))
	if side != tagoptions.SideRead && side != tagoptions.SideWrite {
		return NewValidationError("side")
	}
	scriptID := c.Param("scriptId")
	if scriptID == "" {
		return NewValidationError("scriptId")
	}

	var body map[string]interface{}
	if err := bindBody(c, &body); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := sess.Dialog.SetParams(side, scriptID, body); err != nil {
		return fromDomainError("failed to set parameters", err)
	}
	return c.JSON(http.StatusOK, newDialogResponse(sess))
}

// HandleConfirm produces the tag option and closes the dialog. When the
// dialog was opened for project tags the option is written to them unless
// apply=false is given.
func (h *TagOptionsHandlerImpl) HandleConfirm(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	apply := true
	if s := c.QueryParam("apply"); s != "" {
		if apply, err = strconv.ParseBool(s); err != nil {
			return NewValidationError("apply")
		}
	}
	apply = apply && sess.Target != nil
	if apply {
		// The dialog stays open when its tags are gone.
		if _, _, err := h.project.Tags(sess.Target.DeviceID, sess.Target.TagIDs); err != nil {
			return fromDomainError("failed to resolve tags", err)
		}
	}

	opt, err := sess.Dialog.Confirm()
	if errors.Is(err, tagoptions.ErrInvalidForm) {
		return NewUnprocessableError("form is invalid", formErrors(sess.Dialog.State()))
	}
	if err != nil {
		return fromDomainError("failed to confirm dialog", err)
	}
	_ = h.sessions.Close(sess.ID)

	resp := confirmResponse{Option: opt}
	if apply {
		if err := h.project.ApplyTagOption(sess.Target.DeviceID, sess.Target.TagIDs, opt); err != nil {
			return fromDomainError("failed to apply tag options", err)
		}
		resp.Applied = true
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleCancel closes the dialog without a result
func (h *TagOptionsHandlerImpl) HandleCancel(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.Close(id); err != nil {
		return NewNotFoundError("dialog", id)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TagOptionsHandlerImpl) session(c echo.Context) (*session.Session, error) {
	id := c.Param("id")
	if id == "" {
		return nil, NewValidationError("id")
	}
	sess, ok := h.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("dialog", id)
	}
	h.sessions.Touch(id)
	return sess, nil
}

// bindBody decodes only the request body, so path parameters do not leak
// into map targets.
func bindBody(c echo.Context, v interface{}) error {
	return new(echo.DefaultBinder).BindBody(c, v)
}

func formErrors(st tagoptions.State) string {
	parts := make([]string, 0, len(st.Errors))
	for field, msg := range st.Errors {
		parts = append(parts, string(field)+": "+msg)
	}
	sort.Strings(parts)
	if len(parts) == 0 {
		return "scaling script parameters are incomplete"
	}
	return strings.Join(parts, "; ")
}

// Request/Response types

type openDialogRequest struct {
	Tags     []*models.Tag  `json:"tags"`
	Device   *models.Device `json:"device,omitempty"`
	DeviceID string         `json:"deviceId"`
	TagIDs   []string       `json:"tagIds"`
}

func (r *openDialogRequest) validate() error {
	if r.DeviceID != "" {
		if len(r.TagIDs) == 0 {
			return NewValidationError("tagIds")
		}
		return nil
	}
	if len(r.Tags) == 0 {
		return NewValidationError("tags")
	}
	return nil
}

type dialogResponse struct {
	ID     string           `json:"id"`
	Target *session.Target  `json:"target,omitempty"`
	State  tagoptions.State `json:"state"`
}

func newDialogResponse(sess *session.Session) dialogResponse {
	return dialogResponse{
		ID:     sess.ID,
		Target: sess.Target,
		State:  sess.Dialog.State(),
	}
}

type confirmResponse struct {
	Option  *models.TagOption `json:"option"`
	Applied bool              `json:"applied"`
}
