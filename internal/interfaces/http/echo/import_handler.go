package echo

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	app "github.com/mohammadpnp/employee-import/internal/application/employee"
)

const requesterHeader = "X-User-ID"

type ImportHandler struct {
	useCase       app.StartEmployeeImport
	publicBaseURL string
	logger        logrus.FieldLogger
}

type importEmployeesForm struct {
	HasHeader   string `form:"has_header" validate:"omitempty,boolean"`
	ChunkSize   string `form:"chunk_size" validate:"omitempty,numeric"`
	NotifyDone  string `form:"notify_done" validate:"omitempty,boolean"`
	RequestedBy string `validate:"omitempty,uuid"`
}

type importAccepted struct {
	ImportID     string `json:"import_id"`
	Batches      int    `json:"batches"`
	NotifyTaskID string `json:"notify_task_id,omitempty"`
	Message      string `json:"message"`
	Status       string `json:"status"`
	StatusURL    string `json:"status_url"`
}

func NewImportHandler(useCase app.StartEmployeeImport, publicBaseURL string, logger logrus.FieldLogger) *ImportHandler {
	return &ImportHandler{
		useCase:       useCase,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

func (h *ImportHandler) ImportEmployees(c echo.Context) error {
	var form importEmployeesForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid multipart form",
		}})
	}
	form.RequestedBy = strings.TrimSpace(c.Request().Header.Get(requesterHeader))

	if err := c.Validate(&form); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "has_header and notify_done must be booleans, chunk_size an integer and " + requesterHeader + " a UUID",
		}})
	}

	chunkSize, err := parseChunkSize(form.ChunkSize)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "chunk_size must be an integer",
		}})
	}

	fileName, content, err := readUpload(c)
	if err != nil {
		return h.respondError(c, err)
	}

	out, err := h.useCase.Execute(c.Request().Context(), app.StartEmployeeImportInput{
		FileName:    fileName,
		Content:     content,
		HasHeader:   parseBoolDefault(form.HasHeader, true),
		ChunkSize:   chunkSize,
		NotifyDone:  parseBoolDefault(form.NotifyDone, true),
		RequestedBy: form.RequestedBy,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: importAccepted{
		ImportID:     out.ImportID,
		Batches:      out.Batches,
		NotifyTaskID: out.NotifyTaskID,
		Message:      out.Message,
		Status:       out.Status,
		StatusURL:    h.publicBaseURL + "/api/v1/imports/" + out.ImportID,
	}})
}

func (h *ImportHandler) respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, app.ErrUserInput):
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_upload",
			Message: err.Error(),
		}})
	case errors.Is(err, app.ErrDependencyUnavailable):
		return c.JSON(http.StatusUnprocessableEntity, apiResponse{Error: &errorBody{
			Code:    "dependency_unavailable",
			Message: err.Error(),
		}})
	default:
		h.logger.WithError(err).WithField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Error("start employee import failed")
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to schedule employee import",
		}})
	}
}

func readUpload(c echo.Context) (string, []byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, app.ErrNoFile
	}

	file, err := header.Open()
	if err != nil {
		return "", nil, app.ErrUnreadableUpload
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", nil, app.ErrUnreadableUpload
	}
	return header.Filename, content, nil
}

func parseChunkSize(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func parseBoolDefault(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
