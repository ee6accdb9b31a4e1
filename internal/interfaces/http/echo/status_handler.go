package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	app "github.com/mohammadpnp/employee-import/internal/application/employee"
)

type StatusHandler struct {
	useCase app.GetImportStatus
}

func NewStatusHandler(useCase app.GetImportStatus) *StatusHandler {
	return &StatusHandler{useCase: useCase}
}

func (h *StatusHandler) GetImportStatus(c echo.Context) error {
	out, err := h.useCase.Execute(c.Request().Context(), app.GetImportStatusInput{
		ImportID: c.Param("id"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidImportID) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_import_id",
				Message: "id must be a valid UUID",
			}})
		}
		if errors.Is(err, app.ErrImportNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "import not found",
			}})
		}

		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to get import status",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
