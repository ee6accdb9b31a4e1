package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, importHandler *ImportHandler, statusHandler *StatusHandler) {
	if server.Validator == nil {
		server.Validator = NewRequestValidator()
	}

	if importHandler != nil {
		server.POST("/api/v1/imports/employees", importHandler.ImportEmployees)
	}
	if statusHandler != nil {
		server.GET("/api/v1/imports/:id", statusHandler.GetImportStatus)
	}
}
