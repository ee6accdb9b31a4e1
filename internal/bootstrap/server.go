package bootstrap

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	app "github.com/mohammadpnp/employee-import/internal/application/employee"
	"github.com/mohammadpnp/employee-import/internal/config"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
	httpecho "github.com/mohammadpnp/employee-import/internal/interfaces/http/echo"
)

func NewHTTPServer(cfg *config.Config, runner task.Runner, logger logrus.FieldLogger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit(strconv.FormatInt(cfg.Import.MaxUploadSize, 10)))
	server.Use(requestLogger(logger))

	importHandler := httpecho.NewImportHandler(NewStartImport(cfg, runner, logger), cfg.PublicBaseURL, logger)
	statusHandler := httpecho.NewStatusHandler(app.NewGetImportStatus(runner))
	httpecho.RegisterRoutes(server, importHandler, statusHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return server
}

func requestLogger(logger logrus.FieldLogger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
