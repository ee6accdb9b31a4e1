package bootstrap

import (
	"github.com/sirupsen/logrus"

	app "github.com/mohammadpnp/employee-import/internal/application/employee"
	"github.com/mohammadpnp/employee-import/internal/config"
	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/mail"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/metrics"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/repository"
)

// ImportComponents are the stores and transports the import task handlers run against.
type ImportComponents struct {
	Employees domain.RecordStore
	Templates domain.TemplateStore
	Contacts  domain.ContactDirectory
	Sender    domain.MailSender
	Metrics   *metrics.ImportMetrics
	Notifier  app.NotifierConfig
}

func NewImportComponents(cfg *config.Config, db *Database, importMetrics *metrics.ImportMetrics, logger logrus.FieldLogger) ImportComponents {
	return ImportComponents{
		Employees: repository.NewEmployeeRepository(db.Pool),
		Templates: repository.NewMailTemplateRepository(db.Gorm),
		Contacts:  repository.NewUserDirectoryRepository(db.Gorm),
		Sender: mail.NewSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SMTP.Timeout,
		}, logger),
		Metrics: importMetrics,
		Notifier: app.NotifierConfig{
			TemplateName: cfg.Import.NotifyTemplate,
			AdminUserID:  cfg.Import.AdminUserID,
		},
	}
}

// RegisterImportHandlers fills handlers for the employee task kinds. tasks is
// the runner the notifier reads batch results from.
func RegisterImportHandlers(handlers task.Handlers, tasks task.Runner, c ImportComponents, logger logrus.FieldLogger) {
	handlers[domain.KindCreateBatch] = app.NewBatchWorker(c.Employees, c.Metrics, logger.WithField("component", "batch_worker"))
	handlers[domain.KindNotifyDone] = app.NewCompletionNotifier(
		c.Templates,
		c.Contacts,
		c.Sender,
		tasks,
		c.Notifier,
		logger.WithField("component", "notifier"),
	)
}

// NewStartImport builds the start-import use case on top of runner.
func NewStartImport(cfg *config.Config, runner task.Runner, logger logrus.FieldLogger) app.StartEmployeeImport {
	scheduler := app.NewImportScheduler(runner, logger.WithField("component", "scheduler"))
	return app.NewStartEmployeeImport(app.NewRowDecoder(), scheduler, app.WithDefaultChunkSize(cfg.Import.ChunkSize))
}
