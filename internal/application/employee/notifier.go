package employee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"text/template"

	gerrors "github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

const DefaultNotifyTemplate = "employee_import_done"

// DefaultImportDoneTemplate is seeded on migrate when no template with its name exists.
var DefaultImportDoneTemplate = domain.MailTemplate{
	Name:    DefaultNotifyTemplate,
	Subject: "Employee import {{.ImportID}} finished",
	Body: `Your employee import {{.ImportID}} has finished processing {{.TotalBatches}} batch(es).
{{with .Totals}}
Created: {{.Created}}
Skipped (already existed): {{.SkippedExisting}}
Skipped (duplicate in file): {{.SkippedInFile}}
Failed batches: {{.FailedBatches}}
{{end}}`,
}

type groupLister interface {
	ListByGroup(ctx context.Context, groupID string) ([]task.Task, error)
}

type NotifierConfig struct {
	TemplateName string
	AdminUserID  string
}

// NotificationData is what notification templates render against.
type NotificationData struct {
	ImportID     string
	RequestedBy  string
	Recipient    string
	TotalBatches int
	Totals       *domain.ImportTotals
}

// CompletionNotifier mails the requester once every batch of an import is terminal.
// It never fails the task: every problem is logged and the notice is dropped.
type CompletionNotifier struct {
	templates domain.TemplateStore
	contacts  domain.ContactDirectory
	sender    domain.MailSender
	tasks     groupLister
	cfg       NotifierConfig
	logger    logrus.FieldLogger
}

func NewCompletionNotifier(
	templates domain.TemplateStore,
	contacts domain.ContactDirectory,
	sender domain.MailSender,
	tasks groupLister,
	cfg NotifierConfig,
	logger logrus.FieldLogger,
) *CompletionNotifier {
	if strings.TrimSpace(cfg.TemplateName) == "" {
		cfg.TemplateName = DefaultNotifyTemplate
	}
	return &CompletionNotifier{
		templates: templates,
		contacts:  contacts,
		sender:    sender,
		tasks:     tasks,
		cfg:       cfg,
		logger:    logger,
	}
}

func (n *CompletionNotifier) Handle(ctx context.Context, t task.Task) ([]byte, error) {
	entry := n.logger.WithFields(logrus.Fields{
		"import_id": t.DependsOn,
		"task_id":   t.ID,
	})

	var payload domain.NotifyPayload
	if err := json.Unmarshal(t.Payload, &payload); err != nil {
		entry.WithError(err).Warn("decode notify payload")
		return nil, nil
	}

	tmpl, err := n.templates.FindByName(ctx, n.cfg.TemplateName)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			entry.WithField("template", n.cfg.TemplateName).Debug("notify template missing, nothing to send")
			return nil, nil
		}
		entry.WithError(err).Warn("load notify template")
		return nil, nil
	}

	recipient := n.recipient(ctx, payload.Context.RequestedBy, entry)
	if recipient == "" {
		entry.Warn("no recipient with an email address for import notice")
		return nil, nil
	}

	msg, err := renderNotification(tmpl, NotificationData{
		ImportID:     t.DependsOn,
		RequestedBy:  payload.Context.RequestedBy,
		Recipient:    recipient,
		TotalBatches: payload.Context.TotalBatches,
		Totals:       n.totals(ctx, t.DependsOn, entry),
	})
	if err != nil {
		entry.WithError(err).Warn("render import notice")
		return nil, nil
	}
	msg.To = recipient

	if err := n.sender.Send(ctx, msg); err != nil {
		entry.WithError(err).WithField("recipient", recipient).Warn("send import notice")
		return nil, nil
	}

	entry.WithField("recipient", recipient).Info("employee import notice sent")
	return nil, nil
}

// recipient prefers the requester and falls back to the configured admin.
func (n *CompletionNotifier) recipient(ctx context.Context, requestedBy string, entry logrus.FieldLogger) string {
	for _, userID := range []string{requestedBy, n.cfg.AdminUserID} {
		if strings.TrimSpace(userID) == "" {
			continue
		}

		email, err := n.contacts.ContactEmail(ctx, userID)
		if err != nil {
			entry.WithError(err).WithField("user_id", userID).Debug("resolve contact email")
			continue
		}
		if email = strings.TrimSpace(email); email != "" {
			return email
		}
	}
	return ""
}

func (n *CompletionNotifier) totals(ctx context.Context, importID string, entry logrus.FieldLogger) *domain.ImportTotals {
	if n.tasks == nil || importID == "" {
		return nil
	}

	tasks, err := n.tasks.ListByGroup(ctx, importID)
	if err != nil {
		entry.WithError(err).Debug("list import tasks for totals")
		return nil
	}

	totals := SummarizeImport(tasks)
	return &totals
}

func renderNotification(tmpl domain.MailTemplate, data NotificationData) (domain.MailMessage, error) {
	subject, err := renderText(tmpl.Name+".subject", tmpl.Subject, data)
	if err != nil {
		return domain.MailMessage{}, err
	}
	body, err := renderText(tmpl.Name+".body", tmpl.Body, data)
	if err != nil {
		return domain.MailMessage{}, err
	}
	return domain.MailMessage{Subject: strings.TrimSpace(subject), Body: body}, nil
}

func renderText(name, text string, data NotificationData) (string, error) {
	parsed, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", gerrors.Wrapf(err, "parse template %s", name)
	}

	var buf bytes.Buffer
	if err := parsed.Execute(&buf, data); err != nil {
		return "", gerrors.Wrapf(err, "execute template %s", name)
	}
	return buf.String(), nil
}
