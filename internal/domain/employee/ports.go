package employee

import "context"

// RecordStore is the employee persistence the import writes to.
type RecordStore interface {
	FindByWorkEmail(ctx context.Context, email string) (id string, found bool, err error)
	Create(ctx context.Context, fields NewEmployee) (string, error)
}

type ContactDirectory interface {
	ContactEmail(ctx context.Context, userID string) (string, error)
}

type MailTemplate struct {
	Name    string
	Subject string
	Body    string
}

type TemplateStore interface {
	FindByName(ctx context.Context, name string) (MailTemplate, error)
}

type MailMessage struct {
	To      string
	Subject string
	Body    string
}

type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}
