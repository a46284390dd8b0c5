package mail

import (
	"context"
	"fmt"

	"github.com/monocle-dev/tracker/internal/config"
	"github.com/sirupsen/logrus"
)

type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers a single message. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the delivery backend named by cfg.Provider.
func New(ctx context.Context, cfg config.MailConfig, log logrus.FieldLogger) (Mailer, error) {
	switch cfg.Provider {
	case "", "log":
		return NewLogMailer(log), nil
	case "resend":
		return NewResendMailer(cfg.ResendAPIKey), nil
	case "ses":
		return NewSESMailer(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
	}
}

// LogMailer writes messages to the log instead of sending them. Used for
// local development.
type LogMailer struct {
	log logrus.FieldLogger
}

func NewLogMailer(log logrus.FieldLogger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Mail delivery disabled, message logged")
	m.log.Debug(msg.HTML)
	return nil
}
