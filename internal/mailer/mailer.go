// Package mailer sends outgoing email.
package mailer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/mdobak/go-xerrors"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Console writes messages to the log instead of delivering them.
type Console struct {
	logger *slog.Logger
}

func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger}
}

func (m *Console) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "Email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

// SES delivers messages through Amazon Simple Email Service.
type SES struct {
	client sesiface.SESAPI
	from   string
}

// NewSES builds a client from the default AWS credential chain.
func NewSES(from string) (*SES, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, xerrors.Newf("error creating AWS session: %w", err)
	}
	return &SES{client: ses.New(sess), from: from}, nil
}

func (m *SES) Send(ctx context.Context, msg Message) error {
	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(msg.To)},
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Text: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(msg.Body),
				},
			},
			Subject: &ses.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(msg.Subject),
			},
		},
		Source: aws.String(m.from),
	}

	if _, err := m.client.SendEmailWithContext(ctx, input); err != nil {
		return xerrors.Newf("error sending email via SES: %w", err)
	}
	return nil
}

// Outbox keeps sent messages in memory. Tests read them back with Sent.
type Outbox struct {
	mu   sync.Mutex
	sent []Message
}

func (o *Outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *Outbox) Sent() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.sent...)
}
