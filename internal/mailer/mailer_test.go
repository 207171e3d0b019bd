package mailer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	sesiface.SESAPI
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmailWithContext(_ aws.Context, in *ses.SendEmailInput, _ ...request.Option) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{}, f.err
}

func TestSESBuildsMessage(t *testing.T) {
	client := &fakeSES{}
	m := &SES{client: client, from: "noreply@yatube.local"}

	err := m.Send(context.Background(), Message{To: "auth@localhost.local", Subject: "Reset", Body: "link"})
	require.NoError(t, err)

	assert.Equal(t, "noreply@yatube.local", aws.StringValue(client.input.Source))
	assert.Equal(t, []string{"auth@localhost.local"}, aws.StringValueSlice(client.input.Destination.ToAddresses))
	assert.Equal(t, "Reset", aws.StringValue(client.input.Message.Subject.Data))
	assert.Equal(t, "link", aws.StringValue(client.input.Message.Body.Text.Data))
}

func TestSESWrapsFailure(t *testing.T) {
	cause := errors.New("throttled")
	m := &SES{client: &fakeSES{err: cause}, from: "noreply@yatube.local"}

	err := m.Send(context.Background(), Message{To: "a@b.c"})
	assert.ErrorIs(t, err, cause)
}

func TestConsoleLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	m := NewConsole(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, m.Send(context.Background(), Message{To: "a@b.c", Subject: "Reset"}))
	assert.Contains(t, buf.String(), "to=a@b.c")
	assert.Contains(t, buf.String(), "subject=Reset")
}

func TestOutboxRecords(t *testing.T) {
	var o Outbox
	require.NoError(t, o.Send(context.Background(), Message{To: "a@b.c"}))
	assert.Len(t, o.Sent(), 1)
}
