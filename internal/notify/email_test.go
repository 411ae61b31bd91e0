package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

type mockSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.inputs = append(m.inputs, in)
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "buddy@example.com"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "buddy@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Wellness Buddy", sender.from.Name)
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{client: nil}
	err := sender.Send(context.Background(), EmailMessage{To: "friend@example.com", Subject: "Test"})
	assert.Error(t, err)
}

func TestBuildSendGridMail(t *testing.T) {
	m := buildSendGridMail(mail.NewEmail("Wellness Buddy", "buddy@example.com"), EmailMessage{
		To:      "friend@example.com",
		Subject: "Crisis Alert from Wellness Buddy",
		Body:    "line <1>\nline 2",
	})

	assert.Equal(t, "buddy@example.com", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "friend@example.com", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 2)
	assert.Equal(t, "line <1>\nline 2", m.Content[0].Value)
	assert.Equal(t, "<p>line &lt;1&gt;<br>line 2</p>", m.Content[1].Value)
	assert.Equal(t, []string{"wellness-alert"}, m.Categories)
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(logging.Discard())
	assert.NoError(t, sender.Send(context.Background(), EmailMessage{To: "friend@example.com"}))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "friend@example.com", sent[0].To)
	sent[0].To = "changed"
	assert.Equal(t, "friend@example.com", sender.Sent()[0].To)
}

func TestSESSender_Send(t *testing.T) {
	api := &mockSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "buddy@example.com"}, logging.Discard())
	require.NotNil(t, sender)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "friend@example.com",
		Subject: "Crisis Alert",
		Body:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)
	require.Len(t, api.inputs, 1)

	in := api.inputs[0]
	assert.Equal(t, `"Wellness Buddy" <buddy@example.com>`, aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"friend@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "plain", aws.ToString(in.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(in.Content.Simple.Body.Html.Data))
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&mockSES{err: errors.New("throttled")}, SESConfig{FromEmail: "buddy@example.com"}, logging.Discard())
	err := sender.Send(context.Background(), EmailMessage{To: "friend@example.com", Body: "x"})
	assert.ErrorContains(t, err, "notify: ses send: throttled")
}

func TestSESSender_RequiresRecipient(t *testing.T) {
	sender := NewSESSender(&mockSES{}, SESConfig{FromEmail: "buddy@example.com"}, logging.Discard())
	assert.Error(t, sender.Send(context.Background(), EmailMessage{Subject: "x"}))
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}

func TestNewSender_SelectsProvider(t *testing.T) {
	logger := logging.Discard()

	_, ok := NewSender(SenderConfig{Provider: "sendgrid", SendGridAPIKey: "key"}, nil, logger).(*SendGridSender)
	assert.True(t, ok, "expected sendgrid sender")

	_, ok = NewSender(SenderConfig{Provider: "SES"}, &mockSES{}, logger).(*SESSender)
	assert.True(t, ok, "expected ses sender")

	_, ok = NewSender(SenderConfig{Provider: "sendgrid"}, nil, logger).(*StubEmailSender)
	assert.True(t, ok, "expected stub fallback without api key")

	_, ok = NewSender(SenderConfig{Provider: "ses"}, nil, logger).(*StubEmailSender)
	assert.True(t, ok, "expected stub fallback without ses client")

	_, ok = NewSender(SenderConfig{}, nil, logger).(*StubEmailSender)
	assert.True(t, ok, "expected stub by default")
}
