package email

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	sent []*ses.SendEmailInput
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.sent = append(f.sent, params)
	return &ses.SendEmailOutput{}, nil
}

func TestSendHireEmail(t *testing.T) {
	fake := &fakeSES{}
	svc := &EmailService{client: fake, fromEmail: "hello@nexus.test", fromName: "Nexus", baseURL: "https://nexus.test"}

	err := svc.SendHireEmail(context.Background(), HireEmail{
		ToEmail:   "ada@example.com",
		ToName:    "Ada",
		FromName:  "Grace",
		Title:     "Poster <series>",
		Message:   "Three posters",
		Status:    "pending",
		RequestID: "req-1",
	})
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)

	in := fake.sent[0]
	assert.Equal(t, "Nexus <hello@nexus.test>", aws.ToString(in.Source))
	assert.Equal(t, []string{"ada@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Grace wants to hire you: Poster <series>", aws.ToString(in.Message.Subject.Data))
	assert.Contains(t, aws.ToString(in.Message.Body.Html.Data), "Poster &lt;series&gt;")
	assert.Contains(t, aws.ToString(in.Message.Body.Text.Data), "https://nexus.test/hire-requests/req-1")
}

func TestRenderHireEmailStatusChange(t *testing.T) {
	subject, text, _ := renderHireEmail(HireEmail{
		ToName: "Grace", FromName: "Ada", Title: "Logo", Status: "accepted", RequestID: "r",
	}, "https://nexus.test")

	assert.Equal(t, `Your hire request "Logo" was accepted`, subject)
	assert.Contains(t, text, "Ada marked the request as accepted")
}

func TestSendHireEmailRequiresRecipient(t *testing.T) {
	svc := &EmailService{client: &fakeSES{}}
	assert.Error(t, svc.SendHireEmail(context.Background(), HireEmail{}))
}
