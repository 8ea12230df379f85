package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends email through Amazon SES v2.
type SESSender struct {
	client    sesAPI
	fromEmail string
}

// NewSESSender builds a sender from an AWS config. endpoint overrides the
// SES endpoint (local emulators); empty keeps the default.
func NewSESSender(cfg aws.Config, fromEmail, endpoint string) (*SESSender, error) {
	if fromEmail == "" {
		return nil, fmt.Errorf("ses sender: from address is required")
	}
	client := sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &SESSender{client: client, fromEmail: fromEmail}, nil
}

func (s *SESSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%q <%s>", "ProjectHub", s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	})
	return err
}

// EmailNotifier renders messages and hands them to a Sender. Without a
// sender it only logs what would have been sent and reports success.
type EmailNotifier struct {
	sender Sender
	log    *slog.Logger
}

func NewEmailNotifier(sender Sender, log *slog.Logger) *EmailNotifier {
	return &EmailNotifier{sender: sender, log: log}
}

func (n *EmailNotifier) Send(ctx context.Context, kind Kind, to Recipient, payload Payload) Result {
	if to.Email == "" {
		return failed("no email address")
	}
	msg, err := Render(kind, to, payload)
	if err != nil {
		return failed("%v", err)
	}
	if n.sender == nil {
		n.log.Info("email would be sent (service not configured)",
			"to", to.Email, "kind", kind, "subject", msg.Subject)
		return ok(ChannelEmail)
	}
	if err := n.sender.Send(ctx, to.Email, msg.Subject, msg.HTML); err != nil {
		n.log.Error("failed to send email", "to", to.Email, "kind", kind, "error", err)
		return failed("ses send failed: %v", err)
	}
	n.log.Debug("email sent", "to", to.Email, "kind", kind)
	return ok(ChannelEmail)
}
