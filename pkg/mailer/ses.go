package mailer

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESMailer delivers notification emails through AWS SES.
type SESMailer struct {
	client *ses.Client
	from   string
}

// NewSESMailer creates an SES-backed mailer for the given region and sender address.
func NewSESMailer(ctx context.Context, region, from string) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), from: from}, nil
}

// Send delivers a single plain-text email.
func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	charset := "UTF-8"
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: &m.from,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: &subject, Charset: &charset},
			Body: &types.Body{
				Text: &types.Content{Data: &body, Charset: &charset},
			},
		},
	})
	return err
}
