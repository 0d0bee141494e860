package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESSender struct {
	client sesAPI
}

func NewSESSender(client *ses.Client) *SESSender {
	return &SESSender{client: client}
}

func (s *SESSender) SendHTML(ctx context.Context, from string, to []string, subject, html string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: to},
		Source:      aws.String(from),
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
			},
		},
	}
	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		log.Printf("Error sending email: %s\n", err.Error())
		return err
	}
	log.Printf("Sent email with id: %s\n", aws.ToString(out.MessageId))
	return nil
}
