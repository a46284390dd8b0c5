package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends HTML mail through Amazon SES v2.
type SESMailer struct {
	client sesAPI
}

func NewSESMailer(ctx context.Context, region, accessKey, secretKey string) (*SESMailer, error) {
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("accessKey or secretKey is empty")
	}

	cred := credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithCredentialsProvider(cred), awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	return &SESMailer{client: sesv2.NewFromConfig(cfg)}, nil
}

func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML)},
				},
			},
		},
	}

	output, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return err
	}
	if output == nil || output.MessageId == nil {
		return fmt.Errorf("ses returned no message id")
	}

	return nil
}
