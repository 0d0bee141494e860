package lib

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

var awsConfig *aws.Config

func awsGetSdkConfig(ctx context.Context) (*aws.Config, error) {
	if awsConfig != nil {
		return awsConfig, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return nil, err
	}
	awsConfig = &cfg
	return awsConfig, nil
}

func AWSGetS3Client(ctx context.Context) *s3.Client {
	cfg, err := awsGetSdkConfig(ctx)
	if err != nil {
		log.Printf("Failed to initialize S3: %s\n", err.Error())
		return nil
	}
	return s3.NewFromConfig(*cfg)
}

func AWSGetSQSClient(ctx context.Context) *sqs.Client {
	cfg, err := awsGetSdkConfig(ctx)
	if err != nil {
		log.Printf("Failed to initialize SQS client: %s\n", err.Error())
		return nil
	}
	return sqs.NewFromConfig(*cfg)
}

func AWSGetSESClient(ctx context.Context) *ses.Client {
	cfg, err := awsGetSdkConfig(ctx)
	if err != nil {
		log.Printf("Failed to initialize SES client: %s\n", err.Error())
		return nil
	}
	return ses.NewFromConfig(*cfg)
}

// AWSGetSecretString reads a secret value from Secrets Manager.
func AWSGetSecretString(ctx context.Context, secretID string) (string, error) {
	cfg, err := awsGetSdkConfig(ctx)
	if err != nil {
		return "", err
	}
	client := secretsmanager.NewFromConfig(*cfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		log.Printf("[secrets] Error retrieving secret %s: %s\n", secretID, err.Error())
		return "", err
	}
	return aws.ToString(out.SecretString), nil
}
