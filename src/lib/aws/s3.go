package aws

import (
	"context"
	"ddtours/src/models"
	"errors"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ImageStore keeps trip images. The returned TripImage carries the public URL
// and the storage key used later for deletion.
type ImageStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*models.TripImage, error)
	Delete(ctx context.Context, key string) error
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3ImageStore struct {
	client  s3API
	bucket  string
	baseURL string
}

func NewS3ImageStore(client *s3.Client, bucket, baseURL string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket, baseURL: baseURL}
}

func (s *S3ImageStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*models.TripImage, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return nil, err
	}
	log.Printf("Added object '%s' to bucket '%s'", key, s.bucket)
	return &models.TripImage{URL: s.URL(key), ID: key}, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			// already gone
			return nil
		}
		log.Printf("[S3] Error deleting object %s: %s\n", key, err.Error())
		return err
	}
	return nil
}

func (s *S3ImageStore) URL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return "https://" + s.bucket + ".s3.amazonaws.com/" + key
}
