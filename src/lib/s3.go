package lib

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var errS3NotConfigured = errors.New("s3 client is not configured")

var s3Client *s3.Client

var loadAWSConfig = awsconfig.LoadDefaultConfig

func AWSGetS3Client() *s3.Client {
	if s3Client != nil {
		return s3Client
	}
	cfg, err := loadAWSConfig(context.Background())
	if err != nil {
		log.Printf("[S3] Error loading AWS config: %s\n", err.Error())
		return nil
	}
	s3Client = s3.NewFromConfig(cfg)
	return s3Client
}

// NewS3Client replaces the S3 client with a custom instance.
func NewS3Client(c *s3.Client) {
	s3Client = c
}

func S3PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	client := AWSGetS3Client()
	if client == nil {
		return errS3NotConfigured
	}
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

func S3DeleteObject(ctx context.Context, bucket, key string) error {
	client := AWSGetS3Client()
	if client == nil {
		return errS3NotConfigured
	}
	_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}
