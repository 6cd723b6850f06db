package s3

import (
	"bytes"
	"fmt"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"golang.org/x/net/context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

type ItfS3 interface {
	UploadBytes(ctx context.Context, key string, contentType string, data []byte, metadata map[string]string) (string, error)
}

type Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// Endpoint points the client at an S3 compatible store such as MinIO.
	Endpoint string
}

type s3Client struct {
	session    *session.Session
	bucketName string
}

func New(opts Options) (ItfS3, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket name is required")
	}

	sess, err := newSession(opts)
	if err != nil {
		return nil, err
	}

	return &s3Client{
		session:    sess,
		bucketName: opts.Bucket,
	}, nil
}

func (s *s3Client) UploadBytes(ctx context.Context, key string, contentType string, data []byte, metadata map[string]string) (string, error) {
	uploader := s3manager.NewUploader(s.session)

	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if len(metadata) > 0 {
		input.Metadata = aws.StringMap(metadata)
	}

	uploadOutput, err := uploader.UploadWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return uploadOutput.Location, nil
}

func newSession(opts Options) (*session.Session, error) {
	cfg := &aws.Config{
		Region: aws.String(opts.Region),
	}
	if opts.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKeyID, opts.SecretAccessKey, "")
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	return sess, nil
}
