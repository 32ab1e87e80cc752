package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/cppla/yatube/config"
)

// S3Storage uploads media to a bucket. Objects are addressed as PublicURL/<path>.
type S3Storage struct {
	bucket    string
	publicURL string
	s3Client  *s3.S3
	uploader  *s3manager.Uploader
}

func NewS3Storage(cfg config.AppConfig) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET must be set for s3 storage")
	}
	awsCfg := aws.NewConfig().WithRegion(cfg.S3Region)
	if cfg.S3Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.S3Endpoint).WithS3ForcePathStyle(true)
	}
	if cfg.S3AccessKey != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""))
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}
	client := s3.New(sess)

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		publicURL = "https://" + cfg.S3Bucket + ".s3." + cfg.S3Region + ".amazonaws.com"
	}
	return &S3Storage{
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		s3Client:  client,
		uploader:  s3manager.NewUploaderWithClient(client),
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(data),
	})
	return err
}

func (s *S3Storage) Delete(ctx context.Context, path string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	return err
}

func (s *S3Storage) URL(path string) string {
	return s.publicURL + "/" + strings.TrimLeft(path, "/")
}
