package media_storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/config"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

const ProviderS3 = "s3"

// S3Adapter stores assets in any S3-compatible bucket (AWS S3, Cloudflare R2, MinIO).
// Objects are served from BaseURL; there are no derived renditions.
type S3Adapter struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	baseURL  string
}

var _ service.Uploader = (*S3Adapter)(nil)

func NewS3Adapter(cfg config.Config, log logger.Logger) (*S3Adapter, error) {
	c := cfg.S3
	if c.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket has not config")
	}

	region := c.Region
	if region == "" {
		region = "auto"
	}
	awsConfig := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(c.AccessKey, c.SecretKey, ""),
	}
	if c.Endpoint != "" {
		awsConfig.Endpoint = aws.String(c.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 session: %w", err)
	}

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, region)
	}

	log.Info("connect S3 storage successfully.")
	return &S3Adapter{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   c.Bucket,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *S3Adapter) Provider() string { return ProviderS3 }

func (s *S3Adapter) Upload(ctx context.Context, file io.Reader, path string, contentType string) (*service.UploadResult, error) {
	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        file,
		ContentType: aws.String(contentType),
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload to s3: %w", err)
	}
	return &service.UploadResult{URL: s.publicURL(path), Key: path}, nil
}

func (s *S3Adapter) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}

func (s *S3Adapter) publicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
