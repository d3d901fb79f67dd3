package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
)

// ImagePathPrefix is the HTTP path under which stored images are served.
const ImagePathPrefix = "/images/"

const presignTTL = 15 * time.Minute

// Seams for tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	imageNow = time.Now
)

// ImageService stores product images in an S3-compatible bucket.
type ImageService struct {
	config *config.Config
}

func NewImageService(cfg *config.Config) *ImageService {
	return &ImageService{config: cfg}
}

// ImageKey names the object for an uploaded file: product_<unix millis><ext>.
func ImageKey(filename string, at time.Time) string {
	return fmt.Sprintf("product_%d%s", at.UnixMilli(), filepath.Ext(filename))
}

func (s *ImageService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Upload stores data and returns the public URL the image is served from.
func (s *ImageService) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", common.ErrInvalidInput
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating s3 client: %w", err)
	}

	key := ImageKey(filename, imageNow())
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if err := putObject(client, ctx, in); err != nil {
		return "", fmt.Errorf("error uploading image: %w", err)
	}

	return strings.TrimRight(s.config.PublicBaseURL, "/") + ImagePathPrefix + key, nil
}

// PresignedURL returns a short-lived GET URL for the image stored under key.
// Keys containing path separators are rejected.
func (s *ImageService) PresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" || key != path.Base(key) || strings.Contains(key, "..") {
		return "", common.ErrInvalidInput
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating s3 client: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("error presigning image: %w", err)
	}

	return req.URL, nil
}
