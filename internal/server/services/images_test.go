package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageConfig() *config.Config {
	return &config.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "images",
		PublicBaseURL:  "http://localhost:4000/",
	}
}

// stubS3 swaps the AWS seams for the duration of a test.
func stubS3(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPut := putObject
	origPre := newS3PresignClient
	origGet := presignGetObject
	origNow := imageNow
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
		newS3PresignClient = origPre
		presignGetObject = origGet
		imageNow = origNow
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		return &s3.Client{}
	}
	newS3PresignClient = func(*s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	imageNow = func() time.Time { return time.UnixMilli(1700000000123) }
}

func TestImageKey(t *testing.T) {
	at := time.UnixMilli(42)
	assert.Equal(t, "product_42.png", ImageKey("shirt.png", at))
	assert.Equal(t, "product_42", ImageKey("noext", at))
}

func TestUpload_Success(t *testing.T) {
	stubS3(t)

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(_ *s3.Client, _ context.Context, in *s3.PutObjectInput) error {
		got = in
		body, _ = io.ReadAll(in.Body)
		return nil
	}

	url, err := NewImageService(imageConfig()).Upload(context.Background(), "shirt.jpg", "image/jpeg", []byte("jpegdata"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4000/images/product_1700000000123.jpg", url)
	require.NotNil(t, got)
	assert.Equal(t, "images", *got.Bucket)
	assert.Equal(t, "product_1700000000123.jpg", *got.Key)
	assert.Equal(t, "image/jpeg", *got.ContentType)
	assert.Equal(t, int64(8), *got.ContentLength)
	assert.Equal(t, []byte("jpegdata"), body)
}

func TestUpload_Errors(t *testing.T) {
	stubS3(t)
	svc := NewImageService(imageConfig())

	_, err := svc.Upload(context.Background(), "a.png", "", nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	putObject = func(*s3.Client, context.Context, *s3.PutObjectInput) error { return errors.New("bucket gone") }
	_, err = svc.Upload(context.Background(), "a.png", "", []byte("x"))
	assert.ErrorContains(t, err, "bucket gone")

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}
	_, err = svc.Upload(context.Background(), "a.png", "", []byte("x"))
	assert.ErrorContains(t, err, "no creds")
}

func TestPresignedURL(t *testing.T) {
	stubS3(t)

	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, 15*time.Minute, po.Expires)
		assert.Equal(t, "images", *in.Bucket)
		return &v4.PresignedHTTPRequest{URL: "http://s3/" + *in.Key + "?sig", Method: http.MethodGet}, nil
	}

	url, err := NewImageService(imageConfig()).PresignedURL(context.Background(), "product_1.png")
	require.NoError(t, err)
	assert.Equal(t, "http://s3/product_1.png?sig", url)
}

func TestPresignedURL_Errors(t *testing.T) {
	stubS3(t)
	svc := NewImageService(imageConfig())

	for _, bad := range []string{"", "../secret", "a/b.png", ".."} {
		_, err := svc.PresignedURL(context.Background(), bad)
		assert.ErrorIs(t, err, common.ErrInvalidInput, "key %q", bad)
	}

	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign failed")
	}
	_, err := svc.PresignedURL(context.Background(), "product_1.png")
	assert.ErrorContains(t, err, "sign failed")
}
