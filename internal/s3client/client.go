package s3client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awshttp "github.com/aws/smithy-go/transport/http"

	appConfig "s3backup/config"
)

// BucketStatus classifies the pre-flight bucket check.
type BucketStatus int

const (
	BucketOK BucketStatus = iota
	BucketNotFound
	BucketForbidden
	BucketUnreachable
)

func (s BucketStatus) String() string {
	switch s {
	case BucketOK:
		return "ok"
	case BucketNotFound:
		return "not_found"
	case BucketForbidden:
		return "forbidden"
	default:
		return "unreachable"
	}
}

type Client struct {
	s3Client *s3.Client
	uploader *manager.Uploader
	config   *appConfig.Config
}

func New(cfg *appConfig.Config) (*Client, error) {
	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client: s3Client,
		uploader: manager.NewUploader(s3Client),
		config:   cfg,
	}, nil
}

// CheckBucket reports whether bucket exists and is accessible. A response
// with any other HTTP status than 403/404 counts as reachable; an error
// without an HTTP response is a connectivity failure.
func (c *Client) CheckBucket(ctx context.Context, bucket string) (BucketStatus, error) {
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return BucketOK, nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case 403:
			return BucketForbidden, err
		case 404:
			return BucketNotFound, err
		}
		return BucketOK, nil
	}

	return BucketUnreachable, err
}

// Upload sends one local file to bucket under key.
func (c *Client) Upload(ctx context.Context, localPath, bucket, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer file.Close()

	contentType := c.detectContentType(localPath)

	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})

	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// ObjectKey builds the destination key for a backed-up file. Year and month
// come from the file's own modification time; the month is not zero-padded.
func ObjectKey(site, technology, hostname string, modTime time.Time, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%d/%d/%s",
		site, technology, hostname, modTime.Year(), int(modTime.Month()), filename)
}

func (c *Client) detectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	contentTypes := map[string]string{
		".txt":  "text/plain",
		".log":  "text/plain",
		".html": "text/html",
		".css":  "text/css",
		".js":   "application/javascript",
		".json": "application/json",
		".xml":  "application/xml",
		".pdf":  "application/pdf",
		".zip":  "application/zip",
		".tar":  "application/x-tar",
		".gz":   "application/gzip",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".svg":  "image/svg+xml",
		".mp3":  "audio/mpeg",
		".mp4":  "video/mp4",
	}

	if contentType, exists := contentTypes[ext]; exists {
		return contentType
	}

	return "application/octet-stream"
}
