package recorder

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/oszuidwest/zwfm-audioscan/internal/config"
	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// uploadTimeout bounds a single capture upload.
const uploadTimeout = 5 * time.Minute

// createS3Client creates an S3 client with the given configuration.
func createS3Client(cfg *config.S3Config) *s3.Client {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"",
	)

	options := []func(*s3.Options){
		func(o *s3.Options) {
			o.Credentials = creds
			o.Region = "auto"
		},
	}

	if cfg.Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.New(s3.Options{}, options...)
}

// UploadCapture uploads a finished capture file to the configured bucket.
func UploadCapture(cfg *config.S3Config, localPath string) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("S3 is not configured")
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return util.WrapError("stat capture file", err)
	}

	file, err := os.Open(localPath)
	if err != nil {
		return util.WrapError("open capture file", err)
	}
	defer util.SafeCloseFunc(file, "capture file")()

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	client := createS3Client(cfg)
	key := captureKey(cfg.Prefix, filepath.Base(localPath))

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("audio/wav"),
	})
	if err != nil {
		return util.WrapError("upload capture", err)
	}

	return nil
}

// TestS3Connection verifies bucket access by uploading and deleting a probe object.
func TestS3Connection(cfg *config.S3Config) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("S3 is not configured")
	}

	client := createS3Client(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30000*time.Millisecond)
	defer cancel()

	testKey := captureKey(cfg.Prefix, fmt.Sprintf("test-connection-%d.txt", time.Now().UnixNano()))
	testContent := []byte("audioscan connection test")

	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(testKey),
		Body:          bytes.NewReader(testContent),
		ContentLength: aws.Int64(int64(len(testContent))),
	})
	if err != nil {
		return fmt.Errorf("upload test file: %w", err)
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(testKey),
	})
	if err != nil {
		slog.Warn("failed to delete test file", "key", testKey, "error", err)
	}

	return nil
}

// captureKey builds the object key for an uploaded capture.
func captureKey(prefix, filename string) string {
	if prefix == "" {
		prefix = "captures"
	}
	return path.Join(prefix, filename)
}
