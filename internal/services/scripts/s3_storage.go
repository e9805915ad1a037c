package scripts

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
)

const exportURLTTL = 15 * time.Minute

// S3Exporter writes saved scripts to object storage as markdown and hands
// back short-lived presigned download links.
type S3Exporter struct {
	client *minio.Client
	bucket string

	ensureOnce sync.Once
	ensureErr  error
}

func NewS3Exporter(client *minio.Client, bucket string) *S3Exporter {
	return &S3Exporter{
		client: client,
		bucket: strings.TrimSpace(bucket),
	}
}

func (s *S3Exporter) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if s.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}

	s.ensureOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.ensureErr = err
			return
		}
		if exists {
			return
		}
		s.ensureErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	})

	if s.ensureErr != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", s.bucket, s.ensureErr)
	}

	return nil
}

func (s *S3Exporter) UploadScript(ctx context.Context, userID int64, script model.Script) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if userID <= 0 || script.ID <= 0 {
		return "", ErrInvalidInput
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return "", err
	}

	body := renderMarkdown(script)
	key := exportKey(userID, script.ID)

	_, err := s.client.PutObject(ctx, s.bucket, key, strings.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "text/markdown",
	})
	if err != nil {
		return "", fmt.Errorf("put script to s3: %w", err)
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, exportURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign script download: %w", err)
	}

	return presigned.String(), nil
}

func exportKey(userID, scriptID int64) string {
	return fmt.Sprintf("exports/%d/script-%d.md", userID, scriptID)
}

func renderMarkdown(script model.Script) string {
	var b strings.Builder
	b.WriteString("# " + script.Title + "\n\n")
	if script.Platform != "" {
		b.WriteString("Platform: " + script.Platform + "\n\n")
	}
	if script.Outline != "" {
		b.WriteString("## Outline\n\n" + script.Outline + "\n\n")
	}
	b.WriteString("## Script\n\n" + script.Body + "\n")
	return b.String()
}
