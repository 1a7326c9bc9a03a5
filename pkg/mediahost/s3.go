package mediahost

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// S3Host is the alternate backend: uploads land in an S3 bucket instead of
// the signed HTTP host. Credentials come from the ambient AWS config, so the
// issued tuple is not used here.
type S3Host struct {
	uploader *s3manager.Uploader
	bucket   string
	region   string
}

func NewS3Host(region, bucket string) *S3Host {
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(region),
	}))
	return &S3Host{
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
		region:   region,
	}
}

func (h *S3Host) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(req.FileName))
	}

	key := path.Join(strings.TrimPrefix(req.Folder, "/"), uuid.New().String()+"-"+req.FileName)

	_, err := h.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        newProgressReader(req.Body, req.Size, req.OnProgress),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrAborted
		}
		return nil, fmt.Errorf("s3 upload: %w", ErrServer)
	}

	if req.OnProgress != nil {
		req.OnProgress(100)
	}
	return &UploadResult{
		FilePath: "/" + key,
		URL:      fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.bucket, h.region, key),
	}, nil
}
