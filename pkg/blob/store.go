package blob

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Store is the image upload collaborator: bytes in, public URL out.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type S3Store struct {
	uploader *s3manager.Uploader
	bucket   string
}

func NewS3Store(sess *session.Session, bucket string) *S3Store {
	return &S3Store{uploader: s3manager.NewUploader(sess), bucket: bucket}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	res, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return res.Location, nil
}

// ImageKey namespaces uploads per author, so concurrent uploads of the
// same filename never collide.
func ImageKey(authorID int64, filename string, now time.Time) string {
	if filename == "" {
		filename = "image.jpg"
	}

	return fmt.Sprintf("%d/%d-%s", authorID, now.Unix(), filename)
}
