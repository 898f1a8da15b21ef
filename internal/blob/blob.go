// Package blob wraps the MinIO object store. Uploads go through the internal
// endpoint; presigned download URLs are signed against the public endpoint so
// they resolve for clients outside the deployment network.
package blob

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/flyswatter/flyswatter/internal/config"
)

// Error wraps any failure talking to the object store. The executor treats
// blob errors as transient.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("blob %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Store uploads files and returns presigned download URLs for them.
type Store interface {
	Upload(ctx context.Context, localPath, folder string) (url string, err error)
	URLTTL() time.Duration
}

// MinioStore implements Store against a MinIO deployment.
type MinioStore struct {
	internal *minio.Client
	public   *minio.Client
	bucket   string
	urlTTL   time.Duration
}

// NewMinioStore builds the two MinIO clients from config. It does not touch
// the network; call EnsureBucket before first use.
func NewMinioStore(cfg config.BlobConfig) (*MinioStore, error) {
	creds := credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")

	internal, err := minio.New(cfg.InternalEndpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.InternalSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("internal minio client: %w", err)
	}

	public, err := minio.New(cfg.PublicEndpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.PublicSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("public minio client: %w", err)
	}

	return &MinioStore{
		internal: internal,
		public:   public,
		bucket:   cfg.Bucket,
		urlTTL:   cfg.URLTTL,
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.internal.BucketExists(ctx, s.bucket)
	if err != nil {
		return &Error{Op: "bucket-exists", Err: err}
	}
	if exists {
		return nil
	}
	if err := s.internal.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return &Error{Op: "make-bucket", Err: err}
	}
	return nil
}

// Upload stores the file at localPath under a fresh object name inside folder
// and returns a presigned GET URL valid for URLTTL.
func (s *MinioStore) Upload(ctx context.Context, localPath, folder string) (string, error) {
	objectName := ObjectName(folder, filepath.Ext(localPath))

	_, err := s.internal.FPutObject(ctx, s.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentTypeForExt(filepath.Ext(localPath)),
	})
	if err != nil {
		return "", &Error{Op: "put", Err: err}
	}

	presigned, err := s.public.PresignedGetObject(ctx, s.bucket, objectName, s.urlTTL, url.Values{})
	if err != nil {
		return "", &Error{Op: "presign", Err: err}
	}
	return presigned.String(), nil
}

func (s *MinioStore) URLTTL() time.Duration {
	return s.urlTTL
}

// ObjectName builds "folder/<uuid-hex><ext>". The random name keeps uploads
// from colliding even when a job is retried after a partially recorded
// attempt.
func ObjectName(folder, ext string) string {
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
