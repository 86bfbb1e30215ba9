package artifact

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/ontora-ai/pipelines/errors"
)

// defaultContentType is used when content type detection fails.
const defaultContentType = "application/octet-stream"

// s3API is the subset of the S3 client the store uses; tests substitute a fake.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store persists artifacts in an S3 bucket for hosted runs.
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Store creates an S3-backed store using the default AWS credential
// chain. The prefix scopes all artifact keys (e.g., "releases").
func NewS3Store(ctx context.Context, bucket, prefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New(errors.CodeInvalidInput, "bucket name cannot be empty")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to load AWS configuration")
	}

	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// newS3StoreWithClient is used by tests.
func newS3StoreWithClient(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Put implements Store.
func (s *S3Store) Put(ctx context.Context, name, sourcePath string) (string, error) {
	file, err := os.Open(sourcePath)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeStorage, "failed to open artifact for upload")
	}
	defer file.Close()

	contentType := defaultContentType
	if mt, detectErr := mimetype.DetectFile(sourcePath); detectErr == nil {
		contentType = mt.String()
	}

	key := s.key(name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeStorage, "failed to upload artifact",
			map[string]interface{}{"bucket": s.bucket, "key": key})
	}

	return "s3://" + s.bucket + "/" + key, nil
}

// Get implements Store.
func (s *S3Store) Get(ctx context.Context, name, destPath string) error {
	key := s.key(name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if stderrors.As(err, &noKey) {
			return errors.WrapWithContext(err, errors.CodeNotFound, "artifact not found",
				map[string]interface{}{"key": key})
		}
		return errors.WrapWithContext(err, errors.CodeStorage, "failed to download artifact",
			map[string]interface{}{"key": key})
	}
	defer out.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to create destination file")
	}
	if _, err := io.Copy(file, out.Body); err != nil {
		file.Close()
		return errors.Wrap(err, errors.CodeStorage, "failed to write artifact")
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to finalize artifact")
	}
	return nil
}

// Exists implements Store.
func (s *S3Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if stderrors.As(err, &notFound) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CodeStorage, "failed to check artifact existence")
	}
	return true, nil
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}
