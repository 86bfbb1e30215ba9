package artifact

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontora-ai/pipelines/errors"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	source := writeTempFile(t, "rust-ontora-ai-v1.2.3.tar.gz", "archive-bytes")
	ctx := context.Background()

	location, err := store.Put(ctx, "rust-ontora-ai-v1.2.3.tar.gz", source)
	require.NoError(t, err)
	assert.NotEmpty(t, location)

	exists, err := store.Exists(ctx, "rust-ontora-ai-v1.2.3.tar.gz")
	require.NoError(t, err)
	assert.True(t, exists)

	dest := filepath.Join(t.TempDir(), "downloaded.tar.gz")
	require.NoError(t, store.Get(ctx, "rust-ontora-ai-v1.2.3.tar.gz", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(data))
}

func TestLocalStoreGetMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	err = store.Get(ctx, "absent.tar.gz", filepath.Join(t.TempDir(), "out"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	exists, err := store.Exists(ctx, "absent.tar.gz")
	require.NoError(t, err)
	assert.False(t, exists)
}

type fakeS3 struct {
	objects map[string][]byte
	puts    []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	f.puts = append(f.puts, *in.Key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	fake := newFakeS3()
	store := newS3StoreWithClient(fake, "ontora-artifacts", "releases")

	source := writeTempFile(t, "go-ontora-ai-v2.0.0.tar.gz", "s3-archive")
	ctx := context.Background()

	location, err := store.Put(ctx, "go-ontora-ai-v2.0.0.tar.gz", source)
	require.NoError(t, err)
	assert.Equal(t, "s3://ontora-artifacts/releases/go-ontora-ai-v2.0.0.tar.gz", location)

	exists, err := store.Exists(ctx, "go-ontora-ai-v2.0.0.tar.gz")
	require.NoError(t, err)
	assert.True(t, exists)

	dest := filepath.Join(t.TempDir(), "out.tar.gz")
	require.NoError(t, store.Get(ctx, "go-ontora-ai-v2.0.0.tar.gz", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "s3-archive", string(data))
}

func TestS3StoreMissingObject(t *testing.T) {
	store := newS3StoreWithClient(newFakeS3(), "ontora-artifacts", "")

	ctx := context.Background()
	exists, err := store.Exists(ctx, "missing.tar.gz")
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.Get(ctx, "missing.tar.gz", filepath.Join(t.TempDir(), "out"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}
