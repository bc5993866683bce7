package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{ETag: aws.String(`"etag"`)}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(string(data))),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(f.types[aws.ToString(in.Key)]),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store := NewS3StorageWithClient(client, "gallery", "https://cdn.example.com/", map[AssetType]string{AssetTypeImage: "images"})

	key, err := store.Save(ctx, AssetTypeImage, "image-abc-4x2.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "images/image-abc-4x2.png", key)
	assert.Equal(t, "image/png", client.types[key])
	assert.Equal(t, "https://cdn.example.com/images/image-abc-4x2.png", store.URL(key))

	rc, info, err := store.Open(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, int64(3), info.Size)
	assert.Equal(t, "image/png", info.ContentType)

	require.NoError(t, store.Delete(ctx, key))
	_, _, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestS3Storage_SaveErrors(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store := NewS3StorageWithClient(client, "gallery", "https://cdn.example.com", map[AssetType]string{AssetTypeImage: "images"})

	_, err := store.Save(ctx, AssetTypeImage, "a/b.png", "", strings.NewReader("x"))
	assert.Error(t, err)

	client.putErr = errors.New("boom")
	_, err = store.Save(ctx, AssetTypeImage, "b.png", "", strings.NewReader("x"))
	assert.ErrorContains(t, err, "boom")
}

func TestCleanURL(t *testing.T) {
	assert.Equal(t, "https://x.test/a%20b.png", CleanURL("https://x.test/a b.png"))
}
