package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPhotoName(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		upload  string
		want    string
		wantErr bool
	}{
		{name: "jpg", userID: 7, upload: "me.jpg", want: "user_7.jpg"},
		{name: "upper png", userID: 7, upload: "ME.PNG", want: "user_7.png"},
		{name: "no extension", userID: 3, upload: "blob", want: "user_3.jpg"},
		{name: "rejected", userID: 3, upload: "script.exe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PhotoName(tt.userID, tt.upload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "user_1.jpg", strings.NewReader("photo"), 5, "image/jpeg"))

	data, err := os.ReadFile(filepath.Join(dir, "user_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "photo", string(data))
	assert.Equal(t, "/uploads/user_1.jpg", store.URL("user_1.jpg"))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1.jpg"}, names)

	require.NoError(t, store.Delete(ctx, "user_1.jpg"))
	require.NoError(t, store.Delete(ctx, "user_1.jpg"), "deleting a missing asset is not an error")

	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_RejectsPathNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, name := range []string{"", "../evil.jpg", "a/b.jpg", ".hidden"} {
		err := store.Save(context.Background(), name, strings.NewReader("x"), 1, "image/jpeg")
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func (m *mockS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func TestS3Store_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	store := newS3Store(client, S3Config{Bucket: "hub", Region: "eu-west-1"})

	var body []byte
	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "photos/user_7.png" && aws.ToString(in.ContentType) == "image/png"
	})).Run(func(args mock.Arguments) {
		body, _ = io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
	}).Return(nil)
	client.On("DeleteObject", ctx, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Bucket) == "hub" && aws.ToString(in.Key) == "photos/user_7.png"
	})).Return(nil)

	require.NoError(t, store.Save(ctx, "user_7.png", strings.NewReader("png"), 3, "image/png"))
	require.NoError(t, store.Delete(ctx, "user_7.png"))
	client.AssertExpectations(t)
	assert.Equal(t, "png", string(body))

	assert.Equal(t, "https://hub.s3.eu-west-1.amazonaws.com/photos/user_7.png", store.URL("user_7.png"))
}

func TestS3Store_ListPages(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	store := newS3Store(client, S3Config{Bucket: "hub", Endpoint: "http://minio:9000"})

	client.On("ListObjectsV2", ctx, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("photos/user_1.jpg")}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("next"),
	}, nil)
	client.On("ListObjectsV2", ctx, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "next"
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("photos/user_2.png")}},
		IsTruncated: aws.Bool(false),
	}, nil)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1.jpg", "user_2.png"}, names)
	assert.Equal(t, "http://minio:9000/hub/photos/user_1.jpg", store.URL("user_1.jpg"))
}
