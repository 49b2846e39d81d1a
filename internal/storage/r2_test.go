package storage

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activityhub/internal/model"
)

type fakeObjectAPI struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	putErr  error
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestPhotoStore_AddPhoto_FitsLargeImages(t *testing.T) {
	api := &fakeObjectAPI{}
	store := NewPhotoStore(api, "bucket", "https://cdn.example.com/")
	data := pngBytes(t, 2160, 1080)

	res, err := store.AddPhoto(context.Background(), model.PhotoUpload{
		File:        bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: model.ContentTypePNG,
	})

	require.NoError(t, err)
	require.Len(t, api.puts, 1)
	assert.True(t, strings.HasPrefix(res.PublicID, model.PhotoFolder+"/"))
	assert.Equal(t, "https://cdn.example.com/"+res.PublicID, res.URL)
	assert.Equal(t, res.PublicID, *api.puts[0].Key)
	assert.Equal(t, model.ContentTypeJPEG, *api.puts[0].ContentType)

	img, err := imaging.Decode(bytes.NewReader(api.bodies[0]))
	require.NoError(t, err)
	assert.Equal(t, 1080, img.Bounds().Dx())
	assert.Equal(t, 540, img.Bounds().Dy())
}

func TestPhotoStore_AddPhoto_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		upload  model.PhotoUpload
		wantErr error
	}{
		{
			name:    "declared size too large",
			upload:  model.PhotoUpload{File: strings.NewReader(""), Size: model.MaxPhotoSizeBytes + 1, ContentType: model.ContentTypePNG},
			wantErr: model.ErrFileTooLarge,
		},
		{
			name:    "not an image",
			upload:  model.PhotoUpload{File: strings.NewReader("hello"), Size: 5, ContentType: "text/plain"},
			wantErr: model.ErrInvalidImageType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeObjectAPI{}
			store := NewPhotoStore(api, "bucket", "https://cdn.example.com")

			_, err := store.AddPhoto(context.Background(), tt.upload)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, api.puts)
		})
	}
}

func TestPhotoStore_AddPhoto_UploadErrorPropagates(t *testing.T) {
	errDown := errors.New("r2 unavailable")
	store := NewPhotoStore(&fakeObjectAPI{putErr: errDown}, "bucket", "https://cdn.example.com")
	data := pngBytes(t, 10, 10)

	_, err := store.AddPhoto(context.Background(), model.PhotoUpload{File: bytes.NewReader(data), Size: int64(len(data))})

	assert.ErrorIs(t, err, errDown)
}

func TestPhotoStore_DeletePhoto(t *testing.T) {
	api := &fakeObjectAPI{}
	store := NewPhotoStore(api, "bucket", "https://cdn.example.com")

	require.NoError(t, store.DeletePhoto(context.Background(), "photos/abc.jpg"))
	assert.Equal(t, []string{"photos/abc.jpg"}, api.deletes)

	assert.Error(t, store.DeletePhoto(context.Background(), ""))
}
