package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/yatube/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDiskStorageSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewDiskStorage(t.TempDir(), "/media/")

	require.NoError(t, s.Save(ctx, "posts/a.png", []byte("data"), "image/png"))
	got, err := os.ReadFile(s.FullPath("posts/a.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
	assert.Equal(t, "/media/posts/a.png", s.URL("posts/a.png"))

	require.NoError(t, s.Delete(ctx, "posts/a.png"))
	_, err = os.Stat(s.FullPath("posts/a.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "posts/a.png"))
}

func TestPrepareImageDownscales(t *testing.T) {
	img, err := PrepareImage(pngBytes(t, 400, 100), 200)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.Path, "posts/"))
	assert.True(t, strings.HasSuffix(img.Path, ".png"))
	assert.Equal(t, "image/png", img.ContentType)

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())
}

func TestPrepareImageKeepsSmallImages(t *testing.T) {
	img, err := PrepareImage(pngBytes(t, 30, 20), 200)
	require.NoError(t, err)
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, 30, decoded.Bounds().Dx())
}

func TestPrepareImageRejectsGarbage(t *testing.T) {
	_, err := PrepareImage([]byte("GIF89a-but-not-really"), 200)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(config.AppConfig{StorageType: "disk", MediaRoot: t.TempDir(), MediaURL: "/media/"})
	require.NoError(t, err)
	assert.IsType(t, &DiskStorage{}, s)

	_, err = New(config.AppConfig{StorageType: "s3"})
	assert.Error(t, err)

	_, err = New(config.AppConfig{StorageType: "ftp"})
	assert.Error(t, err)

	s3s, err := New(config.AppConfig{StorageType: "s3", S3Bucket: "media", S3Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/posts/x.jpg", s3s.URL("posts/x.jpg"))
}
