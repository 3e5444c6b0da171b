package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blogicum/internal/config"
	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "golang.org/x/image/webp"
)

func newTestImageService(t *testing.T) (*ImageService, string) {
	t.Helper()
	root := t.TempDir()
	return NewImageService(&config.Config{
		MediaRoot:            root,
		PostImagesDir:        "post_images",
		ImageMaxUploadSizeMB: 1,
	}), root
}

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

func TestImageService_SavePostImage(t *testing.T) {
	svc, root := newTestImageService(t)

	rel, err := svc.SavePostImage(context.Background(), ImageUpload{Filename: "big.png", Content: pngBytes(t, 2560, 640)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "post_images/"))
	assert.True(t, strings.HasSuffix(rel, ".webp"))

	f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, PostImageMaxSize, cfg.Width)
	assert.Equal(t, 320, cfg.Height)
}

func TestImageService_SavePostImage_Rejects(t *testing.T) {
	svc, _ := newTestImageService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"not an image", []byte("plain text, definitely not a picture")},
		{"too large", append(pngBytes(t, 4, 4), make([]byte, 2*1024*1024)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SavePostImage(ctx, ImageUpload{Filename: "x", Content: tt.content})
			require.Error(t, err)
			assert.Contains(t, models.FieldErrors(err), "image")
		})
	}
}

// pngClaiming returns a tiny PNG whose header announces w x h pixels.
func pngClaiming(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngBytes(t, 1, 1)
	// signature (8) + IHDR length (4) + type (4), then width and height
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestImageService_SavePostImage_RejectsHugeDimensions(t *testing.T) {
	svc, root := newTestImageService(t)

	content := pngClaiming(t, 30000, 30000)
	require.Less(t, len(content), 1024)

	_, err := svc.SavePostImage(context.Background(), ImageUpload{Filename: "bomb.png", Content: content})
	require.Error(t, err)
	assert.Contains(t, models.FieldErrors(err)["image"], "30000x30000")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageService_Remove(t *testing.T) {
	svc, root := newTestImageService(t)
	ctx := context.Background()

	rel, err := svc.SavePostImage(ctx, ImageUpload{Content: pngBytes(t, 8, 8)})
	require.NoError(t, err)

	outside := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	svc.Remove(ctx, "post_images/../keep.txt")
	assert.FileExists(t, outside)

	svc.Remove(ctx, rel)
	assert.NoFileExists(t, filepath.Join(root, filepath.FromSlash(rel)))

	svc.Remove(ctx, rel)
	svc.Remove(ctx, "")
}

func TestResizeToFit_KeepsSmallImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Same(t, image.Image(src), resizeToFit(src, PostImageMaxSize, PostImageMaxSize))
}
