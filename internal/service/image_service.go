package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"blogicum/internal/config"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 5
	PostImageMaxSize            = 1280
	WebPQuality                 = 80
	// MaxImagePixels bounds width*height of an upload before it is decoded.
	MaxImagePixels = 40_000_000
)

const invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// ImageUpload is an image file submitted with a post form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ImageStore persists post images and returns their media-relative path.
type ImageStore interface {
	SavePostImage(ctx context.Context, in ImageUpload) (string, error)
	Remove(ctx context.Context, relPath string)
}

// ImageService stores post images as WebP files under the media root.
type ImageService struct {
	mediaRoot          string
	postImagesDir      string
	maxUploadSizeBytes int64
}

func NewImageService(cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		mediaRoot:          cfg.MediaRoot,
		postImagesDir:      cfg.PostImagesDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

func imageError(msg string) error {
	return models.NewFormError(map[string]string{"image": msg})
}

// SavePostImage validates, downsizes and re-encodes the upload. Problems with
// the file itself are reported as form errors on the image field.
func (s *ImageService) SavePostImage(ctx context.Context, in ImageUpload) (string, error) {
	if len(in.Content) == 0 {
		return "", imageError("The submitted file is empty.")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", imageError(fmt.Sprintf("File too large (max %dMB).", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(in.Content)) {
		return "", imageError(invalidImageMessage)
	}

	// the header alone tells how much memory decoding would take
	header, _, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return "", imageError(invalidImageMessage)
	}
	if header.Width <= 0 || header.Height <= 0 || int64(header.Width)*int64(header.Height) > MaxImagePixels {
		return "", imageError(fmt.Sprintf("Image is too large (%dx%d); at most %d megapixels are allowed.",
			header.Width, header.Height, MaxImagePixels/1_000_000))
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return "", imageError(invalidImageMessage)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resizeToFit(decoded, PostImageMaxSize, PostImageMaxSize), &webp.Options{Quality: WebPQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	rel := filepath.ToSlash(filepath.Join(s.postImagesDir, uuid.NewString()+".webp"))
	if err := writeBytesToFile(filepath.Join(s.mediaRoot, filepath.FromSlash(rel)), buf.Bytes()); err != nil {
		return "", models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "post image stored",
		slog.String("path", rel),
		slog.String("original_filename", in.Filename),
		slog.Int("bytes", buf.Len()),
	)
	return rel, nil
}

// Remove deletes a stored post image. Paths outside the post images
// directory are ignored.
func (s *ImageService) Remove(ctx context.Context, relPath string) {
	if relPath == "" {
		return
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.Dir(clean) != filepath.Clean(s.postImagesDir) {
		middleware.Logger.WarnContext(ctx, "refusing to remove image outside post images dir", slog.String("path", relPath))
		return
	}
	if err := os.Remove(filepath.Join(s.mediaRoot, clean)); err != nil && !os.IsNotExist(err) {
		middleware.Logger.WarnContext(ctx, "failed to remove post image", slog.String("path", relPath), slog.String("error", err.Error()))
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if scaleH := float64(maxHeight) / float64(h); scaleH < scale {
		scale = scaleH
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
