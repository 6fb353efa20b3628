package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Image upload errors.
var (
	ErrUnsupportedImage = errors.New("only JPEG, PNG, and WebP images are allowed")
	ErrImageTooLarge    = errors.New("image size must be less than 5MB")
	ErrUnknownFolder    = errors.New("unknown upload folder")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageFolders are the folders uploads may be stored in.
var ImageFolders = map[string]bool{
	"products":   true,
	"complaints": true,
}

// ImageStore keeps uploaded images on local disk and serves them under /uploads.
type ImageStore struct {
	dir      string
	baseURL  string
	maxBytes int64
	now      func() time.Time
}

// NewImageStore stores files under dir. Returned URLs are baseURL + "/uploads/...";
// an empty baseURL yields root-relative URLs.
func NewImageStore(dir, baseURL string, maxBytes int64) *ImageStore {
	return &ImageStore{dir: dir, baseURL: baseURL, maxBytes: maxBytes, now: time.Now}
}

// Dir is the root directory of stored images.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save validates and writes an image, returning its public URL.
func (s *ImageStore) Save(folder, contentType string, size int64, r io.Reader) (string, error) {
	if !ImageFolders[folder] {
		return "", ErrUnknownFolder
	}
	if size > s.maxBytes {
		return "", ErrImageTooLarge
	}
	if _, ok := imageExtensions[strings.ToLower(contentType)]; !ok {
		return "", ErrUnsupportedImage
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	sniffed := http.DetectContentType(data)
	ext, ok := imageExtensions[sniffed]
	if !ok {
		return "", ErrUnsupportedImage
	}

	name := fmt.Sprintf("%d_%s%s", s.now().UnixMilli(), uuid.NewString()[:8], ext)
	dir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := writeFile(filepath.Join(dir, name), data); err != nil {
		return "", err
	}

	return s.baseURL + "/uploads/" + folder + "/" + name, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return fmt.Errorf("write image: %w", err)
	}
	return f.Close()
}
