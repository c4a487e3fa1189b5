package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/contre95/tubequeue/src/features/config"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/png"
)

// maxImageBytes bounds how much of a thumbnail response is read.
const maxImageBytes = 10 << 20

// Service downloads video thumbnails and turns them into small JPEG covers.
type Service struct {
	config *config.Manager
	client *http.Client
}

// NewService creates a new artwork service
func NewService(config *config.Manager) *Service {
	return &Service{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cover downloads the image at url and returns it as a JPEG that fits the configured size.
// It returns nil, nil when thumbnails are disabled or url is empty.
func (s *Service) Cover(ctx context.Context, url string) ([]byte, error) {
	tc := s.config.Get().Media.Thumbnail
	if !tc.Enabled || url == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail download failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail: %w", err)
	}

	cover, err := ToJPEG(data, tc.Size, tc.Quality)
	if err != nil {
		return nil, err
	}
	slog.Debug("Thumbnail prepared", "url", url, "original", len(data), "size", len(cover))
	return cover, nil
}

// ToJPEG decodes imgData, shrinks it to fit within maxSize pixels keeping the aspect ratio
// and encodes it as JPEG. A maxSize <= 0 keeps the original dimensions.
func ToJPEG(imgData []byte, maxSize, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if maxSize > 0 && (width > maxSize || height > maxSize) {
		if width > height {
			height = max(1, height*maxSize/width)
			width = maxSize
		} else {
			width = max(1, width*maxSize/height)
			height = maxSize
		}
		img = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	}

	if quality <= 0 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
