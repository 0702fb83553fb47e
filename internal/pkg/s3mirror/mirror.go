// Package s3mirror copies freshly generated images from the provider's
// short-lived CDN URLs into our own bucket so they outlive the upstream
// expiry. Mirroring is best-effort and never blocks a generation request.
package s3mirror

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"

	"github.com/pixeldodo/pixeldodo/app/models"
)

const (
	downloadTimeout  = 2 * time.Minute
	maxDownloadBytes = 32 << 20

	thumbnailWidth  = 512
	thumbnailHeight = 512
)

// MirrorStore persists the mirror location of a generated image.
type MirrorStore interface {
	SetMirrorURL(uuid string, mirrorURL string) error
}

// Mirror downloads generated images and re-uploads them to S3 together
// with a thumbnail variant.
type Mirror struct {
	client     *Client
	config     *Config
	store      MirrorStore
	httpClient *http.Client
}

// NewMirror creates a mirror service. Returns nil (and no error) when the
// mirror is disabled via configuration.
func NewMirror(store MirrorStore) (*Mirror, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsEnabled() {
		return nil, nil
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Mirror{
		client: client,
		config: cfg,
		store:  store,
		httpClient: &http.Client{
			Timeout: downloadTimeout,
		},
	}, nil
}

// Hook returns a callback suitable for the generation pipeline. It runs
// the mirror in the background so the API response is not delayed.
func (m *Mirror) Hook() func(image models.GeneratedImage) {
	return func(image models.GeneratedImage) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
			defer cancel()

			if err := m.MirrorImage(ctx, image); err != nil {
				log.Errorf("[S3Mirror] Failed to mirror image %s: %v", image.UUID, err)
			}
		}()
	}
}

// MirrorImage downloads the upstream image, uploads the original and a
// thumbnail, and records the mirror URL on the image row.
func (m *Mirror) MirrorImage(ctx context.Context, image models.GeneratedImage) error {
	data, err := m.download(ctx, image.URL)
	if err != nil {
		return fmt.Errorf("download upstream image: %w", err)
	}

	now := time.Now()
	objectKey := m.config.GetObjectKey(image.UUID, now.Year(), int(now.Month()))
	if err := m.client.UploadBytes(ctx, objectKey, data, "image/png"); err != nil {
		return err
	}

	// Thumbnail failures do not invalidate the mirror.
	if thumb, err := m.buildThumbnail(data); err != nil {
		log.Warnf("[S3Mirror] Failed to build thumbnail for %s: %v", image.UUID, err)
	} else {
		thumbKey := m.config.GetThumbnailKey(image.UUID, now.Year(), int(now.Month()))
		if err := m.client.UploadBytes(ctx, thumbKey, thumb, "image/png"); err != nil {
			log.Warnf("[S3Mirror] Failed to upload thumbnail for %s: %v", image.UUID, err)
		}
	}

	mirrorURL := m.config.PublicURL(objectKey)
	if err := m.store.SetMirrorURL(image.UUID, mirrorURL); err != nil {
		return fmt.Errorf("record mirror url: %w", err)
	}

	log.Infof("[S3Mirror] Mirrored image %s to %s", image.UUID, mirrorURL)
	return nil
}

func (m *Mirror) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("upstream returned empty body")
	}
	return data, nil
}

func (m *Mirror) buildThumbnail(original []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Fit(img, thumbnailWidth, thumbnailHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
