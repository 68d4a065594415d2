package layout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

// ---------------------------------------------------------------------------
// Asset cache
// ---------------------------------------------------------------------------

const (
	// Remote logos are downscaled into this pixel box before embedding.
	maxAssetPx = 512
	jpegQuality = 80

	assetFetchTimeout = 10 * time.Second
	maxAssetBytes     = 8 << 20
)

// Asset is a fetched, downscaled, JPEG-re-encoded image ready for
// embedding.
type Asset struct {
	Data   []byte
	Width  int
	Height int
}

// AssetCache memoizes remote images for the lifetime of one batch. It is
// passed explicitly into the assembler; there is no process-wide instance.
// Batch generation is strictly sequential, so the map needs no locking.
type AssetCache struct {
	client *http.Client
	images map[string]*Asset
}

// NewAssetCache returns an empty cache with a bounded-timeout HTTP client.
func NewAssetCache() *AssetCache {
	return &AssetCache{
		client: &http.Client{Timeout: assetFetchTimeout},
		images: make(map[string]*Asset),
	}
}

// Get returns the cached asset for key, fetching and downscaling it from
// url on first use. It returns nil on any failure; callers omit the image
// rather than fail the document. Failures are not cached, so a transient
// network error does not poison the whole batch.
func (c *AssetCache) Get(ctx context.Context, key, url string) *Asset {
	if a, ok := c.images[key]; ok {
		return a
	}
	if url == "" {
		return nil
	}

	a, err := c.fetch(ctx, url)
	if err != nil {
		return nil
	}
	c.images[key] = a
	return a
}

// Clear drops all cached assets.
func (c *AssetCache) Clear() {
	c.images = make(map[string]*Asset)
}

func (c *AssetCache) fetch(ctx context.Context, url string) (*Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, err
	}
	return downscale(data)
}

// drawAsset registers the asset with the PDF (once per document) and draws
// it at the given position and display width; the height follows from the
// aspect ratio.
func drawAsset(d *document, name string, a *Asset, x, y, w float64) {
	opts := fpdf.ImageOptions{ImageType: "JPEG"}
	if d.pdf.GetImageInfo(name) == nil {
		d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(a.Data))
	}
	h := w * float64(a.Height) / float64(a.Width)
	d.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

// downscale decodes an image, fits it into the maximum pixel box
// (preserving aspect ratio) and re-encodes it as JPEG at reduced quality.
func downscale(data []byte) (*Asset, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode asset: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxAssetPx || bounds.Dy() > maxAssetPx {
		img = imaging.Fit(img, maxAssetPx, maxAssetPx, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode asset: %w", err)
	}

	return &Asset{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
