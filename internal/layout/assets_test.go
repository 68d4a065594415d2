package layout

import (
	"bytes"
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		name             string
		w, h             int
		wantW, wantH     int
	}{
		{"oversized landscape", 1024, 512, 512, 256},
		{"oversized portrait", 600, 1200, 256, 512},
		{"within bounds untouched", 100, 50, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := downscale(pngImage(t, tt.w, tt.h))
			if err != nil {
				t.Fatalf("downscale() error = %v", err)
			}
			if a.Width != tt.wantW || a.Height != tt.wantH {
				t.Errorf("dimensions = %dx%d, want %dx%d", a.Width, a.Height, tt.wantW, tt.wantH)
			}
			// Always re-encoded as JPEG, regardless of input format.
			if !bytes.HasPrefix(a.Data, []byte{0xff, 0xd8}) {
				t.Error("asset data is not JPEG")
			}
		})
	}

	t.Run("garbage input", func(t *testing.T) {
		if _, err := downscale([]byte("not an image")); err == nil {
			t.Error("downscale() expected error for garbage input")
		}
	})
}

func TestAssetCacheGet(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(pngImage(t, 64, 64))
	}))
	defer srv.Close()

	cache := NewAssetCache()
	ctx := context.Background()

	a := cache.Get(ctx, "logo", srv.URL)
	if a == nil {
		t.Fatal("Get() returned nil for a reachable asset")
	}
	if a.Width != 64 || a.Height != 64 {
		t.Errorf("dimensions = %dx%d, want 64x64", a.Width, a.Height)
	}

	// Second lookup is served from memory.
	if b := cache.Get(ctx, "logo", srv.URL); b != a {
		t.Error("Get() did not return the cached asset")
	}
	if requests != 1 {
		t.Errorf("server saw %d requests, want 1", requests)
	}

	cache.Clear()
	cache.Get(ctx, "logo", srv.URL)
	if requests != 2 {
		t.Errorf("server saw %d requests after Clear, want 2", requests)
	}
}

func TestAssetCacheGetFailures(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.NotFound(w, r)
			return
		}
		w.Write(pngImage(t, 32, 32))
	}))
	defer srv.Close()

	cache := NewAssetCache()
	ctx := context.Background()

	if a := cache.Get(ctx, "logo", srv.URL); a != nil {
		t.Fatal("Get() returned an asset for a 404 response")
	}
	if a := cache.Get(ctx, "logo", ""); a != nil {
		t.Fatal("Get() returned an asset for an empty URL")
	}
	if a := cache.Get(ctx, "logo", "http://127.0.0.1:0/none"); a != nil {
		t.Fatal("Get() returned an asset for an unreachable URL")
	}

	// Failures are not cached; the same key recovers once the source does.
	fail = false
	if a := cache.Get(ctx, "logo", srv.URL); a == nil {
		t.Fatal("Get() did not retry after a transient failure")
	}
}

func TestAssetCacheBadImageData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	cache := NewAssetCache()
	if a := cache.Get(context.Background(), "logo", srv.URL); a != nil {
		t.Error("Get() returned an asset for undecodable data")
	}
}
