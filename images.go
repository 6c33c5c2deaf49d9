package spacetraveling

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/eringen/spacetraveling/prismic"
)

const (
	maxBannerWidth = 1200
	jpegQuality    = 80
	maxBannerSize  = 20 << 20 // 20MB
	bannersSubdir  = "banners"
)

// Banner is a banner image re-encoded for the static site.
type Banner struct {
	Path   string // site-relative URL
	Width  int
	Height int
	Size   int
}

// processImage decodes an image from src, resizes it to maxBannerWidth when
// wider, and encodes it as JPEG.
func processImage(src io.Reader) ([]byte, int, int, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxBannerWidth {
		newH := h * maxBannerWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxBannerWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxBannerWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// localizeBanner downloads the banner at src and writes it below
// outDir/public/banners as <uid>.jpg.
func localizeBanner(ctx context.Context, hc *http.Client, src, outDir, uid string) (Banner, error) {
	if err := prismic.ValidateUID(uid); err != nil {
		return Banner{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return Banner{}, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Banner{}, fmt.Errorf("download banner: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Banner{}, fmt.Errorf("download banner: status %d", resp.StatusCode)
	}

	data, w, h, err := processImage(io.LimitReader(resp.Body, maxBannerSize))
	if err != nil {
		return Banner{}, err
	}

	dir := filepath.Join(outDir, "public", bannersSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Banner{}, fmt.Errorf("create banners dir: %w", err)
	}
	name := uid + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return Banner{}, fmt.Errorf("write banner: %w", err)
	}
	return Banner{
		Path:   "/public/" + bannersSubdir + "/" + name,
		Width:  w,
		Height: h,
		Size:   len(data),
	}, nil
}
