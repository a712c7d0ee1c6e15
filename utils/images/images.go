// Package images downloads, validates and normalizes article images.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	// decode-only formats
	_ "golang.org/x/image/webp"

	"u2b/config"
)

// single image download cutoff
const maxImageSize = 32 << 20

// Downloaded is a validated image stored in a temporary file, ready to be
// embedded into output.
type Downloaded struct {
	URL    string
	Path   string
	Width  int
	Height int
}

// adRe weeds out advertisement, tracking and decoration images by URL.
var adRe = regexp.MustCompile(`(?i)(doubleclick|googleads|adsystem|adservice|/ads?/|banner|tracker|pixel|analytics|metrika|logo|badge|sber|yoomoney|boosty|patreon)`)

// IsAdURL reports whether the URL looks like an ad, a tracker or page
// decoration rather than article content.
func IsAdURL(u string) bool {
	return adRe.MatchString(u)
}

// Fetcher downloads article images concurrently.
type Fetcher struct {
	cfg    config.ImagesConfig
	log    *zap.Logger
	client *http.Client
}

func NewFetcher(cfg config.ImagesConfig, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		cfg: cfg,
		log: log.Named("images"),
		client: &http.Client{
			Timeout: time.Duration(cfg.DownloadTimeout) * time.Second,
		},
	}
}

// Fetch downloads up to the configured number of images, lead image first.
// Download is best effort: individual failures are logged and skipped, the
// returned slice keeps request order.
func (f *Fetcher) Fetch(ctx context.Context, lead string, urls []string) []Downloaded {
	plan := planDownloads(lead, urls, f.cfg.Max)
	if len(plan) == 0 {
		return nil
	}

	results := make([]*Downloaded, len(plan))
	sem := make(chan struct{}, max(f.cfg.DownloadWorkers, 1))
	var wg sync.WaitGroup
	for i, u := range plan {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			img, err := f.fetchOne(ctx, u)
			if err != nil {
				f.log.Debug("skipping image", zap.String("url", u), zap.Error(err))
				return
			}
			results[i] = img
		}(i, u)
	}
	wg.Wait()

	var images []Downloaded
	for _, r := range results {
		if r != nil {
			images = append(images, *r)
		}
	}
	f.log.Debug("images downloaded", zap.Int("requested", len(plan)), zap.Int("usable", len(images)))
	return images
}

// planDownloads filters and orders candidate URLs: the lead image goes first,
// ads and duplicates are dropped, the total is capped.
func planDownloads(lead string, urls []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	seen := make(map[string]bool)
	var plan []string
	add := func(u string) {
		if len(u) == 0 || seen[u] || IsAdURL(u) || len(plan) >= limit {
			return
		}
		seen[u] = true
		plan = append(plan, u)
	}
	add(lead)
	for _, u := range urls {
		add(u)
	}
	return plan
}

func (f *Fetcher) fetchOne(ctx context.Context, imageURL string) (*Downloaded, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, err
	}
	return f.prepare(imageURL, data)
}

// prepare validates payload, rasterizes SVG, drops images that are too small
// and downscales ones that are too big. The result is written to a temporary
// file in a format every renderer can embed.
func (f *Fetcher) prepare(imageURL string, data []byte) (*Downloaded, error) {
	var (
		img image.Image
		ext string
		err error
	)
	switch {
	case looksLikeSVG(data):
		img, err = RasterizeSVG(data, f.cfg.SVGRasterSize)
		ext = ".png"
	default:
		kind, _ := filetype.Match(data)
		switch kind {
		case matchers.TypeJpeg:
			ext = ".jpg"
		case matchers.TypePng, matchers.TypeGif, matchers.TypeWebp:
			ext = ".png"
		default:
			return nil, fmt.Errorf("unsupported image type %q", kind.Extension)
		}
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("unable to decode: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < f.cfg.MinDimension || h < f.cfg.MinDimension {
		return nil, fmt.Errorf("too small (%dx%d)", w, h)
	}
	if w > f.cfg.MaxDimension || h > f.cfg.MaxDimension {
		img = imaging.Fit(img, f.cfg.MaxDimension, f.cfg.MaxDimension, imaging.Lanczos)
		bounds = img.Bounds()
		w, h = bounds.Dx(), bounds.Dy()
	}

	tmp, err := os.CreateTemp("", "u2b-*"+ext)
	if err != nil {
		return nil, err
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(f.cfg.JPEGQuality)); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("unable to save: %w", err)
	}
	return &Downloaded{URL: imageURL, Path: path, Width: w, Height: h}, nil
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// Cleanup removes temporary image files.
func Cleanup(images []Downloaded) error {
	var err error
	for _, img := range images {
		if len(img.Path) == 0 {
			continue
		}
		if e := os.Remove(img.Path); e != nil && !os.IsNotExist(e) {
			err = multierr.Append(err, e)
		}
	}
	return err
}
