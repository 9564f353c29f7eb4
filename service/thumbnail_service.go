package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"tshirt-bundle/logger"
)

const (
	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800

	maxSourceBytes = 20 << 20
)

var (
	ErrImageSource     = errors.New("image source unavailable")
	ErrImageHostDenied = errors.New("image host not allowed")
)

// ThumbnailService fetches card and variant images and serves resized JPEG
// copies for the bundle slots, caching them on disk.
type ThumbnailService struct {
	cacheDir     string
	originURL    string
	allowedHosts map[string]bool
	httpClient   *http.Client
	logger       logger.ILogger
}

// NewThumbnailService creates the service. Relative sources are resolved
// against originURL. Absolute sources are fetched only from the origin's host
// or one of imageHosts (e.g. "cdn.shopify.com").
func NewThumbnailService(cacheDir, originURL string, imageHosts []string, log logger.ILogger) *ThumbnailService {
	originURL = strings.TrimSuffix(originURL, "/")
	allowed := make(map[string]bool, len(imageHosts)+1)
	if u, err := url.Parse(originURL); err == nil && u.Host != "" {
		allowed[strings.ToLower(u.Host)] = true
	}
	for _, h := range imageHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed[h] = true
		}
	}
	return &ThumbnailService{
		cacheDir:     cacheDir,
		originURL:    originURL,
		allowedHosts: allowed,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       log,
	}
}

// Allowed reports whether src would be fetched
func (s *ThumbnailService) Allowed(src string) bool {
	_, err := s.sourceURL(src)
	return err == nil
}

// EnsureCacheDir ensures the cache directory exists, creates it if it doesn't
func (s *ThumbnailService) EnsureCacheDir() error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// CachePath returns the cache file for a source and size
func (s *ThumbnailService) CachePath(src, size string) string {
	key := uuid.NewSHA1(uuid.NameSpaceURL, []byte(s.resolve(src)))
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s_%s.jpg", key, normalizeSize(size)))
}

// Thumbnail returns the optimized image for src at size ("thumb" or "medium")
func (s *ThumbnailService) Thumbnail(ctx context.Context, src, size string) ([]byte, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty source", ErrImageSource)
	}

	target, err := s.sourceURL(src)
	if err != nil {
		return nil, err
	}

	cachePath := s.CachePath(src, size)
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	raw, err := s.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	optimized, err := OptimizeImage(raw, size)
	if err != nil {
		return nil, err
	}

	if err := s.save(cachePath, optimized); err != nil {
		s.logger.Warn("thumbnail", "failed to cache image", map[string]interface{}{"path": cachePath, "error": err.Error()})
	}
	return optimized, nil
}

func (s *ThumbnailService) resolve(src string) string {
	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return s.originURL + src
	}
	return src
}

// sourceURL resolves src and checks it against the allowed hosts
func (s *ThumbnailService) sourceURL(src string) (string, error) {
	u, err := url.Parse(s.resolve(strings.TrimSpace(src)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageSource, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", ErrImageHostDenied, u.Scheme)
	}
	if u.User != nil || !s.allowedHosts[strings.ToLower(u.Host)] {
		return "", fmt.Errorf("%w: %s", ErrImageHostDenied, u.Host)
	}
	return u.String(), nil
}

func (s *ThumbnailService) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSource, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrImageSource, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSource, err)
	}
	return data, nil
}

func (s *ThumbnailService) save(cachePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	s.logger.Debug("thumbnail", "image cached", map[string]interface{}{"path": cachePath})
	return nil
}

func normalizeSize(size string) string {
	if size == "thumb" {
		return "thumb"
	}
	return "medium"
}

// OptimizeImage converts imageData to JPEG, shrinking it to fit the size's
// bounding box. Smaller images keep their dimensions.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	maxDim, quality := maxSizeMedium, qualityMedium
	if normalizeSize(size) == "thumb" {
		maxDim, quality = maxSizeThumb, qualityThumb
	}

	var out image.Image = img
	if b := img.Bounds(); b.Dx() > maxDim || b.Dy() > maxDim {
		out = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
