package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"tshirt-bundle/logger"
)

const (
	PreviewPNG = "png"
	PreviewPDF = "pdf"

	previewTimeout  = 30 * time.Second
	previewSelector = "#BundleWidget"
)

var ErrPreviewFormat = errors.New("unsupported preview format")

// PreviewService renders a bundle instance's page in headless Chrome and
// captures the widget as a PNG or the whole page as a PDF.
type PreviewService struct {
	baseURL    string
	chromePath string
	logger     logger.ILogger
}

// NewPreviewService creates the service. baseURL is where this server's own
// pages are reachable (e.g., "http://localhost:8080").
func NewPreviewService(baseURL, chromePath string, log logger.ILogger) *PreviewService {
	return &PreviewService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		chromePath: detectChromePath(chromePath),
		logger:     log,
	}
}

// detectChromePath returns configured if it exists, else the first common
// Chrome/Chromium install found, else "" to let chromedp search PATH
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// PageURL is the server-rendered page of an instance
func (s *PreviewService) PageURL(instanceID string) string {
	return fmt.Sprintf("%s/bundle/%s/page", s.baseURL, instanceID)
}

// ContentType returns the MIME type of a preview format
func ContentType(format string) (string, error) {
	switch format {
	case PreviewPNG, "":
		return "image/png", nil
	case PreviewPDF:
		return "application/pdf", nil
	}
	return "", fmt.Errorf("%w: %q", ErrPreviewFormat, format)
}

// Capture renders instanceID's page and returns the preview bytes
func (s *PreviewService) Capture(ctx context.Context, instanceID, format string) ([]byte, error) {
	if _, err := ContentType(format); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, previewTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("enable-print-preview", true),
	)
	if s.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	url := s.PageURL(instanceID)
	s.logger.Debug("preview", "capturing bundle page", map[string]interface{}{"url": url, "format": format})

	var out []byte
	var capture chromedp.Action = chromedp.Screenshot(previewSelector, &out, chromedp.ByQuery)
	if format == PreviewPDF {
		capture = chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			out, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				Do(ctx)
			return err
		})
	}

	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(1280, 900),
		chromedp.Navigate(url),
		chromedp.WaitReady(previewSelector, chromedp.ByQuery),
		// Wait for slot thumbnails
		chromedp.Evaluate(`
			Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
				return new Promise((resolve) => {
					if (img.complete) { resolve(); return; }
					const timeout = setTimeout(() => resolve(), 5000);
					img.onload = () => { clearTimeout(timeout); resolve(); };
					img.onerror = () => { clearTimeout(timeout); resolve(); };
				});
			}));
		`, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) }),
		capture,
	)
	if err != nil {
		s.logger.Error("preview", "failed to capture bundle page", map[string]interface{}{"url": url, "error": err})
		return nil, fmt.Errorf("failed to capture %s preview: %w", format, err)
	}
	return out, nil
}
