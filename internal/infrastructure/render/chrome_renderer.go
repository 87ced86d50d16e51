package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"trenchcard/internal/app/port"
	"trenchcard/internal/pkg/metrics"
)

// ChromeOptions configures the headless browser.
type ChromeOptions struct {
	ExecutablePath string
	ViewportWidth  int
	ViewportHeight int
	Timeout        time.Duration
	// Quality applies to JPEG output; PNG is always captured losslessly.
	Quality int
}

// ChromeRenderer implements port.Renderer with a headless Chrome started per
// render.
type ChromeRenderer struct {
	opts   ChromeOptions
	logger port.Logger
}

// NewChromeRenderer creates a renderer. Zero options fall back to a 600x800
// viewport, a 30s timeout and JPEG quality 90.
func NewChromeRenderer(opts ChromeOptions, logger port.Logger) *ChromeRenderer {
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = 600
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = 800
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Quality <= 0 || opts.Quality >= 100 {
		opts.Quality = 90
	}
	return &ChromeRenderer{opts: opts, logger: logger.Named("ChromeRenderer")}
}

// Render implements port.Renderer.
func (r *ChromeRenderer) Render(ctx context.Context, html []byte, format port.ImageFormat) ([]byte, error) {
	if len(html) == 0 {
		return nil, errors.New("render: empty document")
	}
	start := time.Now()
	defer metrics.ObserveSince(metrics.CardRenderDuration.WithLabelValues(string(format)), start)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(r.opts.ViewportWidth, r.opts.ViewportHeight),
	)
	if r.opts.ExecutablePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.opts.ExecutablePath))
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// quality 100 makes FullScreenshot capture PNG
	quality := 100
	if format == port.ImageJPEG {
		quality = r.opts.Quality
	}

	var img []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(r.opts.ViewportWidth), int64(r.opts.ViewportHeight)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.FullScreenshot(&img, quality),
	)
	if err != nil {
		r.logger.Error("Card render failed",
			"format", string(format),
			"elapsed", time.Since(start),
			"error", err)
		return nil, fmt.Errorf("render card: %w", err)
	}

	r.logger.Debug("Card rendered",
		"format", string(format),
		"bytes", len(img),
		"elapsed", time.Since(start))
	return img, nil
}
