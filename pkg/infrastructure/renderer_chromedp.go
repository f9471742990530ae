package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Paper size in inches.
type Paper struct {
	Width, Height float64
}

var (
	PaperA4     = Paper{Width: 8.27, Height: 11.69}
	PaperLetter = Paper{Width: 8.5, Height: 11}
)

// ChromedpRenderer prints self-contained HTML to PDF with headless Chrome.
type ChromedpRenderer struct {
	execPath string
	timeout  time.Duration
	paper    Paper
}

type RendererOption func(*ChromedpRenderer)

// WithExecPath uses a specific Chrome binary instead of the one on PATH.
func WithExecPath(p string) RendererOption {
	return func(r *ChromedpRenderer) { r.execPath = p }
}

func WithTimeout(d time.Duration) RendererOption {
	return func(r *ChromedpRenderer) { r.timeout = d }
}

func WithPaper(p Paper) RendererOption {
	return func(r *ChromedpRenderer) { r.paper = p }
}

func NewChromedpRenderer(opts ...RendererOption) *ChromedpRenderer {
	r := &ChromedpRenderer{timeout: 60 * time.Second, paper: PaperA4}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ChromedpRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	return opts
}

func (r *ChromedpRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	ctx2, cancel2 := context.WithTimeout(cctx, r.timeout)
	defer cancel2()

	tmpDir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, err
	}

	var pdfBuf []byte
	err = chromedp.Run(ctx2,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(r.paper.Width).
				WithPaperHeight(r.paper.Height).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}
