package pdfexport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odontolegal/odontolegal-api/config"
)

const exportTimeout = 60 * time.Second

// Exporter converts a rendered HTML document into PDF bytes. The operation
// and entity id name the debug copy written alongside the returned bytes.
type Exporter interface {
	Export(ctx context.Context, html, operacao, entidadeID string) ([]byte, error)
}

// BrowserExporter drives a shared headless Chromium instance. Concurrent
// exports are bounded by a slot pool so load queues instead of spawning
// unbounded pages.
type BrowserExporter struct {
	browser     *rod.Browser
	slots       chan struct{}
	artifactDir string
}

// New launches the browser and prepares the artifact directory.
func New(conf *config.Config) (*BrowserExporter, error) {
	l := launcher.New().Headless(conf.Headless)
	if conf.BrowserPath != "" {
		l = l.Bin(conf.BrowserPath)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	if err := os.MkdirAll(conf.ArtifactDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact dir: %w", err)
	}

	slots := conf.ExportSlots
	if slots <= 0 {
		slots = 1
	}

	return &BrowserExporter{
		browser:     browser,
		slots:       make(chan struct{}, slots),
		artifactDir: conf.ArtifactDir,
	}, nil
}

// Export renders html on a fresh page and captures it as an A4 PDF. The page
// waits for embedded resources (evidence images) to settle before printing so
// the capture is never truncated.
func (e *BrowserExporter) Export(ctx context.Context, html, operacao, entidadeID string) ([]byte, error) {
	select {
	case e.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.slots }()

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	page, err := e.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("failed to set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for page load: %w", err)
	}
	wait := page.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	wait()

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      paper(8.27),
		PaperHeight:     paper(11.69),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf stream: %w", err)
	}

	e.saveArtifact(operacao, entidadeID, pdf)
	return pdf, nil
}

// Close tears the browser process down.
func (e *BrowserExporter) Close() error {
	return e.browser.Close()
}

// saveArtifact writes the debug copy. Failures are logged, never surfaced:
// the artifact is an audit aid, not part of the response.
func (e *BrowserExporter) saveArtifact(operacao, entidadeID string, pdf []byte) {
	path := filepath.Join(e.artifactDir, ArtifactName(operacao, entidadeID))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		zap.S().Warnw("failed to write pdf artifact",
			"path", path,
			"error", err,
		)
	}
}

// ArtifactName builds a collision-free debug file name for an operation on an
// entity. The uuid keeps concurrent operations on different entities from
// clobbering each other.
func ArtifactName(operacao, entidadeID string) string {
	return fmt.Sprintf("%s_%s_%s.pdf", operacao, entidadeID, uuid.New().String())
}

func paper(v float64) *float64 {
	return &v
}
