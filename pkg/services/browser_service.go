package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// BrowserService owns one headless Chrome shared by the scraper and the PDF
// renderer. The browser is launched on first use.
type BrowserService struct {
	bin      string
	headless bool
	logger   *zap.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowserService creates a BrowserService. An empty bin lets rod find or
// download a browser.
func NewBrowserService(bin string, headless bool, logger *zap.Logger) *BrowserService {
	return &BrowserService{bin: bin, headless: headless, logger: logger}
}

func (b *BrowserService) get() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().Headless(b.headless).NoSandbox(true)
	if b.bin != "" {
		l = l.Bin(b.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	b.logger.Info("browser started", zap.Bool("headless", b.headless))
	b.launcher = l
	b.browser = browser
	return browser, nil
}

// page opens a blank tab bound to ctx.
func (b *BrowserService) page(ctx context.Context) (*rod.Page, error) {
	browser, err := b.get()
	if err != nil {
		return nil, err
	}
	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return page, nil
}

// Close shuts the browser down if it was started.
func (b *BrowserService) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Cleanup()
	b.browser, b.launcher = nil, nil
	return err
}
