// Package browser is a live capture provider backed by go-rod.
//
// It launches (or connects to) Chrome, opens a stealth page and exposes
// the OpenURL, CaptureUITree and CaptureScreenshot capabilities.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/pithecene-io/snapclone/types"
)

// DefaultNavigationTimeout bounds Navigate plus WaitLoad.
const DefaultNavigationTimeout = 30 * time.Second

// Config configures the rod provider.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of an existing Chrome.
	// Empty launches a local Chrome via the rod launcher.
	RemoteURL string
	// Executable overrides the Chrome binary for local launches.
	Executable string
	// Headless runs a local Chrome without a window.
	Headless bool
	// Stealth opens pages through go-rod/stealth.
	Stealth bool
	// NavigationTimeout bounds page loads. Zero uses the default.
	NavigationTimeout time.Duration
	// Now is the timestamp source for captured documents.
	Now func() time.Time
}

// Provider drives a single Chrome page.
type Provider struct {
	cfg     Config
	mu      sync.Mutex
	lnch    *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
}

// New launches or connects to Chrome.
func New(cfg Config) (*Provider, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = DefaultNavigationTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	p := &Provider{cfg: cfg}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		if cfg.Executable != "" {
			l = l.Bin(cfg.Executable)
		}
		l = l.Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		p.lnch = l
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		p.cleanupLauncher()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	p.browser = b
	return p, nil
}

// OpenURL navigates the provider's page to url and waits for load.
// The browser name is ignored: the provider always drives its own Chrome.
func (p *Provider) OpenURL(ctx context.Context, url, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	page, err := p.ensurePage()
	if err != nil {
		return err
	}

	navCtx, cancel := context.WithTimeout(ctx, p.cfg.NavigationTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		return fmt.Errorf("browser: wait load %s: %w", url, err)
	}
	return nil
}

// CaptureUITree evaluates the landmark script on the current page.
func (p *Provider) CaptureUITree(ctx context.Context) (*types.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.page == nil {
		return nil, fmt.Errorf("browser: no page open")
	}
	res, err := p.page.Context(ctx).Eval(treeScript)
	if err != nil {
		return nil, fmt.Errorf("browser: eval tree script: %w", err)
	}
	return DecodeTree(res.Value.Str(), p.cfg.Now())
}

// CaptureScreenshot writes a PNG of the current viewport to path.
func (p *Provider) CaptureScreenshot(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.page == nil {
		return fmt.Errorf("browser: no page open")
	}
	data, err := p.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("browser: screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("browser: write screenshot: %w", err)
	}
	return nil
}

// Close closes the page and browser and cleans up a local launch.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.page != nil {
		if err := p.page.Close(); err != nil {
			firstErr = err
		}
		p.page = nil
	}
	if p.browser != nil {
		if err := p.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.browser = nil
	}
	p.cleanupLauncher()
	return firstErr
}

func (p *Provider) ensurePage() (*rod.Page, error) {
	if p.page != nil {
		return p.page, nil
	}
	var (
		page *rod.Page
		err  error
	)
	if p.cfg.Stealth {
		page, err = stealth.Page(p.browser)
	} else {
		page, err = p.browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	p.page = page
	return page, nil
}

func (p *Provider) cleanupLauncher() {
	if p.lnch != nil {
		p.lnch.Kill()
		p.lnch.Cleanup()
		p.lnch = nil
	}
}

// rawTree is the JSON shape returned by treeScript.
type rawTree struct {
	URL      string          `json:"url"`
	Title    string          `json:"title"`
	Elements []types.Element `json:"elements"`
}

// DecodeTree converts the tree script's JSON output into a Document
// stamped with now.
func DecodeTree(raw string, now time.Time) (*types.Document, error) {
	var tree rawTree
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, fmt.Errorf("browser: decode tree: %w", err)
	}
	if tree.Elements == nil {
		tree.Elements = []types.Element{}
	}
	return &types.Document{
		Timestamp: now.Format(time.RFC3339),
		URL:       tree.URL,
		Title:     tree.Title,
		Elements:  tree.Elements,
	}, nil
}

// treeScript walks landmark elements in document order and reports each
// with its bounding box. Image grids are reported as galleries.
const treeScript = `() => {
	const selector = 'header, nav, main, section, article, aside, footer, [role=banner], [role=navigation], [role=main], [role=contentinfo], ul, ol, div';
	const landmarks = new Set(['header', 'nav', 'main', 'section', 'article', 'aside', 'footer']);
	const roles = {banner: 'header', navigation: 'nav', main: 'main', contentinfo: 'footer'};
	const elements = [];
	const text = (el) => (el.innerText || '').trim().split('\n')[0].slice(0, 200);
	const bounds = (el) => {
		const r = el.getBoundingClientRect();
		return {x: r.x, y: r.y, width: r.width, height: r.height};
	};
	for (const el of document.querySelectorAll(selector)) {
		const r = el.getBoundingClientRect();
		if (r.width === 0 || r.height === 0) continue;
		const tag = el.tagName.toLowerCase();
		const role = el.getAttribute('role') || '';
		let type = landmarks.has(tag) ? tag : (roles[role] || '');
		const images = el.querySelectorAll(':scope > * img, :scope > img');
		const children = el.children.length;
		if (!type && children >= 4 && images.length >= children / 2) {
			type = 'gallery';
		}
		if (!type) continue;
		const item = {type: type, bounds: bounds(el)};
		if (type === 'gallery') {
			item.childCount = children;
		} else {
			const t = text(el);
			if (t) item.text = t;
		}
		elements.push(item);
	}
	return JSON.stringify({url: location.href, title: document.title, elements: elements});
}`
