package mdmath

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdmath/internal/assets"
	"github.com/alnah/go-mdmath/internal/fileutil"
	"github.com/alnah/go-mdmath/internal/logging"
	"github.com/alnah/go-mdmath/internal/process"
)

// Renderer converts a bare TeX expression to SVG markup.
type Renderer interface {
	Render(ctx context.Context, equation string, style RenderStyle) (string, error)
}

// engine is a Renderer that holds resources.
type engine interface {
	Renderer
	Close() error
}

var (
	_ engine   = (*mathJaxEngine)(nil)
	_ Renderer = (*EnginePool)(nil)
)

// JavaScript run inside the host page.
const (
	jsReady  = `() => !!(window.MathJax && typeof window.MathJax.tex2svgPromise === "function")`
	jsStart  = `() => MathJax.startup.promise.then(() => true)`
	jsRender = `(expr, display) => MathJax.tex2svgPromise(expr, {display: display})
		.then((node) => MathJax.startup.adaptor.innerHTML(node))`
)

// mathJaxEngine typesets with MathJax 3 in headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found.
// The browser and the MathJax page are started on first use and reused;
// conversions on one engine run one at a time.
type mathJaxEngine struct {
	mu       sync.Mutex
	cfg      engineConfig
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cleanup  func() // removes the host page file
	closed   bool
}

func newMathJaxEngine(cfg engineConfig) *mathJaxEngine {
	if cfg.timeout <= 0 {
		cfg.timeout = defaultTimeout
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	return &mathJaxEngine{cfg: cfg}
}

// ensureBrowser lazily launches and connects to the browser.
func (e *mathJaxEngine) ensureBrowser() error {
	if e.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		killLauncher(l)
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		killLauncher(l)
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.launcher = l
	e.browser = browser
	e.cfg.logger.Debug("browser started", "pid", l.PID())
	return nil
}

// ensurePage opens the host page and waits until MathJax has started.
func (e *mathJaxEngine) ensurePage(ctx context.Context) error {
	if e.page != nil {
		return nil
	}

	content, err := assets.RenderHostPage(e.cfg.source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineInit, err)
	}

	// A file:// page may load a local MathJax copy; about:blank could not.
	path, cleanup, err := fileutil.WriteTempFile(content, "html")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineInit, err)
	}

	page, err := e.browser.Page(proto.TargetCreateTarget{URL: assets.FileURL(path)})
	if err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	start := time.Now()
	if err := e.startMathJax(ctx, page); err != nil {
		_ = page.Close()
		cleanup()
		return err
	}

	e.page = page
	e.cleanup = cleanup
	e.cfg.logger.Debug("MathJax ready", "source", e.cfg.source, "elapsed", time.Since(start))
	return nil
}

// startMathJax waits for the page, the MathJax components and the startup promise.
func (e *mathJaxEngine) startMathJax(ctx context.Context, page *rod.Page) error {
	p := page.Context(ctx).Timeout(e.cfg.timeout)
	defer p.CancelTimeout()

	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: loading page: %v", ErrEngineInit, err)
	}
	if err := p.Wait(rod.Eval(jsReady)); err != nil {
		return fmt.Errorf("%w: waiting for MathJax: %v", ErrEngineInit, err)
	}
	if _, err := p.Eval(jsStart); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineInit, err)
	}
	return nil
}

// Render converts equation with MathJax. TeX errors reject with ErrRender.
func (e *mathJaxEngine) Render(ctx context.Context, equation string, style RenderStyle) (string, error) {
	if style != StyleInline && style != StyleDisplay {
		return "", fmt.Errorf("%w: unsupported style %s", ErrRender, style)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", ErrEngineClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.ensureBrowser(); err != nil {
		return "", err
	}
	if err := e.ensurePage(ctx); err != nil {
		return "", err
	}

	p := e.page.Context(ctx).Timeout(e.cfg.timeout)
	defer p.CancelTimeout()

	res, err := p.Eval(jsRender, equation, style == StyleDisplay)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	svg := res.Value.Str()
	if svg == "" {
		return "", fmt.Errorf("%w: empty output", ErrRender)
	}
	return svg, nil
}

// Close releases browser resources and removes the host page.
// Kills the whole Chrome process tree, since closing the connection alone
// can leave renderer processes behind.
func (e *mathJaxEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true

	var err error
	if e.browser != nil {
		err = e.browser.Close()
		e.browser = nil
	}
	if e.launcher != nil {
		killLauncher(e.launcher)
		e.launcher.Cleanup()
		e.launcher = nil
	}
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.page = nil

	if err != nil {
		e.cfg.logger.Debug("closing browser", slog.Any("error", err))
	}
	return err
}

// killLauncher kills the browser started by l, if it got as far as a process.
// PID 0 must never reach Kill: signaling it would hit our own process group.
func killLauncher(l *launcher.Launcher) {
	pid := l.PID()
	if pid <= 0 {
		return
	}
	process.KillTree(pid)
	l.Kill()
}

// noSandbox reports whether Chrome must run without its sandbox.
func noSandbox() bool {
	switch os.Getenv("ROD_NO_SANDBOX") {
	case "1", "true":
		return true
	}
	return os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != ""
}
