// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/scalpel-humanoid/internal/browser/stealth"
	"github.com/xkilldash9x/scalpel-humanoid/internal/config"
	"github.com/xkilldash9x/scalpel-humanoid/internal/humanoid"
	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
)

// Session represents one browser (allocator plus a single tab) driven by the
// humanoid engine.
type Session struct {
	id          string
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger
	cfg         config.BrowserConfig
	driver      *cdpDriver

	// runActionsFunc executes chromedp actions; it points to runActions
	// outside of tests.
	runActionsFunc func(ctx context.Context, actions ...chromedp.Action) error

	mu       sync.Mutex
	isClosed bool
}

// ExecAllocatorOptions builds the Chrome launch flags for cfg.
func ExecAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	width, height := cfg.ViewportSize()
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.WindowSize(width, height),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	// Extra flags from the config: "key=value" or bare boolean flags.
	for _, arg := range cfg.Args {
		arg = strings.TrimLeft(arg, "-")
		if arg == "" {
			continue
		}
		if key, value, found := strings.Cut(arg, "="); found {
			opts = append(opts, chromedp.Flag(key, value))
		} else {
			opts = append(opts, chromedp.Flag(arg, true))
		}
	}
	return opts
}

// NewSession launches a browser and opens its first tab. The browser lives
// until Close is called or parent is cancelled.
func NewSession(parent context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	l := observability.Tagged(logger, "", observability.CategoryBrowser).With(zap.String("session_id", id))

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, ExecAllocatorOptions(cfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(l.Sugar().Errorf),
		chromedp.WithDebugf(l.Sugar().Debugf),
	)

	// The first Run starts the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s := newSession(id, tabCtx, tabCancel, allocCancel, cfg, l)
	if err := s.applyPersona(parent); err != nil {
		s.Close()
		return nil, err
	}
	l.Info("Browser session started.", zap.Bool("headless", cfg.Headless))
	return s, nil
}

// newSession wires a Session around an already created tab context.
func newSession(id string, ctx context.Context, cancel, allocCancel context.CancelFunc, cfg config.BrowserConfig, logger *zap.Logger) *Session {
	s := &Session{
		id:          id,
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      logger,
		cfg:         cfg,
	}
	s.runActionsFunc = s.runActions

	var limiter *rate.Limiter
	if cfg.PointerRateHz > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.PointerRateHz), 1)
	}
	s.driver = newCDPDriver(logger, s.RunActions, limiter)
	return s
}

// applyPersona installs the configured browser persona. It is a no-op when
// the persona is disabled.
func (s *Session) applyPersona(ctx context.Context) error {
	if !s.cfg.Persona.Enabled {
		return nil
	}
	tasks, err := stealth.Apply(stealth.FromConfig(s.cfg), s.logger)
	if err != nil {
		return err
	}
	if err := s.RunActions(ctx, tasks); err != nil {
		return fmt.Errorf("failed to apply browser persona: %w", err)
	}
	return nil
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string {
	return s.id
}

// Driver returns the pointer and timer capability of the tab.
func (s *Session) Driver() humanoid.Driver {
	return s.driver
}

// Element returns a lazy handle to the first element matching the CSS
// selector. The selector is resolved on every call.
func (s *Session) Element(selector string) humanoid.Element {
	return &cdpElement{
		selector:       selector,
		logger:         s.logger.With(zap.String("selector", selector)),
		actionTimeout:  s.cfg.ActionTimeout,
		runActionsFunc: s.RunActions,
		pointer:        s.driver,
	}
}

// Navigate loads url and waits for the document body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating to URL", zap.String("url", url))

	navTimeout := s.cfg.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	if err := s.RunActions(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		if navCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return fmt.Errorf("navigation timed out after %s: %w", navTimeout, err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("navigation canceled: %w", ctx.Err())
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// RunActions executes actions in the tab, bounded by both ctx and the
// session's lifetime.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	closed := s.isClosed
	s.mu.Unlock()
	if closed {
		return fmt.Errorf("session %s is closed", s.id)
	}
	return s.runActionsFunc(ctx, actions...)
}

func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, opCancel := CombineContext(s.ctx, ctx)
	defer opCancel()
	return chromedp.Run(opCtx, actions...)
}

// Close shuts the tab and the browser process. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return
	}
	s.isClosed = true

	s.cancel()
	if s.allocCancel != nil {
		// Cancelling the allocator kills the browser and waits for it to exit.
		s.allocCancel()
	}
	s.logger.Info("Browser session closed.")
}

// CombineContext returns a context that is cancelled when either parent or
// secondary is done. Values come from parent; the earlier deadline wins.
func CombineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)
	if deadline, ok := secondaryCtx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		combinedCtx, cancelDeadline = context.WithDeadline(combinedCtx, deadline)
		parentCancel := cancel
		cancel = func() {
			cancelDeadline()
			parentCancel()
		}
	}

	stop := context.AfterFunc(secondaryCtx, cancel)
	return combinedCtx, func() {
		stop()
		cancel()
	}
}
