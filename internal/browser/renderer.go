package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Error codes carried by RenderError.
const (
	ErrCodeBrowserStart = "BROWSER_START_FAILED"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeTimeout      = "RENDER_TIMEOUT"
	ErrCodeContent      = "CONTENT_CAPTURE_FAILED"
	ErrCodeBlocked      = "BLOCKED"
	ErrCodeInvalidURL   = "INVALID_URL"
)

// Renderer loads a URL in a browsing session that executes page scripts and returns
// the rendered markup.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// RenderError reports that a page could not be rendered or a session could not start.
type RenderError struct {
	Code    string
	Message string
	Err     error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func NewRenderError(code, message string, err error) *RenderError {
	return &RenderError{Code: code, Message: message, Err: err}
}

// NewRenderer picks the rendering engine by name ("playwright" or "rod").
func NewRenderer(engine string, opts *Options, logger *slog.Logger) (Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch engine {
	case "", "playwright":
		return NewPlaywrightRenderer(opts, logger), nil
	case "rod":
		return NewRodRenderer(opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q", engine)
	}
}

// categorizeError maps context errors to a timeout and everything else to code.
func categorizeError(err error, code, msg string) *RenderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewRenderError(ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return NewRenderError(ErrCodeTimeout, "render canceled", err)
	default:
		return NewRenderError(code, msg, err)
	}
}

// settle waits the fixed interval that lets page scripts populate the DOM.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
