package browser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.Headless {
		t.Error("Expected headless to be true by default")
	}

	if opts.Settle != 10*time.Second {
		t.Errorf("Expected settle interval to be 10s, got %v", opts.Settle)
	}

	if opts.Timeout <= opts.Settle {
		t.Errorf("Expected timeout %v to exceed settle %v", opts.Timeout, opts.Settle)
	}

	if opts.ViewportWidth != 1920 || opts.ViewportHeight != 1080 {
		t.Errorf("Expected viewport to be 1920x1080, got %dx%d", opts.ViewportWidth, opts.ViewportHeight)
	}
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer("playwright", nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &PlaywrightRenderer{}, r)

	r, err = NewRenderer("", DefaultOptions(), nil)
	require.NoError(t, err)
	assert.IsType(t, &PlaywrightRenderer{}, r)

	r, err = NewRenderer("rod", nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &RodRenderer{}, r)

	_, err = NewRenderer("selenium", nil, nil)
	assert.Error(t, err)
}

func TestRenderError(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	err := NewRenderError(ErrCodeNavigation, "failed to load page", cause)

	assert.Equal(t, "NAVIGATION_FAILED: failed to load page: net::ERR_NAME_NOT_RESOLVED", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "BLOCKED: robot check", NewRenderError(ErrCodeBlocked, "robot check", nil).Error())
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeTimeout},
		{"other", errors.New("boom"), ErrCodeContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, categorizeError(tt.err, ErrCodeContent, "msg").Code)
		})
	}
}

func TestSettle(t *testing.T) {
	require.NoError(t, settle(context.Background(), 0))
	require.NoError(t, settle(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, settle(ctx, time.Hour), context.Canceled)
}

func TestRenderCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, r := range []Renderer{NewPlaywrightRenderer(nil, discardLogger()), NewRodRenderer(nil, discardLogger())} {
		_, err := r.Render(ctx, "https://www.amazon.com/dp/B000000000")

		var renderErr *RenderError
		require.True(t, errors.As(err, &renderErr))
		assert.Equal(t, ErrCodeTimeout, renderErr.Code)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
