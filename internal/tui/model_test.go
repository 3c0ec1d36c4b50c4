package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/maltedev/boycott-detector/internal/browser"
	"github.com/maltedev/boycott-detector/internal/detector"
	"github.com/maltedev/boycott-detector/internal/models"
	"github.com/maltedev/boycott-detector/internal/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	result   *detector.Result
	err      error
	added    map[string]bool
	addErr   error
	urls     []string
	deadline bool
}

func (f *fakeChecker) Check(ctx context.Context, url string) (*detector.Result, error) {
	f.urls = append(f.urls, url)
	_, f.deadline = ctx.Deadline()
	return f.result, f.err
}

func (f *fakeChecker) AddToPersonal(record *models.ProductRecord) (bool, error) {
	if f.addErr != nil {
		return false, f.addErr
	}
	if f.added == nil {
		f.added = map[string]bool{}
	}
	if f.added[record.Manufacturer] {
		return false, nil
	}
	f.added[record.Manufacturer] = true
	return true, nil
}

func result(manufacturer string, canonical []string) *detector.Result {
	r := models.NewProductRecord("https://www.amazon.com/dp/B0ABCDEF12")
	r.Title = "Anvil"
	r.Manufacturer = manufacturer
	r.SetCountry("Germany")
	return &detector.Result{
		ID:      uuid.New(),
		Record:  r,
		Verdict: verdict.Evaluate(r, canonical, nil),
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestEnterStartsCheck(t *testing.T) {
	fc := &fakeChecker{result: result("Acme Corp", []string{"Acme Corp"})}
	m := New(fc, time.Minute)
	m.input.SetValue("  https://www.amazon.com/dp/B0ABCDEF12 ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.checking)
	assert.Contains(t, m.View(), "Checking product")

	msg := m.runCheck("https://www.amazon.com/dp/B0ABCDEF12")()
	assert.Equal(t, []string{"https://www.amazon.com/dp/B0ABCDEF12"}, fc.urls)
	assert.True(t, fc.deadline)

	m, _ = update(t, m, msg)
	assert.False(t, m.checking)
	assert.Contains(t, m.View(), "is on the boycott list because Acme Corp makes it.")
	assert.Contains(t, m.View(), "ctrl+a")
}

func TestEnterIgnoredWhileChecking(t *testing.T) {
	m := New(&fakeChecker{}, 0)
	m.input.SetValue("https://www.amazon.com/dp/B0ABCDEF12")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, m.checking)
}

func TestEnterWithEmptyInput(t *testing.T) {
	m := New(&fakeChecker{}, 0)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.checking)
	assert.Contains(t, m.View(), "Enter an Amazon product URL first.")
}

func TestNoDeadlineWithoutTimeout(t *testing.T) {
	fc := &fakeChecker{result: result("Acme Corp", nil)}
	m := New(fc, 0)

	m.runCheck("https://www.amazon.com/dp/B0ABCDEF12")()
	assert.False(t, fc.deadline)
}

func TestAddHiddenWhenNotBoycotted(t *testing.T) {
	m := New(&fakeChecker{}, 0)
	m.checking = true

	m, _ = update(t, m, checkDoneMsg{result: result("Gizmo Co", []string{"Acme Corp"})})
	assert.Contains(t, m.View(), "does not have an active boycott")
	assert.NotContains(t, m.View(), "ctrl+a")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Nil(t, cmd)
}

func TestCheckError(t *testing.T) {
	m := New(&fakeChecker{}, 0)
	m.checking = true

	err := browser.NewRenderError(browser.ErrCodeNavigation, "failed to load page", errors.New("net::ERR_NAME_NOT_RESOLVED"))
	m, _ = update(t, m, checkDoneMsg{err: err})

	assert.False(t, m.checking)
	assert.Contains(t, m.View(), "Error: NAVIGATION_FAILED")
	assert.NotContains(t, m.View(), "ctrl+a")
}

func TestAddToPersonal(t *testing.T) {
	fc := &fakeChecker{}
	m := New(fc, 0)
	m.checking = true
	m, _ = update(t, m, checkDoneMsg{result: result("Acme Corp", []string{"Acme Corp"})})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.View(), "Acme Corp was added to your personal boycott list.")

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.View(), "Acme Corp is already in your personal boycott list.")
	assert.Len(t, fc.added, 1)
}

func TestAddToPersonalSaveError(t *testing.T) {
	m := New(&fakeChecker{addErr: errors.New("read-only file system")}, 0)
	m.checking = true
	m, _ = update(t, m, checkDoneMsg{result: result("Acme Corp", []string{"Acme Corp"})})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Contains(t, m.View(), "Could not save the personal boycott list")
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := New(&fakeChecker{}, 0)
		_, cmd := update(t, m, tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok)
	}
}

func TestHelpLine(t *testing.T) {
	m := New(&fakeChecker{}, 0)
	assert.Equal(t, "enter: check • esc: quit", m.helpLine())

	m.last = result("Acme Corp", []string{"Acme Corp"})
	assert.True(t, strings.Contains(m.helpLine(), "ctrl+a"))
}
