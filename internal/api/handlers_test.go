package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/boycott-detector/internal/browser"
	"github.com/maltedev/boycott-detector/internal/detector"
	"github.com/maltedev/boycott-detector/internal/models"
	"github.com/maltedev/boycott-detector/internal/scraper"
	"github.com/maltedev/boycott-detector/internal/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	checkErr  error
	canonical []string
	personal  []string
	saveErr   error
	readOnly  bool
	busy      bool
}

func (f *fakeService) Check(ctx context.Context, url string) (*detector.Result, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	r := models.NewProductRecord(url)
	r.Title = "Anvil"
	r.Manufacturer = "Acme Corp"
	r.SetCountry("China")
	return &detector.Result{
		ID:      uuid.MustParse("8b0e3f5e-1f3a-4b7e-9c49-1b2f6c1d2e3f"),
		Record:  r,
		Verdict: verdict.Evaluate(r, f.canonical, nil),
	}, nil
}

func (f *fakeService) AddName(name string) (bool, error) {
	if name == "" {
		return false, detector.ErrEmptyName
	}
	if name == models.Unknown {
		return false, detector.ErrUnknownManufacturer
	}
	if f.saveErr != nil {
		return false, f.saveErr
	}
	for _, n := range f.personal {
		if n == name {
			return false, nil
		}
	}
	f.personal = append(f.personal, name)
	return true, nil
}

func (f *fakeService) CanonicalList() []string { return f.canonical }
func (f *fakeService) PersonalNames() []string { return f.personal }
func (f *fakeService) PersonalPath() string    { return "personal_boycott_list.txt" }
func (f *fakeService) PersonalWritable() bool  { return !f.readOnly }
func (f *fakeService) Busy() bool              { return f.busy }

func newTestServer(t *testing.T, svc Service) *httptest.Server {
	t.Helper()
	h := NewHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(NewRouter(h, 5*time.Second))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeService{canonical: []string{"Acme Corp"}})

	resp := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["canonical_list"])
	assert.Equal(t, "personal_boycott_list.txt", body["personal_list"])
	assert.Equal(t, true, body["personal_saves"])
	assert.Equal(t, false, body["checking"])
}

func TestHealthReportsBusyAndReadOnlyList(t *testing.T) {
	srv := newTestServer(t, &fakeService{busy: true, readOnly: true})

	var body map[string]interface{}
	decode(t, get(t, srv.URL+"/health"), &body)
	assert.Equal(t, false, body["canonical_list"])
	assert.Equal(t, false, body["personal_saves"])
	assert.Equal(t, true, body["checking"])
}

func TestCheck(t *testing.T) {
	srv := newTestServer(t, &fakeService{canonical: []string{"Acme Corp"}})

	resp := post(t, srv.URL+"/api/v1/check", `{"url":"https://www.amazon.com/dp/B0ABCDEF12"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body CheckResponse
	decode(t, resp, &body)
	assert.Equal(t, "8b0e3f5e-1f3a-4b7e-9c49-1b2f6c1d2e3f", body.ID)
	assert.Equal(t, "Acme Corp", body.Product.Manufacturer)
	assert.True(t, body.Verdict.IsBoycotted)
	assert.Equal(t, models.SourceCanonical, body.Verdict.Source)
	assert.Contains(t, body.Text, "WARNING: This product was made in China.")
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{
			name:   "malformed body",
			body:   `{"url":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing url",
			body:   `{"url":"  "}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid url",
			body:   `{"url":"not a url"}`,
			err:    fmt.Errorf("%w: scheme must be http or https", scraper.ErrInvalidURL),
			status: http.StatusBadRequest,
			code:   browser.ErrCodeInvalidURL,
		},
		{
			name:   "in progress",
			body:   `{"url":"https://www.amazon.com/dp/B0ABCDEF12"}`,
			err:    detector.ErrCheckInProgress,
			status: http.StatusConflict,
		},
		{
			name:   "render error",
			body:   `{"url":"https://www.amazon.com/dp/B0ABCDEF12"}`,
			err:    browser.NewRenderError(browser.ErrCodeBlocked, "robot check", nil),
			status: http.StatusBadGateway,
			code:   browser.ErrCodeBlocked,
		},
		{
			name:   "unexpected",
			body:   `{"url":"https://www.amazon.com/dp/B0ABCDEF12"}`,
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeService{checkErr: tt.err})

			resp := post(t, srv.URL+"/api/v1/check", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body ErrorResponse
			decode(t, resp, &body)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestListBoycotts(t *testing.T) {
	srv := newTestServer(t, &fakeService{canonical: []string{"Acme Corp", "Widgets Inc"}})

	var body ListResponse
	decode(t, get(t, srv.URL+"/api/v1/boycotts"), &body)
	assert.Equal(t, []string{"Acme Corp", "Widgets Inc"}, body.Names)
	assert.Equal(t, 2, body.Count)
	assert.True(t, body.Available)
}

func TestListBoycottsUnavailable(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	var body ListResponse
	decode(t, get(t, srv.URL+"/api/v1/boycotts"), &body)
	assert.Equal(t, []string{}, body.Names)
	assert.False(t, body.Available)
}

func TestPersonal(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(t, svc)

	resp := post(t, srv.URL+"/api/v1/personal", `{"name":" Acme Corp "}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var added AddPersonalResponse
	decode(t, resp, &added)
	assert.Equal(t, AddPersonalResponse{Name: "Acme Corp", Added: true}, added)

	resp = post(t, srv.URL+"/api/v1/personal", `{"name":"Acme Corp"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &added)
	assert.False(t, added.Added)

	var list ListResponse
	decode(t, get(t, srv.URL+"/api/v1/personal"), &list)
	assert.Equal(t, []string{"Acme Corp"}, list.Names)
}

func TestPersonalErrors(t *testing.T) {
	srv := newTestServer(t, &fakeService{})
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/api/v1/personal", `{"name":""}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/api/v1/personal", `nope`).StatusCode)

	resp := post(t, srv.URL+"/api/v1/personal", `{"name":"Unknown"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, detector.ErrUnknownManufacturer.Error(), body.Error)

	srv = newTestServer(t, &fakeService{saveErr: errors.New("disk full")})
	assert.Equal(t, http.StatusInternalServerError, post(t, srv.URL+"/api/v1/personal", `{"name":"Acme Corp"}`).StatusCode)
}
