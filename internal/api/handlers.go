package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/maltedev/boycott-detector/internal/browser"
	"github.com/maltedev/boycott-detector/internal/detector"
	"github.com/maltedev/boycott-detector/internal/models"
	"github.com/maltedev/boycott-detector/internal/scraper"
)

// Service is what the handlers need from a detector session.
type Service interface {
	Check(ctx context.Context, url string) (*detector.Result, error)
	AddName(name string) (bool, error)
	CanonicalList() []string
	PersonalNames() []string
	PersonalPath() string
	PersonalWritable() bool
	Busy() bool
}

type Handlers struct {
	service Service
	logger  *slog.Logger
}

func NewHandlers(service Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service: service,
		logger:  logger.With("component", "api"),
	}
}

// CheckRequest asks for a verdict on one product page
type CheckRequest struct {
	URL string `json:"url"`
}

// CheckResponse carries the structured verdict and the text shown in the shell
type CheckResponse struct {
	ID      string                `json:"id"`
	Product *models.ProductRecord `json:"product"`
	Verdict models.Verdict        `json:"verdict"`
	Text    string                `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Check handles POST /api/v1/check
func (h *Handlers) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	res, err := h.service.Check(r.Context(), req.URL)
	if err != nil {
		h.respondCheckError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, CheckResponse{
		ID:      res.ID.String(),
		Product: res.Record,
		Verdict: res.Verdict,
		Text:    res.Text(),
	})
}

func (h *Handlers) respondCheckError(w http.ResponseWriter, err error) {
	var renderErr *browser.RenderError

	switch {
	case errors.Is(err, detector.ErrCheckInProgress):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, scraper.ErrInvalidURL):
		h.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: browser.ErrCodeInvalidURL})
	case errors.As(err, &renderErr):
		h.logger.Error("check failed", "error", err, "code", renderErr.Code)
		h.respondJSON(w, http.StatusBadGateway, ErrorResponse{Error: renderErr.Message, Code: renderErr.Code})
	default:
		h.logger.Error("check failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "check failed")
	}
}

type ListResponse struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
	// Available is false when the canonical list could not be fetched at startup.
	Available bool `json:"available"`
}

// ListBoycotts handles GET /api/v1/boycotts
func (h *Handlers) ListBoycotts(w http.ResponseWriter, r *http.Request) {
	names := h.service.CanonicalList()
	resp := ListResponse{Names: names, Count: len(names), Available: names != nil}
	if names == nil {
		resp.Names = []string{}
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// ListPersonal handles GET /api/v1/personal
func (h *Handlers) ListPersonal(w http.ResponseWriter, r *http.Request) {
	names := h.service.PersonalNames()
	if names == nil {
		names = []string{}
	}
	h.respondJSON(w, http.StatusOK, ListResponse{Names: names, Count: len(names), Available: true})
}

type AddPersonalRequest struct {
	Name string `json:"name"`
}

type AddPersonalResponse struct {
	Name  string `json:"name"`
	Added bool   `json:"added"`
}

// AddPersonal handles POST /api/v1/personal
func (h *Handlers) AddPersonal(w http.ResponseWriter, r *http.Request) {
	var req AddPersonalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	added, err := h.service.AddName(name)
	if err != nil {
		switch {
		case errors.Is(err, detector.ErrEmptyName):
			h.respondError(w, http.StatusBadRequest, "name is required")
			return
		case errors.Is(err, detector.ErrUnknownManufacturer):
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to add personal boycott", "error", err, "name", name)
		h.respondError(w, http.StatusInternalServerError, "failed to save personal boycott list")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	h.respondJSON(w, status, AddPersonalResponse{Name: name, Added: added})
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":         "ok",
		"canonical_list": h.service.CanonicalList() != nil,
		"personal_list":  h.service.PersonalPath(),
		"personal_saves": h.service.PersonalWritable(),
		"checking":       h.service.Busy(),
	}
	h.respondJSON(w, http.StatusOK, health)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}
