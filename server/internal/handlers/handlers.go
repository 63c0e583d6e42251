package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ritchiero/Budget-Agent/internal/assistant"
	"github.com/ritchiero/Budget-Agent/internal/logger"
	"github.com/ritchiero/Budget-Agent/internal/pricing"
	"github.com/ritchiero/Budget-Agent/internal/report"
)

// EstimateDefaultModel is used by the estimate endpoint when no model is given
const EstimateDefaultModel = "claude-sonnet-4-20250514"

// Analyzer is the set of reports the API serves
type Analyzer interface {
	Overview() (*report.Overview, error)
	HiddenCosts() (*report.HiddenCosts, error)
	Timeline() (*report.Timeline, error)
	Estimate(task, targetModel string) (*report.Estimate, error)
}

// Responder answers chat messages
type Responder interface {
	Reply(ctx context.Context, message string) (*assistant.Reply, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer  Analyzer
	assistant Responder
	templates *template.Template
	dataDir   string
}

// New creates a new Handler
func New(analyzer Analyzer, assistant Responder, templates *template.Template, dataDir string) *Handler {
	return &Handler{
		analyzer:  analyzer,
		assistant: assistant,
		templates: templates,
		dataDir:   dataDir,
	}
}

type dashboardData struct {
	DataDir    string
	Overview   *report.Overview
	Hidden     *report.HiddenCosts
	Categories []report.CategoryRow
}

// Index renders the dashboard page
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analyzer.Overview()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	hidden, err := h.analyzer.HiddenCosts()
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", dashboardData{
		DataDir:    h.dataDir,
		Overview:   overview,
		Hidden:     hidden,
		Categories: hidden.Rows(),
	}); err != nil {
		logger.Log.WithError(err).Error("Failed to render dashboard")
	}
}

// APIOverview returns sessions and spend per log file
func (h *Handler) APIOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analyzer.Overview()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, overview)
}

// APIHiddenCosts returns the hidden-cost analysis
func (h *Handler) APIHiddenCosts(w http.ResponseWriter, r *http.Request) {
	hidden, err := h.analyzer.HiddenCosts()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, hidden)
}

// APITimeline returns the recent cost timeline
func (h *Handler) APITimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := h.analyzer.Timeline()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, timeline)
}

// APIEstimate estimates the cost of a described task
func (h *Handler) APIEstimate(w http.ResponseWriter, r *http.Request) {
	task := strings.TrimSpace(r.URL.Query().Get("task"))
	if task == "" {
		h.jsonError(w, "task parameter required", http.StatusBadRequest)
		return
	}

	model := r.URL.Query().Get("model")
	if model == "" {
		model = EstimateDefaultModel
	}
	if !pricing.Known(model) {
		logger.Log.WithField("model", model).Debug("Unknown model, estimating with default pricing")
	}

	estimate, err := h.analyzer.Estimate(task, model)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, estimate)
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string `json:"message"`
}

// APIChat answers a question about agent spend
func (h *Handler) APIChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.assistant.Reply(r.Context(), req.Message)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, reply)
}

// Health handles the health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "healthy"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.WithFields(logrus.Fields{
		"path":  r.URL.Path,
		"error": err.Error(),
	}).Error("Request failed")
	h.jsonError(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
