package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqla2lint/internal/engine"
	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
	"github.com/leapstack-labs/sqla2lint/pkg/parser"
)

// maxSourceBytes caps the request body of /v1/check.
const maxSourceBytes = 4 << 20

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	Path   string `json:"path"`
	Source string `json:"source"`
}

// Diagnostic is the wire form of a diagnostic. Columns are 1-based.
type Diagnostic struct {
	Code      string `json:"code"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"end_line,omitempty"`
	EndColumn int    `json:"end_column,omitempty"`
	URL       string `json:"url,omitempty"`
}

// FileReport is the result for one file.
type FileReport struct {
	Path        string       `json:"path"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Error       string       `json:"error,omitempty"`
}

// Event is one re-check report pushed on /v1/events.
type Event struct {
	Files  []FileReport `json:"files"`
	Issues int          `json:"issues"`
}

// RuleEntry is a rule with its effective state.
type RuleEntry struct {
	core.RuleInfo
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

// Run is the wire form of a recorded run.
type Run struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Files       int        `json:"files"`
	Issues      int        `json:"issues"`
	Error       string     `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewFileReport converts an engine result to its wire form.
func NewFileReport(result engine.FileResult) FileReport {
	report := FileReport{Path: result.Path, Diagnostics: make([]Diagnostic, 0, len(result.Diagnostics))}
	for _, d := range result.Diagnostics {
		wire := Diagnostic{
			Code:     d.Code,
			Severity: d.Severity.String(),
			Message:  d.Message,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column + 1,
			URL:      d.DocumentationURL,
		}
		if d.EndPos.IsValid() {
			wire.EndLine = d.EndPos.Line
			wire.EndColumn = d.EndPos.Column + 1
		}
		report.Diagnostics = append(report.Diagnostics, wire)
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	}
	return report
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	enabled := s.enabledRules()
	group := r.URL.Query().Get("group")

	entries := []RuleEntry{}
	for _, rule := range lint.GetAll() {
		if group != "" && rule.Group() != group {
			continue
		}
		entries = append(entries, RuleEntry{
			RuleInfo: lint.GetRuleInfo(rule),
			Enabled:  enabled[rule.ID()],
			URL:      lint.BuildDocURL(rule.ID()),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRule(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))
	rule, ok := lint.GetRuleByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown rule %q", id))
		return
	}
	writeJSON(w, http.StatusOK, RuleEntry{
		RuleInfo: lint.GetRuleInfo(rule),
		Enabled:  s.enabledRules()[rule.ID()],
		URL:      lint.BuildDocURL(rule.ID()),
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSourceBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "source too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		req.Path = "<stdin>"
	}

	result := s.engine.CheckSource(r.Context(), req.Path, []byte(req.Source))
	if result.Err != nil && !errors.Is(result.Err, parser.ErrSyntax) {
		// Anything but a syntax error means the request itself went away.
		writeError(w, http.StatusServiceUnavailable, result.Err.Error())
		return
	}
	writeJSON(w, http.StatusOK, NewFileReport(result))
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "run history is disabled")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	out := make([]Run, 0, len(runs))
	for _, run := range runs {
		out = append(out, Run{
			ID:          run.ID,
			Status:      string(run.Status),
			StartedAt:   run.StartedAt,
			CompletedAt: run.CompletedAt,
			Files:       run.Files,
			Issues:      run.Issues,
			Error:       run.Error,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// CheckEvent is the server-sent event name carrying a watch re-check.
const CheckEvent = "check"

// handleEvents streams watch reports as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case report := <-ch:
			event := Event{Files: make([]FileReport, 0, len(report.Files)), Issues: report.Issues()}
			for _, f := range report.Files {
				event.Files = append(event.Files, NewFileReport(f))
			}
			data, err := json.Marshal(event)
			if err != nil {
				s.logger.Error("failed to encode event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", CheckEvent, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) enabledRules() map[string]bool {
	enabled := make(map[string]bool)
	if s.engine == nil {
		return enabled
	}
	for _, rule := range s.engine.Checker().Rules() {
		enabled[rule.ID()] = true
	}
	return enabled
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
