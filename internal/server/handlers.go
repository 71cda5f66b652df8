package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haowjy/complaint-mailer/drafter"
	"github.com/haowjy/complaint-mailer/internal/logger"
	"github.com/haowjy/complaint-mailer/llmprovider"
)

const (
	msgNotConfigured  = "LLM service is not configured correctly."
	msgProcessingFail = "An error occurred during AI processing: "
)

var errNoDraft = errors.New("generator returned no draft")

// draftResponse is the success body. It carries exactly subject and body.
type draftResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	LLMConfigured bool   `json:"llmConfigured"`
	ConfigError   string `json:"configError,omitempty"`
	Uptime        string `json:"uptime"`
	Requests4xx   int64  `json:"requests4xx"`
	Requests5xx   int64  `json:"requests5xx"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, map[string]any{
		"Provider":   s.opts.Provider,
		"Model":      s.opts.Model,
		"Configured": s.Configured(),
	})
	if err != nil {
		logger.Error("render index", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	counters := logger.Snapshot()
	resp := healthResponse{
		Status:        "ok",
		Provider:      s.opts.Provider,
		Model:         s.opts.Model,
		LLMConfigured: s.Configured(),
		Uptime:        time.Since(s.started).Round(time.Second).String(),
		Requests4xx:   counters.HTTP4xx,
		Requests5xx:   counters.HTTP5xx,
	}
	if s.genErr != nil {
		resp.ConfigError = s.genErr.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerateEmail(w http.ResponseWriter, r *http.Request) {
	if s.genErr != nil {
		respondError(w, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, errNoJSONBody.Message)
		return
	}

	complaint, verr := parseComplaint(body)
	if verr != nil {
		respondError(w, http.StatusBadRequest, verr.Message)
		return
	}

	start := time.Now()
	draft, err := s.generator.Generate(r.Context(), drafter.BuildPrompt(complaint))
	if err == nil && draft == nil {
		err = errNoDraft
	}
	if err != nil {
		logger.Error("LLM invocation failed",
			"order_id", complaint.OrderID,
			"retryable", llmprovider.IsRetryable(err),
			"auth_error", llmprovider.IsAuthError(err),
			"invalid_request", llmprovider.IsInvalidRequest(err),
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("%s%v", msgProcessingFail, err))
		return
	}

	logger.Info("email draft generated",
		"order_id", complaint.OrderID,
		"duration", time.Since(start).String(),
	)
	respondJSON(w, http.StatusOK, draftResponse{Subject: draft.Subject, Body: draft.Body})
}
