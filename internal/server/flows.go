package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/subhasish12345/SHOPSAGE/internal/audit"
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/llm"
	"github.com/subhasish12345/SHOPSAGE/internal/model"
)

// journalHeader carries the journal ID of a recorded invocation.
const journalHeader = "X-Journal-ID"

// maxBody bounds invocation request bodies.
const maxBody = 1 << 20

func registerFlowRoutes(r chi.Router, s *Server) {
	r.Route("/api/flows", func(r chi.Router) {
		r.Get("/", handleList(s.runner.Registry()))
		r.Get("/{name}", handleGet(s.runner.Registry()))
		r.Post("/{name}/invoke", s.handleInvoke)
	})
}

func handleList(reg *flow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg.List())
	}
}

func handleGet(reg *flow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := reg.Get(chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, def)
	}
}

// dryRun is returned for ?dry_run=true.
type dryRun struct {
	Request         model.Request `json:"request"`
	EstimatedTokens int           `json:"estimated_tokens"`
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
		return
	}
	if len(body) > maxBody {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
		return
	}
	input, err := decodeInput(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if dry, _ := strconv.ParseBool(r.URL.Query().Get("dry_run")); dry {
		req, detail := s.runner.Prepare(name, input)
		if detail != nil {
			res := flow.Failure(detail)
			writeJSON(w, StatusFor(res), res)
			return
		}
		writeJSON(w, http.StatusOK, dryRun{Request: req, EstimatedTokens: llm.EstimateRequestTokens(req)})
		return
	}

	res := s.runner.Invoke(r.Context(), name, input)
	if id := s.record(r.Context(), name, input, res); id != "" {
		w.Header().Set(journalHeader, id)
	}
	writeJSON(w, StatusFor(res), res)
}

// record writes res to the journal. Journal failures are logged and never
// change the response.
func (s *Server) record(ctx context.Context, name string, input any, res flow.Result) string {
	if s.journal == nil {
		return ""
	}
	entry, err := audit.NewEntry(audit.SourceAPI, name, input, res)
	if err == nil {
		var id string
		if id, err = s.journal.Log(context.WithoutCancel(ctx), entry); err == nil {
			return id
		}
	}
	s.logger.Error("journal write failed", zap.String("flow", name), zap.Error(err))
	return ""
}

// decodeInput parses a JSON request body. Numbers stay json.Number so large
// values survive validation unchanged. An empty body is an empty object.
func decodeInput(body []byte) (any, error) {
	if len(body) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var input any
	if err := dec.Decode(&input); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON body: trailing data")
	}
	return input, nil
}

// StatusFor maps a result to an HTTP status code.
func StatusFor(res flow.Result) int {
	d := res.Err()
	if d == nil {
		return http.StatusOK
	}
	switch d.Kind {
	case flow.KindNotFound:
		return http.StatusNotFound
	case flow.KindInputValidation:
		return http.StatusUnprocessableEntity
	case flow.KindRender:
		return http.StatusInternalServerError
	case flow.KindOutputValidation:
		return http.StatusBadGateway
	case flow.KindModelInvocation:
		if d.Model == nil {
			return http.StatusBadGateway
		}
		switch {
		case d.Model.Reason == model.ReasonTimeout || d.Model.Reason == model.ReasonCanceled:
			return http.StatusGatewayTimeout
		case d.Model.Transient():
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
