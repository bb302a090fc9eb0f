package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sea-labs/sea/tool"
)

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// toolSummary is the list-view projection of a registration, with the
// scheduler's last observed status when one is running.
type toolSummary struct {
	Name   string      `json:"name"`
	Kind   tool.Kind   `json:"kind"`
	Origin tool.Origin `json:"origin,omitempty"`
	Status tool.Status `json:"status"`
}

// handleListTools returns all registered categories in registration order.
func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	regs := s.tools.All()
	summaries := make([]toolSummary, 0, len(regs))
	for _, reg := range regs {
		status := reg.Status
		if s.scheduler != nil {
			if observed, ok := s.scheduler.Status(reg.Name); ok {
				status = observed
			}
		}
		summaries = append(summaries, toolSummary{
			Name:   reg.Name,
			Kind:   reg.Descriptor.Kind,
			Origin: reg.Origin,
			Status: status,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleGetTool returns a single registration by exact name.
func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	reg, ok := s.tools.Registration(name)
	if !ok {
		writeError(w, http.StatusNotFound, tool.ErrorCodeUnknownTool, fmt.Sprintf("tool %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// validateResponse reports a requirement-check outcome.
type validateResponse struct {
	Tool  string `json:"tool"`
	Valid bool   `json:"valid"`
	Code  string `json:"code,omitempty"`
}

// handleValidateTool runs the requirement policy for one category.
func (s *Server) handleValidateTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	err := s.tools.Validate(r.Context(), name)
	if err != nil {
		if toolErr, ok := tool.ErrorFrom(err); ok && toolErr.Code == tool.ErrorCodeUnknownTool {
			writeToolError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, validateResponse{
			Tool: name,
			Code: tool.ErrorCode(err, tool.ErrorCodeUnmetRequirement),
		})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Tool: name, Valid: true})
}

// executeRequest is the execute endpoint body.
type executeRequest struct {
	Params map[string]any `json:"params"`
}

// handleExecuteTool dispatches one execution through the manager.
func (s *Server) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if isMaxBytesError(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "READ_ERROR", err.Error())
		return
	}

	var req executeRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, tool.ErrorCodeInvalidParams, err.Error())
			return
		}
	}

	result, err := s.tools.Execute(r.Context(), name, req.Params)
	if err != nil {
		writeToolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetConfig returns the configuration value at a dotted key path.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if s.appConfig == nil {
		writeError(w, http.StatusNotFound, "CONFIG_UNAVAILABLE", "no configuration loaded")
		return
	}
	value := s.appConfig.Get(key)
	if value == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("config key %q not found", key))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": value})
}

func isMaxBytesError(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
