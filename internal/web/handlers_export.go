package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/JonMunkholm/mealplan/internal/core"
	"github.com/JonMunkholm/mealplan/internal/logging"
)

// maxCallableBody bounds how much of the callable envelope is read.
const maxCallableBody = 64 << 10

// callableRequest is the callable envelope. Data is accepted and unused.
type callableRequest struct {
	Data json.RawMessage `json:"data"`
}

type callableResult struct {
	Result *core.ExportResult `json:"result"`
}

// handleExportUserData serves POST /api/exportUserData. The envelope carries
// no input, so only the caller decides between unauthenticated,
// invalid-argument and running the export.
func (s *Server) handleExportUserData(w http.ResponseWriter, r *http.Request) {
	if err := decodeCallable(r); err != nil {
		logging.FromContext(r.Context()).Debug("ignoring malformed callable envelope", "error", err)
	}

	result, err := s.service.ExportUserData(r.Context(), callerOf(r))
	if err != nil {
		respondCallableError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, callableResult{Result: result})
}

// decodeCallable reads the envelope. An empty body is not an error.
func decodeCallable(r *http.Request) error {
	if r.Body == nil {
		return nil
	}
	var req callableRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxCallableBody)).Decode(&req)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
