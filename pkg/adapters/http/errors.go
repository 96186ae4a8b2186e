package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/importer"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/serializer"
	"github.com/sony/gobreaker/v2"
)

var errBadRequest = errors.New("bad request")

// rejectedError carries the diagnostics of an operation the tree skipped.
type rejectedError struct {
	op    string
	diags []domain.Diagnostic
}

func (e *rejectedError) Error() string {
	if len(e.diags) == 0 {
		return e.op + " rejected"
	}
	d := e.diags[len(e.diags)-1]
	return fmt.Sprintf("%s rejected: %s (%s)", e.op, d.Kind, d.Detail)
}

type errorResponse struct {
	Error       string              `json:"error"`
	Diagnostics []domain.Diagnostic `json:"diagnostics,omitempty"`
}

func statusOf(err error) int {
	var rej *rejectedError
	switch {
	case errors.As(err, &rej):
		if len(rej.diags) == 0 {
			return http.StatusConflict
		}
		switch rej.diags[len(rej.diags)-1].Kind {
		case domain.DiagReferenceNotFound:
			return http.StatusNotFound
		case domain.DiagMalformedNode:
			return http.StatusBadRequest
		default:
			return http.StatusConflict
		}
	case errors.Is(err, ports.ErrDocumentNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID), errors.Is(err, domain.ErrCycle):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidNode),
		errors.Is(err, ports.ErrInvalidDocumentID),
		errors.Is(err, serializer.ErrNotDocument),
		errors.Is(err, importer.ErrUnsupportedPayload),
		errors.Is(err, importer.ErrUnknownTemplate):
		return http.StatusBadRequest
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	resp := errorResponse{Error: err.Error()}
	var rej *rejectedError
	if errors.As(err, &rej) {
		resp.Diagnostics = rej.diags
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.Logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, resp)
}
