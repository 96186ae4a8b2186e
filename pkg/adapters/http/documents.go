package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/render"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, maxBodyBytes)
	}
	return data, nil
}

func decodeBody(r *http.Request, v any) error {
	data, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"documents": ids})
}

// GetDocument handles GET /documents/{doc}. The body is always the current schema.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	var data []byte
	err := s.Sessions.View(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		var err error
		data, err = eng.Save()
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// PutDocument handles PUT /documents/{doc}.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var summary pagecraft.Summary
	var diags []domain.Diagnostic
	err = s.Sessions.Put(r.Context(), chi.URLParam(r, "doc"), data)
	if err == nil {
		err = s.Sessions.View(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
			summary = eng.Inspect()
			diags = eng.Diagnostics()
			return nil
		})
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary, "diagnostics": diags})
}

// DeleteDocument handles DELETE /documents/{doc}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "doc")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNodes handles GET /documents/{doc}/nodes. With ?parent= it lists the
// children of one node in order.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	parent := r.URL.Query().Get("parent")
	var nodes []domain.Node
	err := s.Sessions.View(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		if parent == "" {
			nodes = eng.Tree().List()
			return nil
		}
		if !eng.Tree().Has(parent) {
			return fmt.Errorf("parent %s: %w", parent, domain.ErrNodeNotFound)
		}
		nodes = eng.Tree().Children(parent)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if nodes == nil {
		nodes = []domain.Node{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

type addNodeRequest struct {
	Node     domain.Node `json:"node"`
	ParentID string      `json:"parentId"`
}

// AddNode handles POST /documents/{doc}/nodes.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var added domain.Node
	err := s.Sessions.Edit(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		if err := eng.Add(req.Node, req.ParentID); err != nil {
			return err
		}
		added, _ = eng.Tree().Get(req.Node.ID)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// UpdateNode handles PATCH /documents/{doc}/nodes/{node}.
func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var patch domain.NodePatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "node")
	var updated domain.Node
	err := s.Sessions.Edit(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		if !eng.Update(id, patch) {
			return &rejectedError{op: "update", diags: eng.Diagnostics()}
		}
		updated, _ = eng.Tree().Get(id)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteNode handles DELETE /documents/{doc}/nodes/{node}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "node")
	var removed []string
	err := s.Sessions.Edit(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		removed = eng.Delete(id)
		if len(removed) == 0 {
			return fmt.Errorf("node %s: %w", id, domain.ErrNodeNotFound)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"removed": removed})
}

type moveRequest struct {
	Target   string          `json:"target"`
	Position domain.Position `json:"position"`
}

// MoveNode handles POST /documents/{doc}/nodes/{node}/move.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "node")
	var moved domain.Node
	err := s.Sessions.Edit(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		if !eng.Reorder(id, req.Target, req.Position) {
			return &rejectedError{op: "move", diags: eng.Diagnostics()}
		}
		moved, _ = eng.Tree().Get(id)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}

// AssignPage handles POST /documents/{doc}/pages/{page}/roots/{node}.
func (s *Server) AssignPage(w http.ResponseWriter, r *http.Request) {
	id, page := chi.URLParam(r, "node"), chi.URLParam(r, "page")
	err := s.Sessions.Edit(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		if !eng.AssignPage(id, page) {
			return &rejectedError{op: "assign page", diags: eng.Diagnostics()}
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"node": id, "page": page})
}

// Import handles POST /documents/{doc}/import. The body is an import payload;
// ?template=name imports a library snippet instead. ?parent= nests the batch.
func (s *Server) Import(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	parent, template := q.Get("parent"), q.Get("template")

	var data []byte
	if template == "" {
		var err error
		if data, err = readBody(r); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	var ids []string
	var diags []domain.Diagnostic
	err := s.Sessions.Edit(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		var err error
		if template != "" {
			ids, err = eng.ImportTemplate(template, parent)
		} else {
			ids, err = eng.ImportJSON(data, parent)
		}
		diags = eng.Diagnostics()
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ids": ids, "diagnostics": diags})
}

// GetHTML handles GET /documents/{doc}/html[?page=].
func (s *Server) GetHTML(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	var markup string
	err := s.Sessions.View(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		if page != "" {
			markup = eng.RenderPage(page)
		} else {
			markup = eng.RenderHTML()
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, markup)
}

type exportRequest struct {
	CSS   string `json:"css"`
	Title string `json:"title"`
	Page  string `json:"page"`
	// Publish, when set, uploads the export under this key.
	Publish string `json:"publish"`
}

// Export handles POST /documents/{doc}/export. It returns the standalone
// document, or {"url": ...} when the export was published.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Publish != "" && s.Publisher == nil {
		s.writeError(w, r, fmt.Errorf("%w: publishing is not configured", errBadRequest))
		return
	}

	var out string
	err := s.Sessions.View(r.Context(), chi.URLParam(r, "doc"), func(eng *pagecraft.Engine) error {
		if req.Page != "" {
			out = render.Document(eng.RenderPage(req.Page), req.CSS, req.Title)
		} else {
			out = eng.Export(req.CSS, req.Title)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Publish == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, out)
		return
	}
	url, err := s.Publisher.Publish(r.Context(), req.Publish, []byte(out))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("publish: %w", err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
