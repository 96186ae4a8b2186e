// Package mcp exposes document editing as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DocumentsURI lists the stored documents.
const DocumentsURI = "pagecraft://documents"

// Server exposes a session manager as an MCP server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		sessions:  sessions,
		logger:    logger,
		mcpServer: server.NewMCPServer("pagecraft-mcp", pagecraft.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Tool arguments and results.

type listArgs struct {
	Document string `json:"document"`
	Parent   string `json:"parent,omitempty"`
}

type addArgs struct {
	Document string         `json:"document"`
	ID       string         `json:"id,omitempty"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	ParentID string         `json:"parent_id,omitempty"`
}

type updateArgs struct {
	Document string         `json:"document"`
	ID       string         `json:"id"`
	Type     string         `json:"type,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
}

type deleteArgs struct {
	Document string `json:"document"`
	ID       string `json:"id"`
}

type moveArgs struct {
	Document string `json:"document"`
	ID       string `json:"id"`
	Target   string `json:"target"`
	Position string `json:"position"`
}

type importArgs struct {
	Document string `json:"document"`
	Payload  any    `json:"payload,omitempty"`
	Template string `json:"template,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

type renderArgs struct {
	Document string `json:"document"`
	Page     string `json:"page,omitempty"`
}

// ComponentsResult lists nodes in document order.
type ComponentsResult struct {
	Nodes []domain.Node `json:"nodes" jsonschema_description:"Components in document order"`
}

// MutationResult reports the effect of an edit.
type MutationResult struct {
	IDs         []string            `json:"ids" jsonschema_description:"Affected component ids"`
	Diagnostics []domain.Diagnostic `json:"diagnostics,omitempty" jsonschema_description:"Skipped or repaired operations"`
}

// RenderResult carries rendered markup.
type RenderResult struct {
	HTML string `json:"html" jsonschema_description:"Rendered HTML fragment"`
}

func (s *Server) registerTools() {
	doc := mcp.WithString("document", mcp.Required(), mcp.Description("Document id"))

	s.mcpServer.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List the components of a document in order. With parent, list only its children."),
		doc,
		mcp.WithString("parent", mcp.Description("Parent component id (optional)")),
		mcp.WithOutputSchema[ComponentsResult](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("add_component",
		mcp.WithDescription("Add one component. Without an id, one is generated."),
		doc,
		mcp.WithString("type", mcp.Required(), mcp.Description("Element type, e.g. div, h1, button")),
		mcp.WithString("id", mcp.Description("Component id (optional)")),
		mcp.WithObject("props", mcp.Description("Props: children text, className, style object, element attributes")),
		mcp.WithString("parent_id", mcp.Description("Parent component id; empty adds a root")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleAdd))

	s.mcpServer.AddTool(mcp.NewTool("update_component",
		mcp.WithDescription("Merge props into a component. A null prop deletes it; style merges per key."),
		doc,
		mcp.WithString("id", mcp.Required(), mcp.Description("Component id")),
		mcp.WithString("type", mcp.Description("New element type (optional)")),
		mcp.WithObject("props", mcp.Description("Props to merge")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleUpdate))

	s.mcpServer.AddTool(mcp.NewTool("delete_component",
		mcp.WithDescription("Delete a component and all of its descendants."),
		doc,
		mcp.WithString("id", mcp.Required(), mcp.Description("Component id")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleDelete))

	s.mcpServer.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component before, after or inside a target component."),
		doc,
		mcp.WithString("id", mcp.Required(), mcp.Description("Component to move")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target component id")),
		mcp.WithString("position", mcp.Required(), mcp.Enum("before", "after", "inside")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleMove))

	s.mcpServer.AddTool(mcp.NewTool("import_components",
		mcp.WithDescription("Import a nested component payload, or a named template, in one step."),
		doc,
		mcp.WithObject("payload", mcp.Description("Nested node object ({type, props, children})")),
		mcp.WithString("template", mcp.Description("Template name, e.g. hero, features, footer")),
		mcp.WithString("parent_id", mcp.Description("Parent component id; empty imports roots")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleImport))

	s.mcpServer.AddTool(mcp.NewTool("render_html",
		mcp.WithDescription("Render a document, or one of its pages, to HTML."),
		doc,
		mcp.WithString("page", mcp.Description("Page id (optional)")),
		mcp.WithOutputSchema[RenderResult](),
	), mcp.NewStructuredToolHandler(s.handleRender))
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest, args listArgs) (ComponentsResult, error) {
	var res ComponentsResult
	err := s.sessions.View(ctx, args.Document, func(eng *pagecraft.Engine) error {
		if args.Parent == "" {
			res.Nodes = eng.Tree().List()
			return nil
		}
		if !eng.Tree().Has(args.Parent) {
			return fmt.Errorf("parent %s: %w", args.Parent, domain.ErrNodeNotFound)
		}
		res.Nodes = eng.Tree().Children(args.Parent)
		return nil
	})
	if res.Nodes == nil {
		res.Nodes = []domain.Node{}
	}
	return res, err
}

func (s *Server) handleAdd(ctx context.Context, _ mcp.CallToolRequest, args addArgs) (MutationResult, error) {
	if args.Type == "" {
		return MutationResult{}, fmt.Errorf("type: %w", domain.ErrInvalidNode)
	}
	var res MutationResult
	err := s.sessions.Edit(ctx, args.Document, func(eng *pagecraft.Engine) error {
		if args.ID == "" {
			ids, err := eng.Import(map[string]any{"type": args.Type, "props": args.Props}, args.ParentID)
			res.IDs = ids
			return err
		}
		node := domain.Node{ID: args.ID, Type: args.Type, Props: domain.PropsFromMap(args.Props)}
		if err := eng.Add(node, args.ParentID); err != nil {
			return err
		}
		res.IDs = []string{args.ID}
		return nil
	})
	return res, err
}

func (s *Server) handleUpdate(ctx context.Context, _ mcp.CallToolRequest, args updateArgs) (MutationResult, error) {
	patch := domain.NodePatch{Type: args.Type, Props: domain.PropsFromMap(args.Props)}
	var res MutationResult
	err := s.sessions.Edit(ctx, args.Document, func(eng *pagecraft.Engine) error {
		if !eng.Update(args.ID, patch) {
			return rejected("update", eng.Diagnostics())
		}
		res.IDs = []string{args.ID}
		return nil
	})
	return res, err
}

func (s *Server) handleDelete(ctx context.Context, _ mcp.CallToolRequest, args deleteArgs) (MutationResult, error) {
	var res MutationResult
	err := s.sessions.Edit(ctx, args.Document, func(eng *pagecraft.Engine) error {
		res.IDs = eng.Delete(args.ID)
		if len(res.IDs) == 0 {
			return fmt.Errorf("component %s: %w", args.ID, domain.ErrNodeNotFound)
		}
		return nil
	})
	return res, err
}

func (s *Server) handleMove(ctx context.Context, _ mcp.CallToolRequest, args moveArgs) (MutationResult, error) {
	var res MutationResult
	err := s.sessions.Edit(ctx, args.Document, func(eng *pagecraft.Engine) error {
		if !eng.Reorder(args.ID, args.Target, domain.Position(args.Position)) {
			return rejected("move", eng.Diagnostics())
		}
		res.IDs = []string{args.ID}
		return nil
	})
	return res, err
}

func (s *Server) handleImport(ctx context.Context, _ mcp.CallToolRequest, args importArgs) (MutationResult, error) {
	if (args.Payload == nil) == (args.Template == "") {
		return MutationResult{}, errors.New("exactly one of payload or template is required")
	}
	var res MutationResult
	err := s.sessions.Edit(ctx, args.Document, func(eng *pagecraft.Engine) error {
		var err error
		if args.Template != "" {
			res.IDs, err = eng.ImportTemplate(args.Template, args.ParentID)
		} else {
			res.IDs, err = eng.Import(args.Payload, args.ParentID)
		}
		res.Diagnostics = eng.Diagnostics()
		return err
	})
	return res, err
}

func (s *Server) handleRender(ctx context.Context, _ mcp.CallToolRequest, args renderArgs) (RenderResult, error) {
	var res RenderResult
	err := s.sessions.View(ctx, args.Document, func(eng *pagecraft.Engine) error {
		if args.Page != "" {
			res.HTML = eng.RenderPage(args.Page)
		} else {
			res.HTML = eng.RenderHTML()
		}
		return nil
	})
	return res, err
}

func rejected(op string, diags []domain.Diagnostic) error {
	if len(diags) == 0 {
		return fmt.Errorf("%s rejected", op)
	}
	d := diags[len(diags)-1]
	return fmt.Errorf("%s rejected: %s: %s", op, d.Kind, d.Detail)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DocumentsURI, "Stored documents",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		data, _ := json.Marshal(map[string][]string{"documents": ids})
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      DocumentsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
