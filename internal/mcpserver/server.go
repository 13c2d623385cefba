// Package mcpserver exposes the lifecycle engine's batch operators as MCP
// (Model Context Protocol) tools over stdio transport, so LLM agents can
// drive the same library calls the CLI uses.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvantol/ansuz/internal/coordinator"
	"github.com/mvantol/ansuz/internal/enrich"
	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/promote"
	"github.com/mvantol/ansuz/internal/storage"
	"github.com/mvantol/ansuz/internal/workflow"
)

// Server wraps the MCP server with Ansuz lifecycle tools.
type Server struct {
	mcp     *server.MCPServer
	wf      *workflow.Workflow
	engine  *promote.Engine
	triage  *coordinator.Triage
	orphans *coordinator.Orphans
	stats   *coordinator.Stats
}

// New creates an MCP server over the vault at root with all lifecycle tools
// registered. Callers own Close.
func New(root string, enricher enrich.Enricher, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := layout.Resolve(root)
	if err != nil {
		return nil, err
	}
	if err := l.EnsureExists(); err != nil {
		return nil, err
	}
	store, err := storage.NewFS(l.Root)
	if err != nil {
		return nil, err
	}
	triage, err := coordinator.NewTriage(root, enricher, logger)
	if err != nil {
		return nil, err
	}
	orphans, err := coordinator.NewOrphans(root, enricher, logger)
	if err != nil {
		return nil, err
	}
	stats, err := coordinator.NewStats(root, enricher, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		wf:      workflow.New(store, l, enricher, logger),
		engine:  promote.New(store, l, logger),
		triage:  triage,
		orphans: orphans,
		stats:   stats,
	}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("process_note",
		mcp.WithDescription("Run one captured note through enrichment and the inbox → promoted transition."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path relative to the vault root (e.g. inbox/idea.md)")),
		mcp.WithString("preview", mcp.Description("Set to 'true' to compute without writing")),
	), s.processNote)

	s.mcp.AddTool(mcp.NewTool("promote_notes",
		mcp.WithDescription("Relocate quality-gated promoted notes from the capture area to their type directories."),
		mcp.WithString("threshold", mcp.Description("Quality threshold override in [0,1]; empty uses the vault's configured threshold")),
	), s.promoteNotes)

	s.mcp.AddTool(mcp.NewTool("triage_report",
		mcp.WithDescription("Rank captured notes by quality and age for review. Read-only."),
	), s.triageReport)

	s.mcp.AddTool(mcp.NewTool("list_orphans",
		mcp.WithDescription("Find permanent notes with no inbound or outbound cross-references. Read-only unless archive is 'true'."),
		mcp.WithString("archive", mcp.Description("Set to 'true' to move orphans into the archive")),
	), s.listOrphans)

	s.mcp.AddTool(mcp.NewTool("vault_stats",
		mcp.WithDescription("Lifecycle aggregates: note counts by status and type, average quality, tag frequencies."),
	), s.vaultStats)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical Ansuz note format contract. Call this before creating notes elsewhere."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical note format with lifecycle front matter."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s, nil
}

// Close releases resources held by the underlying coordinators.
func (s *Server) Close() error {
	return s.stats.Close()
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) processNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := workflow.Options{PreviewOnly: boolArg(req, "preview")}
	res, err := s.wf.Process(ctx, path, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) promoteNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threshold := 0.0
	if raw := stringArg(req, "threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid threshold %q", raw)), nil
		}
		threshold = t
	}
	res, err := s.engine.AutoPromote(ctx, threshold)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) triageReport(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.triage.Report(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) listOrphans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dryRun := !boolArg(req, "archive")
	report, err := s.orphans.Remediate(ctx, dryRun)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) vaultStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.stats.Collect(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

// stringArg reads an optional string argument.
func stringArg(req mcp.CallToolRequest, key string) string {
	v, err := req.RequireString(key)
	if err != nil {
		return ""
	}
	return v
}

// boolArg treats the literal string "true" as true.
func boolArg(req mcp.CallToolRequest, key string) bool {
	return stringArg(req, key) == "true"
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
