package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/unitime/internal/config"
	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/logger"
	"github.com/hpungsan/unitime/internal/ops"
	"github.com/hpungsan/unitime/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	st  *store.Store
	cfg *config.Config
	log *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, st *store.Store, cfg *config.Config, log *zap.Logger) *Handlers {
	return &Handlers{db: db, st: st, cfg: cfg, log: logger.OrNop(log)}
}

// Request types for each tool

// ImportRequest represents the arguments for import.
type ImportRequest struct {
	Paths     []string         `json:"paths,omitempty"`
	Documents []InlineDocument `json:"documents,omitempty"`
}

// InlineDocument is a timetable page passed directly in the request.
type InlineDocument struct {
	Name string `json:"name,omitempty"`
	HTML string `json:"html"`
}

// ListRequest represents the arguments for list.
type ListRequest struct {
	Course string `json:"course,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// WeeksRequest represents the arguments for weeks.
type WeeksRequest struct {
	Week *int `json:"week,omitempty"`
}

// RemoveCourseRequest represents the arguments for remove_course.
type RemoveCourseRequest struct {
	Name string `json:"name"`
}

// HistoryRequest represents the arguments for history.
type HistoryRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
	Course string `json:"course,omitempty"`
}

// Handler implementations

// HandleImport handles the import tool call. Paths and inline documents are
// mutually exclusive so every file of a batch gets a well-defined position.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var result *ops.ImportOutput
	switch {
	case len(input.Paths) > 0 && len(input.Documents) > 0:
		return errorResult(errors.NewInvalidRequest("specify either paths or documents, not both")), nil
	case len(input.Documents) > 0:
		docs := make([]ops.Document, len(input.Documents))
		for i, d := range input.Documents {
			name := d.Name
			if name == "" {
				name = fmt.Sprintf("document-%d.html", i+1)
			}
			docs[i] = ops.Document{Name: name, ContentType: "text/html", Content: []byte(d.HTML)}
		}
		result, err = ops.ImportDocuments(ctx, h.st, h.db, h.cfg, h.log, docs)
	default:
		result, err = ops.Import(ctx, h.st, h.db, h.cfg, h.log, ops.ImportInput{Paths: input.Paths})
	}
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(h.st, ops.ListInput{
		Course: input.Course,
		From:   input.From,
		To:     input.To,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleWeeks handles the weeks tool call.
func (h *Handlers) HandleWeeks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WeeksRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Weeks(h.st, ops.WeeksInput{Week: input.Week})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStats handles the stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Stats(h.st, h.cfg))
}

// HandleLegend handles the legend tool call.
func (h *Handlers) HandleLegend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Legend(h.st, h.cfg))
}

// HandleRemoveCourse handles the remove_course tool call.
func (h *Handlers) HandleRemoveCourse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveCourseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RemoveCourse(ctx, h.st, h.log, ops.RemoveCourseInput{Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleClear handles the clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Clear(ctx, h.st, h.log)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleHistory handles the history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.History(ctx, h.db, ops.HistoryInput{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.st, h.cfg, ops.ExportInput{
		Path:   input.Path,
		Format: ops.ExportFormat(input.Format),
		Course: input.Course,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are never exposed (file paths, SQL errors).
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var uErr *errors.UnitimeError
	if stderrors.As(err, &uErr) {
		msg := uErr.Message
		switch {
		case uErr.Code == errors.ErrInternal:
			msg = "an internal error occurred"
		case err != error(uErr):
			// Keep wrapper context such as "documents[2]: ...".
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    uErr.Code,
			"message": msg,
			"status":  uErr.Status,
		}
		if uErr.Code != errors.ErrInternal && uErr.Details != nil {
			errorObj["details"] = uErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
