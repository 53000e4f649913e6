package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kayratasci4/Notes/internal/ai"
	"github.com/kayratasci4/Notes/internal/errors"
	"github.com/kayratasci4/Notes/internal/note"
	"github.com/kayratasci4/Notes/internal/repo"
	"github.com/kayratasci4/Notes/internal/session"
)

// generateQuiet is the debounce period for one-shot generate calls. The
// session is flushed immediately after, so it only has to be nonzero.
const generateQuiet = 10 * time.Millisecond

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	repo *repo.Repository
	gen  *ai.Client
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(r *repo.Repository, gen *ai.Client) *Handlers {
	return &Handlers{repo: r, gen: gen}
}

// Request types for each tool

// CreateRequest represents the arguments for note_create.
type CreateRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// SearchRequest represents the arguments for note_search.
type SearchRequest struct {
	Query string `json:"query"`
}

// GetRequest represents the arguments for note_get.
type GetRequest struct {
	ID string `json:"id"`
}

// UpdateRequest represents the arguments for note_update.
type UpdateRequest struct {
	ID      string  `json:"id"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// DeleteRequest represents the arguments for note_delete.
type DeleteRequest struct {
	ID      string `json:"id"`
	Confirm bool   `json:"confirm"`
}

// GenerateRequest represents the arguments for note_generate.
type GenerateRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// Response envelopes

// ListResponse wraps a list of notes.
type ListResponse struct {
	Items []note.Note `json:"items"`
	Total int         `json:"total"`
}

// DeleteResponse reports the outcome of a delete.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// HandleCreate handles the note_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	n, err := h.repo.Create(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	if input.Title != nil || input.Content != nil {
		if input.Title != nil {
			n.Title = *input.Title
		}
		if input.Content != nil {
			n.Content = *input.Content
		}
		n.UpdatedAt = note.NowMillis()
		h.repo.Update(ctx, n)
	}

	return successResult(n)
}

// HandleList handles the note_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := note.Filter(h.repo.List(), "")
	return successResult(ListResponse{Items: items, Total: len(items)})
}

// HandleSearch handles the note_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	items := note.Filter(h.repo.List(), input.Query)
	return successResult(ListResponse{Items: items, Total: len(items)})
}

// HandleGet handles the note_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	n, ok := h.repo.Get(input.ID)
	if !ok {
		return errorResult(errors.NewNotFound(input.ID)), nil
	}
	return successResult(n)
}

// HandleUpdate handles the note_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Title == nil && input.Content == nil {
		return errorResult(errors.NewInvalidRequest("at least one of title or content must be provided")), nil
	}

	n, ok := h.repo.Get(input.ID)
	if !ok {
		return errorResult(errors.NewNotFound(input.ID)), nil
	}

	if input.Title != nil {
		n.Title = *input.Title
	}
	if input.Content != nil {
		n.Content = *input.Content
	}
	n.UpdatedAt = note.NowMillis()
	h.repo.Update(ctx, n)

	return successResult(n)
}

// HandleDelete handles the note_delete tool call. The confirm flag is
// the programmatic form of the irreversible-operation gate.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewInvalidRequest("delete requires confirm=true")), nil
	}

	deleted := h.repo.Delete(ctx, input.ID)
	return successResult(DeleteResponse{Deleted: deleted, ID: input.ID})
}

// HandleGenerate handles the note_generate tool call. It runs the action
// through a real editor session bound to the note, then flushes so the
// committed note is returned.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	action, err := ai.ParseAction(input.Action)
	if err != nil {
		return errorResult(err), nil
	}

	n, ok := h.repo.Get(input.ID)
	if !ok {
		return errorResult(errors.NewNotFound(input.ID)), nil
	}

	sess := session.New(h.repo, h.gen, generateQuiet)
	sess.Bind(n)
	if err := sess.RequestAIAction(ctx, action); err != nil {
		return errorResult(err), nil
	}
	sess.Flush(ctx)

	updated, _ := h.repo.Get(input.ID)
	return successResult(updated)
}

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if nErr, ok := err.(*errors.NoteError); ok && nErr.Code != errors.ErrInternal {
		errorObj := map[string]any{
			"code":    nErr.Code,
			"message": nErr.Message,
			"status":  nErr.Status,
		}
		if nErr.Details != nil {
			errorObj["details"] = nErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
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
