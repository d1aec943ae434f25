package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/memolish/memolish/internal/config"
	"github.com/memolish/memolish/internal/errors"
	"github.com/memolish/memolish/internal/memo"
	"github.com/memolish/memolish/internal/store"
)

// Handlers holds dependencies for MCP tool handlers. Every tool dispatches
// through the same state store the CLI and web board use.
type Handlers struct {
	store *store.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: st, cfg: cfg}
}

// Request types for each tool

// ListRequest represents the arguments for memo_list.
type ListRequest struct {
	Filter string `json:"filter,omitempty"`
}

// CreateRequest represents the arguments for memo_create.
type CreateRequest struct {
	Content   string  `json:"content"`
	SourceURL *string `json:"source_url,omitempty"`
}

// UpdateRequest represents the arguments for memo_update.
type UpdateRequest struct {
	ID        int     `json:"id"`
	Content   string  `json:"content"`
	SourceURL *string `json:"source_url,omitempty"`
}

// DeleteRequest represents the arguments for memo_delete.
type DeleteRequest struct {
	ID int `json:"id"`
}

// SetStatusRequest represents the arguments for memo_set_status.
type SetStatusRequest struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

// ParseURLRequest represents the arguments for memo_parse_url.
type ParseURLRequest struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// TransformRequest represents the arguments for memo_transform.
type TransformRequest struct {
	ID int `json:"id"`
}

// AudioGenerateRequest represents the arguments for memo_audio_generate.
type AudioGenerateRequest struct {
	ID int `json:"id"`
}

// AudioDownloadRequest represents the arguments for memo_audio_download.
type AudioDownloadRequest struct {
	ID  int    `json:"id"`
	Dir string `json:"dir,omitempty"`
}

// Handler implementations

// HandleList handles the memo_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	filter := input.Filter
	if filter == "" {
		filter = memo.FilterAll
	}
	if !memo.ValidFilter(filter) {
		return errorResult(errors.NewInvalidRequest("filter must be 'all' or a valid status")), nil
	}

	h.store.FetchMemos(ctx)
	snap := h.store.Snapshot()
	if snap.Err != "" {
		return errorResult(errors.NewBackend(502, "", snap.Err)), nil
	}

	items := store.FilteredMemos(snap.Memos, filter)
	return successResult(map[string]any{
		"items":  items,
		"filter": filter,
		"total":  len(snap.Memos),
	})
}

// HandleCreate handles the memo_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	created, err := h.store.CreateMemo(ctx, input.Content, input.SourceURL)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(created)
}

// HandleUpdate handles the memo_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	updated, err := h.store.UpdateMemo(ctx, input.ID, input.Content, input.SourceURL)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(updated)
}

// HandleDelete handles the memo_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.store.DeleteMemo(ctx, input.ID); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"deleted": true, "id": input.ID})
}

// HandleSetStatus handles the memo_set_status tool call.
func (h *Handlers) HandleSetStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetStatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	status, err := memo.ParseStatus(input.Status)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	updated, err := h.store.UpdateStatus(ctx, input.ID, status)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(updated)
}

// HandleParseURL handles the memo_parse_url tool call.
func (h *Handlers) HandleParseURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ParseURLRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	meta, err := h.store.ParseURL(ctx, input.ID, input.URL)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(meta)
}

// HandleTransform handles the memo_transform tool call.
func (h *Handlers) HandleTransform(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TransformRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.store.TransformMemo(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCredits handles the memo_credits tool call. Credits are a
// best-effort read: when the backend is unreachable the last-known snapshot
// (possibly null) is returned rather than an error.
func (h *Handlers) HandleCredits(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.store.FetchCredits(ctx)
	return successResult(map[string]any{"credits": h.store.Snapshot().Credits})
}

// HandleAudioGenerate handles the memo_audio_generate tool call.
func (h *Handlers) HandleAudioGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AudioGenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ref, err := h.store.GenerateAudio(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ref)
}

// HandleAudioDownload handles the memo_audio_download tool call.
func (h *Handlers) HandleAudioDownload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AudioDownloadRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	dir := input.Dir
	if dir == "" {
		dir = h.cfg.DownloadDir
	}

	path, err := h.store.DownloadAudio(ctx, input.ID, dir)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"path": path})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if mErr, ok := err.(*errors.MemolishError); ok {
		errorObj := map[string]any{
			"code":    mErr.Code,
			"message": mErr.Message,
			"status":  mErr.Status,
		}
		if mErr.Code != errors.ErrInternal && mErr.Details != nil {
			errorObj["details"] = mErr.Details
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
