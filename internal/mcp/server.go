package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/memolish/memolish/internal/config"
	"github.com/memolish/memolish/internal/store"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"memo"}

// Tool definitions

var listToolDef = mcp.NewTool("memo_list",
	mcp.WithDescription("List memos for the current session, optionally filtered by status"),
	mcp.WithString("filter", mcp.Description("Status filter: all, not_started, in_progress, completed, keep_reviewing")),
)

var createToolDef = mcp.NewTool("memo_create",
	mcp.WithDescription("Create a new memo"),
	mcp.WithString("content", mcp.Required(), mcp.Description("Memo content (must not be blank)")),
	mcp.WithString("source_url", mcp.Description("Optional source URL")),
)

var updateToolDef = mcp.NewTool("memo_update",
	mcp.WithDescription("Replace a memo's content and optionally its source URL"),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Memo id")),
	mcp.WithString("content", mcp.Required(), mcp.Description("New memo content")),
	mcp.WithString("source_url", mcp.Description("New source URL")),
)

var deleteToolDef = mcp.NewTool("memo_delete",
	mcp.WithDescription("Permanently delete a memo"),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Memo id")),
)

var setStatusToolDef = mcp.NewTool("memo_set_status",
	mcp.WithDescription("Change a memo's lifecycle status"),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Memo id")),
	mcp.WithString("status", mcp.Required(), mcp.Description("New status: not_started, in_progress, completed, keep_reviewing")),
)

var parseURLToolDef = mcp.NewTool("memo_parse_url",
	mcp.WithDescription("Resolve URL metadata (title/description) and attach it to a memo"),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Memo id")),
	mcp.WithString("url", mcp.Required(), mcp.Description("URL to parse")),
)

var transformToolDef = mcp.NewTool("memo_transform",
	mcp.WithDescription("Transform a memo into a bilingual summary and English learning dialogue (consumes a daily credit unless cached)"),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Memo id")),
)

var creditsToolDef = mcp.NewTool("memo_credits",
	mcp.WithDescription("Get the remaining daily AI transform credits (best-effort)"),
)

var audioGenerateToolDef = mcp.NewTool("memo_audio_generate",
	mcp.WithDescription("Generate (or re-issue a link for) the dialogue audio of a transformed memo"),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Memo id")),
)

var audioDownloadToolDef = mcp.NewTool("memo_audio_download",
	mcp.WithDescription("Download a memo's dialogue audio to a local file"),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Memo id")),
	mcp.WithString("dir", mcp.Description("Destination directory (defaults to the configured download dir)")),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"memo_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"memo_create": {
		def:     createToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"memo_update": {
		def:     updateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate },
	},
	"memo_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"memo_set_status": {
		def:     setStatusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetStatus },
	},
	"memo_parse_url": {
		def:     parseURLToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleParseURL },
	},
	"memo_transform": {
		def:     transformToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTransform },
	},
	"memo_credits": {
		def:     creditsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCredits },
	},
	"memo_audio_generate": {
		def:     audioGenerateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAudioGenerate },
	},
	"memo_audio_download": {
		def:     audioDownloadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAudioDownload },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "memo_transform" → "memo").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		typ := GetTypeForTool(name)
		if typeSet[typ] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Memolish tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(st *store.Store, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"memolish",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(st, cfg)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(st *store.Store, cfg *config.Config, version string) error {
	s := NewServer(st, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
