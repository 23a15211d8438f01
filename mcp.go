package filetext

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the extraction tools on an MCP server, so a
// conversational host can hand file paths over and receive envelopes.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "filetext_extract",
		Description: "Extract plain text from a file (documents, spreadsheets, presentations, source code, markup, logs). Returns an envelope with the text or a typed failure.",
	}, e.mcpExtract)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "filetext_classify",
		Description: "Resolve a file's logical category (document, spreadsheet, presentation, text) and the detection method used.",
	}, e.mcpClassify)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "filetext_formats",
		Description: "List every file extension the extraction engine accepts.",
	}, e.mcpFormats)
}

type mcpExtractArgs struct {
	Path     string `json:"path" jsonschema:"path of the file to extract"`
	MaxChars int    `json:"max_chars,omitempty" jsonschema:"truncate output to this many characters (0 = engine default)"`
}

func (e *Engine) mcpExtract(ctx context.Context, _ *mcp.CallToolRequest, args mcpExtractArgs) (*mcp.CallToolResult, *Envelope, error) {
	if args.MaxChars > 0 {
		return nil, e.ExtractLimit(ctx, args.Path, args.MaxChars), nil
	}
	return nil, e.Extract(ctx, args.Path), nil
}

type mcpClassifyArgs struct {
	Path string `json:"path" jsonschema:"path of the file to classify"`
}

type mcpClassifyResult struct {
	Category Category     `json:"category"`
	Method   DetectMethod `json:"method"`
}

func (e *Engine) mcpClassify(_ context.Context, _ *mcp.CallToolRequest, args mcpClassifyArgs) (*mcp.CallToolResult, mcpClassifyResult, error) {
	cls, err := e.Classify(args.Path)
	if err != nil {
		return nil, mcpClassifyResult{}, err
	}
	return nil, mcpClassifyResult{Category: cls.Category, Method: cls.Method}, nil
}

type mcpFormatsArgs struct{}

type mcpFormatsResult struct {
	Extensions []string `json:"extensions"`
}

func (e *Engine) mcpFormats(_ context.Context, _ *mcp.CallToolRequest, _ mcpFormatsArgs) (*mcp.CallToolResult, mcpFormatsResult, error) {
	return nil, mcpFormatsResult{Extensions: e.Extensions()}, nil
}
