// Package mcpadapter exposes correction and hint lookup as MCP tools.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/ports"
)

const (
	toolCorrect = "correct_konglish"
	toolLookup  = "lookup_konglish"
)

type Tools struct {
	corrector ports.Corrector
	hints     ports.HintLookup
	topK      int
	minSim    float64
}

func NewTools(corrector ports.Corrector, hints ports.HintLookup, topK int, minSim float64) *Tools {
	return &Tools{corrector: corrector, hints: hints, topK: topK, minSim: minSim}
}

// NewServer registers both tools on a fresh MCP server.
func (t *Tools) NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer("friendsfixer", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool(toolCorrect,
		mcp.WithDescription("Reply to a learner's English message as a friendly coach, noting Konglish expressions and their natural alternatives."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The learner's message.")),
	), t.correct)

	s.AddTool(mcp.NewTool(toolLookup,
		mcp.WithDescription("Find Konglish phrases similar to the query and their natural English equivalents."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to search the Konglish knowledge base with.")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of hints to return.")),
	), t.lookup)

	return s
}

func (t *Tools) correct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := t.corrector.Correct(ctx, text)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]any{
		"final_text": result.FinalText,
		"k_note":     result.KNote,
		"hints_used": result.HintsUsed,
	})
}

func (t *Tools) lookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topK := req.GetInt("top_k", t.topK)
	hints, err := t.hints.Lookup(ctx, query, topK, t.minSim)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]any{"hints": hints})
}

// toolError reports caller mistakes and transient failures to the model;
// anything else fails the call.
func toolError(err error) (*mcp.CallToolResult, error) {
	if domain.IsKind(err, domain.ErrInvalidInput) || domain.IsKind(err, domain.ErrTemporary) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
